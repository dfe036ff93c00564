// Package netprobe finds a free TCP port by sequential probing.
package netprobe

import (
	"errors"
	"fmt"
	"net"
)

// ErrNoFreePort is returned when every candidate port is occupied.
var ErrNoFreePort = errors.New("no free port found")

// FreePort probes up to attempts consecutive ports starting at start and
// returns the first that binds. Each candidate is bound and immediately
// released, so the port can be taken by another process between the probe
// and the actual listen. Acceptable for a demo server.
func FreePort(start, attempts int) (int, error) {
	if start < 1 || start > 65535 {
		return 0, fmt.Errorf("invalid start port %d", start)
	}
	if attempts < 1 {
		return 0, fmt.Errorf("attempts must be at least 1, got %d", attempts)
	}

	for port := start; port < start+attempts && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		ln.Close()
		return port, nil
	}

	return 0, fmt.Errorf("%w: tried %d ports from %d", ErrNoFreePort, attempts, start)
}
