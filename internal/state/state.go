// Package state caches the bridge's view of GPU, model, and voice state so
// pages can render without invoking the bridge on every request.
package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/sparkvoice/internal/bridge"
)

// SystemInfo is the cached view of the external system.
type SystemInfo struct {
	GPUAvailable bool
	GPUName      string
	CUDAVersion  string
	ModelLoaded  bool
	ModelPath    string
	Voices       map[string]bridge.Voice
}

// Refresher lists voices via the bridge. Satisfied by *bridge.Bridge.
type Refresher interface {
	ListVoices(ctx context.Context) (*bridge.VoiceList, []string, error)
}

// Manager owns the snapshot. All writes go through Refresh, serialized by a
// single-writer lock so concurrent refreshes cannot tear the merge.
type Manager struct {
	mu       sync.RWMutex
	snapshot SystemInfo

	refresher Refresher
	logger    *slog.Logger
}

// NewManager creates a manager with default (empty) state.
func NewManager(refresher Refresher, logger *slog.Logger) *Manager {
	return &Manager{
		snapshot: SystemInfo{
			GPUName: "Unknown",
			Voices:  make(map[string]bridge.Voice),
		},
		refresher: refresher,
		logger:    logger,
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() SystemInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info := m.snapshot
	info.Voices = make(map[string]bridge.Voice, len(m.snapshot.Voices))
	for id, voice := range m.snapshot.Voices {
		info.Voices[id] = voice
	}
	return info
}

// Voices returns a copy of the current voice registry mirror.
func (m *Manager) Voices() map[string]bridge.Voice {
	return m.Snapshot().Voices
}

// Refresh re-invokes the bridge's list_voices action and merges recognized
// fields into the snapshot. The merge is a shallow per-field overwrite;
// fields absent from the output keep their prior values. Errors are returned
// for the caller to log and swallow; stale data keeps being served.
func (m *Manager) Refresh(ctx context.Context) error {
	list, lines, err := m.refresher.ListVoices(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Status diagnostics arrive even when the registry line is missing.
	for _, status := range bridge.ScanStatus(lines) {
		switch status.Status {
		case "cuda":
			m.snapshot.GPUAvailable = true
			m.snapshot.GPUName = status.Device
			m.snapshot.CUDAVersion = status.Version
		case "cpu":
			m.snapshot.GPUAvailable = false
		case "init":
			m.snapshot.ModelLoaded = true
		}
	}

	if err != nil {
		return err
	}

	if list.Voices != nil {
		voices := make(map[string]bridge.Voice, len(list.Voices))
		for id, voice := range list.Voices {
			voices[id] = voice
		}
		m.snapshot.Voices = voices
	}

	m.logger.Debug("system state refreshed",
		"voices", len(m.snapshot.Voices),
		"gpu_available", m.snapshot.GPUAvailable,
		"model_loaded", m.snapshot.ModelLoaded,
	)

	return nil
}
