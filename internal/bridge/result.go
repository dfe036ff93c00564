package bridge

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNoResult is returned when no line of the bridge output parses as a
	// JSON result.
	ErrNoResult = errors.New("no JSON result in bridge output")
	// ErrNotInstalled is returned when the output indicates the Spark-TTS
	// Python modules are missing.
	ErrNotInstalled = errors.New("Spark-TTS is not installed")
)

// Markers the bridge emits when its Python dependencies are missing.
var notInstalledMarkers = []string{
	"not properly installed",
	"ModuleNotFoundError",
	"import error",
}

// Voice mirrors one entry of the external voice registry.
type Voice struct {
	DisplayName string `json:"display_name"`
	Valid       bool   `json:"valid"`
}

// VoiceList is the bridge's list_voices result.
type VoiceList struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Voices  map[string]Voice `json:"voices"`
}

// VoiceInfo is pass-through metadata about the voice used for synthesis.
type VoiceInfo struct {
	VoiceID   string `json:"voice_id,omitempty"`
	VoiceName string `json:"voice_name,omitempty"`
}

// Result is the bridge's synthesis result.
type Result struct {
	Success bool      `json:"success"`
	File    string    `json:"file"`
	Message string    `json:"message"`
	Voice   VoiceInfo `json:"voice"`
	Trace   string    `json:"trace,omitempty"`
}

// StatusLine is a startup diagnostic the bridge prints while loading
// ({"status":"cuda"|"cpu"|"init", ...}).
type StatusLine struct {
	Status  string `json:"status"`
	Device  string `json:"device"`
	Version string `json:"version"`
	Message string `json:"message"`
}

// ParseResult locates the synthesis result among mixed diagnostic output.
// It scans from the end backward for the first line that parses as a JSON
// object with a "success" key, then falls back to the very last line, then
// to the not-installed markers. The bridge has no framing, so this
// best-effort scan is the whole contract.
func ParseResult(lines []string) (*Result, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		obj, ok := parseObject(lines[i])
		if !ok {
			continue
		}
		if _, hasSuccess := obj["success"]; !hasSuccess {
			continue
		}

		var result Result
		if err := json.Unmarshal([]byte(lines[i]), &result); err != nil {
			continue
		}
		return &result, nil
	}

	// Fallback: the last line may be a JSON object without a success key.
	if len(lines) > 0 {
		last := lines[len(lines)-1]
		if _, ok := parseObject(last); ok {
			var result Result
			if err := json.Unmarshal([]byte(last), &result); err == nil {
				return &result, nil
			}
		}
	}

	for _, line := range lines {
		for _, marker := range notInstalledMarkers {
			if strings.Contains(line, marker) {
				return nil, ErrNotInstalled
			}
		}
	}

	return nil, ErrNoResult
}

// ParseVoiceList locates the voice registry line in list_voices output.
func ParseVoiceList(lines []string) (*VoiceList, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		obj, ok := parseObject(lines[i])
		if !ok {
			continue
		}
		if _, hasSuccess := obj["success"]; !hasSuccess {
			continue
		}

		var list VoiceList
		if err := json.Unmarshal([]byte(lines[i]), &list); err != nil {
			continue
		}
		// Import-failure lines also carry a success key but no voices;
		// keep scanning unless this is the terminal registry line.
		if list.Success || list.Voices != nil {
			return &list, nil
		}
		if i == len(lines)-1 {
			return &list, nil
		}
	}

	return nil, ErrNoResult
}

// ScanStatus collects the status diagnostics from bridge output.
func ScanStatus(lines []string) []StatusLine {
	var statuses []StatusLine
	for _, line := range lines {
		obj, ok := parseObject(line)
		if !ok {
			continue
		}
		if _, hasStatus := obj["status"]; !hasStatus {
			continue
		}

		var status StatusLine
		if err := json.Unmarshal([]byte(line), &status); err != nil {
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// RawOutput joins bridge output lines for diagnostic reporting.
func RawOutput(lines []string) string {
	return strings.Join(lines, "\n")
}

// parseObject reports whether a line is a single-line JSON object.
func parseObject(line string) (map[string]json.RawMessage, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
