// Package state persists per-run build history under the output root
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/plugforge/plugforge/pkg/types"
)

// historyFile is the history log location relative to the output root
const historyFile = ".plugforge/history.json"

// Build outcome labels recorded in history
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// BuildRecord is one packaging attempt for one engine version
type BuildRecord struct {
	RunID      string    `json:"runId"`
	Version    string    `json:"version"`
	Status     string    `json:"status"`
	Platforms  []string  `json:"platforms,omitempty"`
	OutputPath string    `json:"outputPath,omitempty"`
	DurationMS int64     `json:"durationMs"`
	Timestamp  time.Time `json:"timestamp"`
}

// History is an append-only build record log
type History struct {
	path string
	mu   sync.Mutex
}

// NewHistory creates a history log under the given output root
func NewHistory(outputRoot string) *History {
	return &History{path: filepath.Join(outputRoot, filepath.FromSlash(historyFile))}
}

// Append adds one record to the log, creating it as needed
func (h *History) Append(record BuildRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := h.read()
	if err != nil {
		return err
	}
	records = append(records, record)

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("%w: creating history directory: %v", types.ErrFileSystem, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via rename
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: writing history: %v", types.ErrFileSystem, err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("%w: writing history: %v", types.ErrFileSystem, err)
	}
	return nil
}

// Records returns all recorded builds, oldest first
func (h *History) Records() ([]BuildRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.read()
}

func (h *History) read() ([]BuildRecord, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading history: %v", types.ErrFileSystem, err)
	}

	var records []BuildRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: history file %s is corrupt: %v", types.ErrValidation, h.path, err)
	}
	return records, nil
}
