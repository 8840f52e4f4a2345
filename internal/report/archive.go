package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Archive appends accepted reports to an NDJSON file so delivered
// intelligence survives session resets.
type Archive struct {
	mu   sync.Mutex
	path string
}

// NewArchive creates the archive file's directory if needed.
func NewArchive(path string) (*Archive, error) {
	if path == "" {
		return nil, fmt.Errorf("archive path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{path: path}, nil
}

type archiveEntry struct {
	ReportedAt string `json:"reported_at"`
	Payload    any    `json:"payload"`
}

// Append writes one report as a single JSON line.
func (a *Archive) Append(payload any) error {
	entry := archiveEntry{
		ReportedAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode archive entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write archive entry: %w", err)
	}
	return nil
}
