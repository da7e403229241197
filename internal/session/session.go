// Package session handles JSON persistence of recorded key event streams.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/staccato/internal/model"
)

// Manager saves and loads sessions under a directory.
type Manager struct {
	dir string
}

// NewManager returns a manager rooted at dir. The directory is created on
// first save.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the session directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Save writes the session to a timestamped JSON file and returns its path.
func (m *Manager) Save(s model.Session) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session dir: %w", err)
	}
	name := fmt.Sprintf("session_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(m.dir, name)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	tmpFile, err := os.CreateTemp(m.dir, "session-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}
	return path, nil
}

// Load reads a session from a JSON file.
func Load(path string) (model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}

// List returns the saved session files in name order (oldest first).
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session dir: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		out = append(out, filepath.Join(m.dir, name))
	}
	sort.Strings(out)
	return out, nil
}
