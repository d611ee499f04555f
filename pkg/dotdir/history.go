package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papercomputeco/wellchat/pkg/llm"
)

const (
	historyFile = "history.json"
)

// History is the persisted chat transcript that lets "wellchat chat" resume a
// conversation across runs.
type History struct {
	// UpdatedAt is the time of the last save.
	UpdatedAt time.Time `json:"updated_at"`

	// Messages is the conversation in chronological order (oldest first).
	Messages []llm.Message `json:"messages"`
}

// LoadHistory loads the history from a target .wellchat/history.json.
// Returns nil, nil if no history exists (new conversation).
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadHistory(overrideDir string) (*History, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, historyFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	h := &History{}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}

	return h, nil
}

// SaveHistory persists h to a target .wellchat/history.json. The file is
// replaced atomically and is only readable by the owner since it may hold
// health information.
func (m *Manager) SaveHistory(h *History, overrideDir string) error {
	if h == nil {
		return errors.New("cannot save nil history")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	h.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, historyFile+".*")
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, historyFile)); err != nil {
		return fmt.Errorf("replacing history: %w", err)
	}

	return nil
}

// AppendHistory adds msgs to the stored history and saves it, creating the
// history if none exists. It returns the updated history.
func (m *Manager) AppendHistory(overrideDir string, msgs ...llm.Message) (*History, error) {
	h, err := m.LoadHistory(overrideDir)
	if err != nil {
		return nil, err
	}
	if h == nil {
		h = &History{}
	}

	h.Messages = append(h.Messages, msgs...)
	if err := m.SaveHistory(h, overrideDir); err != nil {
		return nil, err
	}

	return h, nil
}

// ClearHistory removes the history file so the next chat starts fresh.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearHistory(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, historyFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing history: %w", err)
	}

	return nil
}
