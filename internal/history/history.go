// Package history records past analysis runs in history.json.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"
)

const (
	// File is the history file name inside the working directory.
	File = "history.json"
	// maxEntries caps the stored history, newest first.
	maxEntries = 50
	// previewRunes truncates the stored text preview.
	previewRunes = 100
)

// Entry is one recorded analysis run.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Preview    string    `json:"preview"`
	Paragraphs int       `json:"paragraphs"`
	Images     int       `json:"images"`
	Engine     string    `json:"engine"`
	Model      string    `json:"model"`
}

// Store reads and writes history entries under a working directory.
type Store struct {
	Path string
}

// NewStore returns a Store for the given working directory.
func NewStore(dir string) *Store {
	return &Store{Path: filepath.Join(dir, File)}
}

// Load returns all recorded entries, newest first. A missing file is an
// empty history, not an error.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return entries, nil
}

// Add prepends an entry and rewrites the file, dropping anything beyond
// the cap. The entry's preview is truncated before storage.
func (s *Store) Add(entry Entry) error {
	entries, err := s.Load()
	if err != nil {
		// A corrupt history should not block new runs; start over.
		entries = nil
	}

	entry.Preview = Preview(entry.Preview)
	entries = append([]Entry{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Clear removes the history file.
func (s *Store) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Preview returns the first hundred runes of text with an ellipsis when
// truncated.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewRunes]) + "..."
}
