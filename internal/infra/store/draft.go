// Package store persists digest drafts between the draft and publish
// steps. A draft is a plain markdown file in the content directory;
// publishing archives it by renaming it with a timestamp, so the
// directory doubles as the send history.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	draftFileName     = "draft.md"
	archiveTimeFormat = "2006-01-02-15-04-05"

	dirMode  = 0o750
	fileMode = 0o640
)

// DraftStore reads and writes the single pending draft in a content
// directory.
type DraftStore struct {
	dir string
}

// NewDraftStore creates a DraftStore rooted at dir. The directory is
// created on first Save, not here, so read-only commands never touch
// the filesystem.
func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: dir}
}

// Dir returns the content directory.
func (s *DraftStore) Dir() string {
	return s.dir
}

// Path returns the draft file path.
func (s *DraftStore) Path() string {
	return filepath.Join(s.dir, draftFileName)
}

// Exists reports whether a pending draft is on disk.
func (s *DraftStore) Exists() (bool, error) {
	_, err := os.Stat(s.Path())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat draft: %w", err)
}

// Save writes the document as the pending draft, replacing any draft
// already there.
func (s *DraftStore) Save(document string) error {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("create content directory: %w", err)
	}
	if err := os.WriteFile(s.Path(), []byte(document), fileMode); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Load returns the pending draft's contents. The error wraps
// os.ErrNotExist when no draft has been saved.
func (s *DraftStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path()) // #nosec G304 -- path is built from the operator-configured content dir
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return string(data), nil
}

// Archive renames the draft to its delivery timestamp so the next run
// starts clean. Callers archive only after the digest was delivered;
// a failed delivery leaves the draft in place for another publish.
func (s *DraftStore) Archive(now time.Time) (string, error) {
	archived := filepath.Join(s.dir, now.Format(archiveTimeFormat)+".md")
	if err := os.Rename(s.Path(), archived); err != nil {
		return "", fmt.Errorf("archive draft: %w", err)
	}
	return archived, nil
}
