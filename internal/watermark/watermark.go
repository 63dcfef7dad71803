// Package watermark tracks the point in time up to which mail has been
// processed.
package watermark

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Layout is the on-disk format, MM/dd/yyyy HH:mm:ss.
const Layout = "01/02/2006 15:04:05"

// Watermark is the timestamp of the last successfully processed batch.
type Watermark struct {
	Time time.Time
}

// New returns a watermark at t, truncated to whole seconds since that is
// all the file format keeps.
func New(t time.Time) Watermark {
	return Watermark{Time: t.Truncate(time.Second)}
}

// String formats the watermark with Layout.
func (w Watermark) String() string {
	return w.Time.Format(Layout)
}

// Parse reads a watermark written with Layout.
func Parse(s string) (Watermark, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Watermark{}, fmt.Errorf("parsing watermark %q: %w", s, err)
	}
	return Watermark{Time: t}, nil
}

// FileStore persists a watermark as a single line in a text file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the watermark. When the file does not exist yet it is
// created from start, which is then returned.
func (s *FileStore) Load(start time.Time) (Watermark, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		w := New(start)
		if err := s.Save(w); err != nil {
			return Watermark{}, err
		}
		return w, nil
	}
	if err != nil {
		return Watermark{}, fmt.Errorf("reading watermark %s: %w", s.path, err)
	}

	w, err := Parse(string(data))
	if err != nil {
		return Watermark{}, fmt.Errorf("loading %s: %w", s.path, err)
	}
	return w, nil
}

// Save overwrites the file with w. The write goes through a temporary
// file so a crash never leaves a truncated watermark behind.
func (s *FileStore) Save(w Watermark) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating watermark directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".watermark-*")
	if err != nil {
		return fmt.Errorf("creating temporary watermark: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(w.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing watermark: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing watermark: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing watermark %s: %w", s.path, err)
	}
	return nil
}
