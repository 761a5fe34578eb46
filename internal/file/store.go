// Package file persists seen meetings in a plain text file, one entry per
// line: "<event id>|<timestamp>" or a legacy bare "<event id>".
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/guilherme-santos/zoomlauncher/internal/seen"
)

// DefaultFilename is the store name inside the data directory.
const DefaultFilename = "opened_meetings"

var _ seen.Store = (*Store)(nil)

// Store reads the file on every call and rewrites it whole on Mark and
// Prune. Concurrent writers are not coordinated.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(context.Context) ([]seen.Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read seen meetings", goerr.V("path", s.path))
	}

	var entries []seen.Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entries = append(entries, seen.ParseEntry(line))
	}
	if err := sc.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to parse seen meetings", goerr.V("path", s.path))
	}
	return seen.Unique(entries), nil
}

func (s *Store) IsMarked(ctx context.Context, id string) (bool, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return seen.Contains(entries, id), nil
}

func (s *Store) Mark(ctx context.Context, id string, now time.Time) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.write(seen.Add(entries, seen.NewEntry(id, now)))
}

func (s *Store) Prune(ctx context.Context, now time.Time, retention time.Duration) (int, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	entries, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	kept := seen.Survivors(entries, now, retention)
	if err := s.write(kept); err != nil {
		return 0, err
	}
	return len(entries) - len(kept), nil
}

func (s *Store) write(entries []seen.Entry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return goerr.Wrap(err, "failed to create seen meetings directory", goerr.V("dir", dir))
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return goerr.Wrap(err, "failed to write seen meetings", goerr.V("path", s.path))
	}
	return nil
}
