package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store persists a DeckState as a JSON document on disk. A single process is
// assumed to own the file for the duration of a command.
type Store struct {
	path   string
	logger *slog.Logger

	// beforeCommit runs after the temporary file is fully written and before
	// it is renamed over the state file. Returning an error aborts the save.
	beforeCommit func(tmpPath string) error
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a state file is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat state %s: %w", s.path, err)
}

// Load reads the persisted state. It fails with ErrStateNotFound when no state
// file exists and with ErrStateCorrupt when the file cannot be parsed.
func (s *Store) Load() (*DeckState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrStateNotFound)
		}
		return nil, fmt.Errorf("failed to read state %s: %w", s.path, err)
	}

	d, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Debug("state loaded", "path", s.path, "cards", d.Len(), "history", len(d.History))
	return d, nil
}

// Create persists d as a brand new state. Unless force is set it refuses to
// replace an existing state with ErrStateConflict.
func (s *Store) Create(d *DeckState, force bool) error {
	exists, err := s.Exists()
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("%s: %w", s.path, ErrStateConflict)
	}
	return s.Save(d)
}

// Save writes d to a temporary file next to the state file, flushes it to
// disk, then renames it over the state file. Either the whole new state is
// committed or the previous file is left untouched.
func (s *Store) Save(d *DeckState) error {
	data, err := encode(d)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(tmpPath); err != nil {
			return fmt.Errorf("save aborted: %w", err)
		}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to commit state %s: %w", s.path, err)
	}
	committed = true
	syncDir(dir)

	s.logger.Debug("state saved", "path", s.path, "cards", d.Len(), "bytes", len(data))
	return nil
}

// syncDir flushes the directory entry of a rename. Not every platform
// supports it, so failures are ignored.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
