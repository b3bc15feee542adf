package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// validKeyPattern matches valid prompt keys (alphanumeric with dots, underscores).
var validKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*$`)

const overrideExt = ".tmpl"

// Store reads and writes prompt overrides as <key>.tmpl files in a directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a new prompt store rooted at dir. The directory is
// created on first write.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the override directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) (string, error) {
	if !validKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid prompt key: %s", key)
	}
	return filepath.Join(s.dir, key+overrideExt), nil
}

// Get returns the override for key, or nil if none exists.
func (s *Store) Get(key string) (*Override, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat override %s: %w", key, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read override %s: %w", key, err)
	}
	return &Override{Key: key, Text: string(data), Path: path, UpdatedAt: info.ModTime()}, nil
}

// List returns every override in the directory, sorted by key.
// Files whose names are not valid keys are skipped.
func (s *Store) List() ([]Override, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}

	var out []Override
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), overrideExt) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), overrideExt)
		if !validKeyPattern.MatchString(key) {
			s.logger.Debug("skipping override file", "name", e.Name())
			continue
		}
		o, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if o != nil {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Set writes an override for key.
func (s *Store) Set(key, text string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create override dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write override %s: %w", key, err)
	}
	s.logger.Info("set prompt override", "key", key, "path", path)
	return nil
}

// Clear removes the override for key. Clearing a missing override is not an error.
func (s *Store) Clear(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove override %s: %w", key, err)
	}
	s.logger.Info("cleared prompt override", "key", key)
	return nil
}
