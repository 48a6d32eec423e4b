// Package docstore manages the active balance document and its saved copies.
package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidName     = errors.New("invalid name")
	ErrPathTraversal   = errors.New("path escapes the save directory")
	ErrNotJSON         = errors.New("not a .json file")
	ErrInvalidDocument = errors.New("invalid balance document")
	ErrNotFound        = errors.New("document not found")
)

// BlankDocument is the vanilla balance document.
const BlankDocument = `{
    "enabled": true,
    "dump_fields": false,
    "description": "Blank config with vanilla settings. All multipliers at defaults.",
    "tech_time": {
        "tier_1": 30,
        "tier_2": 30,
        "tier_3": 30,
        "tier_4": 30,
        "tier_5": 30,
        "tier_6": 30,
        "tier_7": 30,
        "tier_8": 30
    },
    "units": {}
}
`

const timestampLayout = "200601021504"

// Store owns the active document path and the save directory.
type Store struct {
	active  string
	saveDir string
	now     func() time.Time
	log     *slog.Logger
}

// New creates a store. A nil now uses time.Now.
func New(active, saveDir string, now func() time.Time, logger *slog.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{active: active, saveDir: saveDir, now: now, log: logger}
}

// ActivePath returns the active document path.
func (s *Store) ActivePath() string { return s.active }

// Read returns the active document.
func (s *Store) Read() ([]byte, error) {
	data, err := os.ReadFile(s.active)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.active, ErrNotFound)
	}
	return data, err
}

// EnsureDefault writes the blank document when the active one is missing.
func (s *Store) EnsureDefault() (bool, error) {
	if _, err := os.Stat(s.active); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(s.active), 0o755); err != nil {
		return false, fmt.Errorf("creating document directory: %w", err)
	}
	if err := WriteAtomic(s.active, []byte(BlankDocument)); err != nil {
		return false, err
	}
	s.log.Info("blank balance document created", "path", s.active)
	return true, nil
}

// ResetBlank replaces the active document with the vanilla one.
func (s *Store) ResetBlank() error {
	if err := WriteAtomic(s.active, []byte(BlankDocument)); err != nil {
		return fmt.Errorf("resetting balance document: %w", err)
	}
	s.log.Info("balance document reset to blank", "path", s.active)
	return nil
}

// Save copies the active document into the save directory as
// yyyyMMddHHmm[_name].json and returns the file name. Existing files are never overwritten.
func (s *Store) Save(name string) (string, error) {
	data, err := s.Read()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.saveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating save directory: %w", err)
	}

	file := s.now().Format(timestampLayout)
	if name != "" {
		safe := Sanitize(name)
		if safe == "" {
			safe = "config"
		}
		file += "_" + safe
	}
	file += ".json"

	dest, err := s.inside(file)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", file, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("saving %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("saving %s: %w", file, err)
	}
	s.log.Info("balance document saved", "file", file)
	return file, nil
}

// List returns the saved documents, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.saveDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing saved documents: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		if _, err := s.inside(name); err != nil {
			continue
		}
		if !s.resolvesInside(name) {
			continue
		}
		out = append(out, name)
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(b), strings.ToLower(a))
	})
	return out, nil
}

// Load validates a saved document and makes it the active one.
func (s *Store) Load(file string) error {
	if file == "" {
		return ErrInvalidName
	}
	if file != filepath.Base(file) || strings.ContainsAny(file, `/\`) || file == ".." {
		return fmt.Errorf("%q: %w", file, ErrPathTraversal)
	}
	if !strings.EqualFold(filepath.Ext(file), ".json") {
		return fmt.Errorf("%q: %w", file, ErrNotJSON)
	}
	src, err := s.inside(file)
	if err != nil {
		return err
	}
	if !s.resolvesInside(file) {
		return fmt.Errorf("%q: %w", file, ErrPathTraversal)
	}
	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%q: %w", file, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading %q: %w", file, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("%q: %w", file, ErrInvalidDocument)
	}
	if err := WriteAtomic(s.active, data); err != nil {
		return fmt.Errorf("activating %q: %w", file, err)
	}
	s.log.Info("balance document loaded from save", "file", file)
	return nil
}

// inside joins name onto the save directory and rejects results outside it.
func (s *Store) inside(name string) (string, error) {
	dir, err := filepath.Abs(s.saveDir)
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%q: %w", name, ErrPathTraversal)
	}
	return full, nil
}

// resolvesInside follows symlinks; missing files count as inside.
func (s *Store) resolvesInside(name string) bool {
	dir, err := filepath.EvalSymlinks(s.saveDir)
	if err != nil {
		return false
	}
	target, err := filepath.EvalSymlinks(filepath.Join(s.saveDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, target)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// WriteAtomic replaces path through a temporary file in the same directory.
func WriteAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
