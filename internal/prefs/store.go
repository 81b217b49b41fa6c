// Package prefs persists the user's generator choices (field selection,
// custom template, format and count) behind a small key-value Store.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/zarlcorp/core/pkg/zstore"
)

// Store is a string key-value store. Get reports ok=false for absent keys.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// fileName is the prefs file inside a File store's directory.
const fileName = "prefs.json"

// File keeps all keys in a single JSON object file. Every Set rewrites the
// whole file atomically.
type File struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

// NewFile creates a store backed by prefs.json in dir. The file is created
// on first Set. A nil logger uses slog.Default.
func NewFile(dir string, log *slog.Logger) *File {
	if log == nil {
		log = slog.Default()
	}
	return &File{path: filepath.Join(dir, fileName), log: log}
}

func (s *File) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (s *File) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("set %s: marshal: %w", key, err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("set %s: write: %w", key, err)
	}
	return nil
}

// load reads the file. An unparsable file reads as empty so the next Set
// replaces it.
func (s *File) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read prefs: %w", err)
	}

	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		s.log.Warn("prefs file unreadable, using defaults", "path", s.path, "err", err)
		return make(map[string]string), nil
	}
	return m, nil
}

// entry wraps a value so it can live in a zstore collection. Key lets a
// listing tell a missing key from an unreadable one.
type entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// collection is the part of a zstore collection Vault uses.
type collection interface {
	Get(id string) (entry, error)
	Put(id string, v entry) error
	List() ([]entry, error)
}

// Vault keeps prefs in an encrypted zstore collection.
type Vault struct {
	col collection
}

// vaultCollection is the zstore collection holding prefs.
const vaultCollection = "prefs"

// NewVault opens the prefs collection in an open store.
func NewVault(s *zstore.Store) (*Vault, error) {
	col, err := zstore.NewCollection[entry](s, vaultCollection)
	if err != nil {
		return nil, fmt.Errorf("open prefs collection: %w", err)
	}
	return &Vault{col: col}, nil
}

// Get reports ok=false only for a key that was never stored. Read and
// decryption failures of a stored key are returned.
func (s *Vault) Get(key string) (string, bool, error) {
	e, err := s.col.Get(key)
	if err == nil {
		return e.Value, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}

	stored, lerr := s.has(key)
	if lerr != nil {
		return "", false, fmt.Errorf("get %s: %w", key, errors.Join(err, lerr))
	}
	if !stored {
		return "", false, nil
	}
	return "", false, fmt.Errorf("get %s: %w", key, err)
}

func (s *Vault) has(key string) (bool, error) {
	all, err := s.col.List()
	if err != nil {
		return false, err
	}
	for _, e := range all {
		if e.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *Vault) Set(key, value string) error {
	if err := s.col.Put(key, entry{Key: key, Value: value}); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
