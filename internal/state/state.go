// Package state holds small pieces of process state that a host may choose
// to persist, such as the find toggles and simple mode.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store reads and writes boolean values by key.
type Store interface {
	// GetBool returns the stored value and whether it was present.
	GetBool(key string) (bool, bool)
	SetBool(key string, value bool) error
}

// MemoryStore is a process-lifetime Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]bool)}
}

// GetBool implements Store.
func (m *MemoryStore) GetBool(key string) (bool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// SetBool implements Store.
func (m *MemoryStore) SetBool(key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// FileStore persists values in a JSON document on disk. Keys may contain
// dots; they are stored as flat top-level members.
type FileStore struct {
	mu   sync.Mutex
	path string
	data []byte
}

// OpenFileStore loads path if it exists. A missing file starts empty.
func OpenFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = []byte("{}")
	case err != nil:
		return nil, fmt.Errorf("read state %s: %w", path, err)
	case !gjson.ValidBytes(data):
		return nil, fmt.Errorf("read state %s: invalid JSON", path)
	}
	return &FileStore{path: path, data: data}, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// GetBool implements Store.
func (f *FileStore) GetBool(key string) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := gjson.GetBytes(f.data, escapeKey(key))
	if !res.Exists() {
		return false, false
	}
	return res.Bool(), true
}

// SetBool implements Store. The file is rewritten through a temporary file
// in the same directory.
func (f *FileStore) SetBool(key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := sjson.SetBytes(f.data, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write state: %w", err)
	}
	f.data = data
	return nil
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}
