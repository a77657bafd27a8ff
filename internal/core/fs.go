package core

import (
	"os"
	"sync"
)

// FileSystem answers existence checks for resolved files. The engine never
// writes through it.
type FileSystem interface {
	Exists(path string) bool
}

// OSFileSystem checks the real filesystem
type OSFileSystem struct{}

// Exists reports whether path names an existing regular file
func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MapFileSystem is an in-memory FileSystem for tests and dry runs
type MapFileSystem struct {
	mu    sync.RWMutex
	files map[string]bool
}

// NewMapFileSystem creates a MapFileSystem containing paths
func NewMapFileSystem(paths ...string) *MapFileSystem {
	fs := &MapFileSystem{files: make(map[string]bool, len(paths))}
	for _, p := range paths {
		fs.files[p] = true
	}
	return fs
}

// Exists implements FileSystem
func (m *MapFileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files[path]
}

// Add marks path as existing
func (m *MapFileSystem) Add(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = true
}

// Remove marks path as missing
func (m *MapFileSystem) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}
