package domain

import (
	"path/filepath"
	"strings"
)

// FullPath is the concrete replacement for a game path: either a file on
// disk (rooted) or another game path that the game resolves itself.
type FullPath struct {
	FullName     string // Path as given
	InternalName string // Normalized form handed to the game
}

// NewFullPath builds a rooted path for a mod-relative file
func NewFullPath(base, rel string) FullPath {
	full := filepath.Join(base, filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/")))
	return FullPath{
		FullName:     full,
		InternalName: asciiLower(filepath.ToSlash(full)),
	}
}

// SwapPath builds a non-rooted path that redirects to another game path
func SwapPath(target GamePath) FullPath {
	return FullPath{
		FullName:     target.String(),
		InternalName: target.String(),
	}
}

// IsRooted reports whether the path points at a real file that must exist
func (f FullPath) IsRooted() bool {
	return filepath.IsAbs(f.FullName)
}

// Extension returns the lowered extension including the dot, or ""
func (f FullPath) Extension() string {
	return asciiLower(filepath.Ext(f.FullName))
}

// Equal compares paths the way the game does, ignoring ASCII case
func (f FullPath) Equal(o FullPath) bool {
	return f.InternalName == o.InternalName
}

// ToGamePath converts a file below base into the game path it replaces
func (f FullPath) ToGamePath(base string) (GamePath, error) {
	rel, err := filepath.Rel(base, f.FullName)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return GamePath{}, ErrNotGamePath
	}
	return NewGamePath(filepath.ToSlash(rel))
}

// String returns the full name
func (f FullPath) String() string {
	return f.FullName
}
