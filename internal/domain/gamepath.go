package domain

import (
	"fmt"
	"strings"
)

// MaxGamePathLength is the longest path the game's resource loader accepts
const MaxGamePathLength = 260

// GamePath is a normalized location inside the game's resource namespace.
// The zero value is the empty path and never resolves.
type GamePath struct {
	path string
}

// NewGamePath normalizes s: backslashes become slashes, leading slashes are
// dropped and ASCII letters are lowered, so equality is case-insensitive.
func NewGamePath(s string) (GamePath, error) {
	p := normalizePath(s)
	if p == "" {
		return GamePath{}, ErrEmptyPath
	}
	if len(p) > MaxGamePathLength {
		return GamePath{}, fmt.Errorf("%w: %d bytes", ErrPathTooLong, len(p))
	}
	return GamePath{path: p}, nil
}

// MustGamePath is NewGamePath for literals known to be valid
func MustGamePath(s string) GamePath {
	p, err := NewGamePath(s)
	if err != nil {
		panic(fmt.Sprintf("invalid game path %q: %v", s, err))
	}
	return p
}

// String returns the normalized path
func (p GamePath) String() string {
	return p.path
}

// IsEmpty reports whether p is the zero path
func (p GamePath) IsEmpty() bool {
	return p.path == ""
}

// Len returns the normalized length in bytes
func (p GamePath) Len() int {
	return len(p.path)
}

// HasSuffix reports whether p ends with suffix, compared case-insensitively
func (p GamePath) HasSuffix(suffix string) bool {
	return strings.HasSuffix(p.path, asciiLower(suffix))
}

// Extension returns the lowered extension including the dot, or ""
func (p GamePath) Extension() string {
	slash := strings.LastIndexByte(p.path, '/')
	dot := strings.LastIndexByte(p.path, '.')
	if dot <= slash {
		return ""
	}
	return p.path[dot:]
}

// Compare orders paths lexically, for stable output
func (p GamePath) Compare(o GamePath) int {
	return strings.Compare(p.path, o.path)
}

// MarshalText implements encoding.TextMarshaler
func (p GamePath) MarshalText() ([]byte, error) {
	return []byte(p.path), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *GamePath) UnmarshalText(text []byte) error {
	parsed, err := NewGamePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func normalizePath(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimLeft(s, "/")
	return asciiLower(s)
}

// asciiLower lowers only A-Z; the game compares paths byte-wise
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
