package core

import (
	"penumbra/internal/domain"
)

// pathRegistry records which active mod currently owns each path and
// manipulation key. It is scratch space reused across passes and holds
// nothing between them.
type pathRegistry struct {
	files map[domain.GamePath]int
	meta  map[domain.MetaKey]int
}

func newPathRegistry() *pathRegistry {
	return &pathRegistry{
		files: make(map[domain.GamePath]int, 256),
		meta:  make(map[domain.MetaKey]int, 64),
	}
}

func (r *pathRegistry) resetFiles() {
	clear(r.files)
}

func (r *pathRegistry) resetMeta() {
	clear(r.meta)
}

// bitset marks which of a mod's resource files an option already claimed
type bitset struct {
	words []uint64
	size  int
}

// reset clears the set and sizes it for n entries, reusing storage
func (b *bitset) reset(n int) {
	words := (n + 63) / 64
	if cap(b.words) < words {
		b.words = make([]uint64, words)
	} else {
		b.words = b.words[:words]
		clear(b.words)
	}
	b.size = n
}

func (b *bitset) set(i int) {
	if i < 0 || i >= b.size {
		return
	}
	b.words[i/64] |= 1 << uint(i%64)
}

func (b *bitset) get(i int) bool {
	if i < 0 || i >= b.size {
		return false
	}
	return b.words[i/64]&(1<<uint(i%64)) != 0
}
