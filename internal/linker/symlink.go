package linker

import (
	"errors"
	"fmt"
	"os"

	"penumbra/internal/domain"
)

// SymlinkLinker serves files through symbolic links
type SymlinkLinker struct{}

// NewSymlink creates a new symlink linker
func NewSymlink() *SymlinkLinker {
	return &SymlinkLinker{}
}

// Link creates a symlink at dst pointing to src
func (l *SymlinkLinker) Link(src, dst string) error {
	if err := prepare(dst); err != nil {
		return err
	}
	if err := os.Symlink(src, dst); err != nil {
		return fmt.Errorf("%w: creating symlink: %v", domain.ErrLinkFailed, err)
	}
	return nil
}

// Unlink removes the symlink at dst, refusing to touch regular files
func (l *SymlinkLinker) Unlink(dst string) error {
	info, err := os.Lstat(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking file: %w", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("not a symlink: %s", dst)
	}
	return unlink(dst)
}

// Current reports whether dst is a symlink to src
func (l *SymlinkLinker) Current(src, dst string) (bool, error) {
	target, err := os.Readlink(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return false, nil // Not a symlink
		}
		return false, err
	}
	return target == src, nil
}

// Method returns the link method
func (l *SymlinkLinker) Method() domain.LinkMethod {
	return domain.LinkSymlink
}
