package linker

import (
	"errors"
	"fmt"
	"os"

	"penumbra/internal/domain"
)

// HardlinkLinker serves files through hard links
type HardlinkLinker struct{}

// NewHardlink creates a new hardlink linker
func NewHardlink() *HardlinkLinker {
	return &HardlinkLinker{}
}

// Link creates a hard link at dst to src
func (l *HardlinkLinker) Link(src, dst string) error {
	if err := prepare(dst); err != nil {
		return err
	}
	if err := os.Link(src, dst); err != nil {
		return fmt.Errorf("%w: creating hardlink: %v", domain.ErrLinkFailed, err)
	}
	return nil
}

// Unlink removes the file at dst
func (l *HardlinkLinker) Unlink(dst string) error {
	return unlink(dst)
}

// Current reports whether dst and src are the same inode
func (l *HardlinkLinker) Current(src, dst string) (bool, error) {
	dstInfo, err := os.Lstat(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	return os.SameFile(srcInfo, dstInfo), nil
}

// Method returns the link method
func (l *HardlinkLinker) Method() domain.LinkMethod {
	return domain.LinkHardlink
}
