package linker

import (
	"errors"
	"fmt"
	"io"
	"os"

	"penumbra/internal/domain"
)

// CopyLinker serves files by copying them
type CopyLinker struct{}

// NewCopy creates a new copy linker
func NewCopy() *CopyLinker {
	return &CopyLinker{}
}

// Link copies src to dst, keeping src's modification time so Current can
// recognize the copy later.
func (l *CopyLinker) Link(src, dst string) error {
	if err := prepare(dst); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: opening source: %v", domain.ErrLinkFailed, err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat source: %v", domain.ErrLinkFailed, err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("%w: creating destination: %v", domain.ErrLinkFailed, err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("%w: copying file: %v", domain.ErrLinkFailed, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("%w: closing destination: %v", domain.ErrLinkFailed, err)
	}

	return os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}

// Unlink removes the file at dst
func (l *CopyLinker) Unlink(dst string) error {
	return unlink(dst)
}

// Current reports whether dst has src's size and modification time
func (l *CopyLinker) Current(src, dst string) (bool, error) {
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
	return dstInfo.Mode().IsRegular() &&
		dstInfo.Size() == srcInfo.Size() &&
		dstInfo.ModTime().Equal(srcInfo.ModTime()), nil
}

// Method returns the link method
func (l *CopyLinker) Method() domain.LinkMethod {
	return domain.LinkCopy
}
