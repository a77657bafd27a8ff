package domain

import "errors"

var (
	ErrModNotFound        = errors.New("mod not found")
	ErrGroupNotFound      = errors.New("option group not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrInheritanceLoop    = errors.New("circular collection inheritance detected")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrInvalidGroupType   = errors.New("invalid option group type")
	ErrTooManyOptions     = errors.New("too many options in multi group")
	ErrEmptyPath          = errors.New("empty game path")
	ErrPathTooLong        = errors.New("game path too long")
	ErrNotGamePath        = errors.New("file is not below the mod directory")
	ErrLinkFailed         = errors.New("link operation failed")
	ErrInvalidLinkMethod  = errors.New("invalid link method")
)
