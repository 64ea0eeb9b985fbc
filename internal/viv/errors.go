package viv

import (
	"errors"

	"golang.org/x/xerrors"
)

// Sentinel errors identify the discriminants from the format's error
// taxonomy. Every error the package returns wraps one of these with
// xerrors.Errorf so that callers can discriminate with errors.Is while
// still getting a useful message.
var (
	ErrIO                = errors.New("io error")
	ErrTruncated         = errors.New("truncated")
	ErrBadMagic          = errors.New("bad magic")
	ErrHeaderOutOfRange  = errors.New("header out of range")
	ErrDirectoryCorrupt  = errors.New("directory corrupt")
	ErrNameInvalid       = errors.New("name invalid")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrCollision         = errors.New("collision")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// wrapf wraps sentinel with a formatted message, preserving errors.Is.
func wrapf(sentinel error, format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, sentinel)...)
}
