package model

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Error kinds reported by the trainer core, use xerrors.Is to classify
var (
	ErrInvalidConfiguration = xerrors.New("invalid configuration")
	ErrIOFailure            = xerrors.New("io failure")
	ErrResourceExhaustion   = xerrors.New("resource exhaustion")
)

// Failure wraps err as kind keeping the original message
func Failure(kind, err error, format string, a ...interface{}) error {
	return xerrors.Errorf("%v: %v: %w", fmt.Sprintf(format, a...), err, kind)
}
