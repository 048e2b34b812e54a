package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceFailure is returned when the target service violates its protocol
	// contract (bad status code, missing redirect, missing success marker).
	ErrServiceFailure = errors.New("service failure")

	// ErrPageParse is returned when a rendered page is structurally unexpected.
	// It wraps ErrServiceFailure so callers can treat both uniformly.
	ErrPageParse = fmt.Errorf("%w: malformed account page", ErrServiceFailure)

	// ErrUsernameTaken is returned by registration when the chosen username
	// already exists. It is the only recoverable registration signal.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrFlagFieldMissing is returned when a persisted flag record field is
	// absent from the store for the requested tick.
	ErrFlagFieldMissing = errors.New("flag record field missing")
)
