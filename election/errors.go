// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-elect/storage"
)

// Every error returned by Service wraps exactly one of these, or is an
// unexpected storage failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// fail wraps a caller-facing error with the operation and a detail message
func fail(op string, kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, kind, fmt.Sprintf(format, args...))
}

// fromStorage translates storage sentinels into service errors
func fromStorage(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsExpected reports whether err is one of the caller-facing errors above
func IsExpected(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrUnauthorized, ErrInvalidState, ErrConflict, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func errAttr(err error) slog.Attr {
	return slog.String("error", err.Error())
}
