package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks invalid startup parameters (bad chunk/overlap,
	// unknown embedding profile, dimensionality mismatch). Fatal, never retried.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrModelUnavailable marks an unreachable or unloaded embedding or
	// generation backend. Surfaced to the caller, never substituted.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
