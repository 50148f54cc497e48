package ml

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the artifact loader and the predictor.
// Callers match them with errors.Is; the returned errors carry the path or cause.
var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrArtifactCorrupt  = errors.New("model artifact corrupt")
	ErrSchemaMismatch   = errors.New("record does not match model schema")
)

// SchemaMismatchError lists the fields a record is missing and the fields the
// model does not know about. Both slices are sorted.
type SchemaMismatchError struct {
	Missing    []string
	Unexpected []string
}

func (e *SchemaMismatchError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrSchemaMismatch, strings.Join(parts, "; "))
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

func corruptf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArtifactCorrupt, fmt.Sprintf(format, args...))
}
