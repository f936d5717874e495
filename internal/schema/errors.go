package schema

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes for metadata failures.
const (
	ErrCodeUnknownEntity = "UNKNOWN_ENTITY"
	ErrCodeInvalidMap    = "INVALID_COLUMN_MAP"
	ErrCodeLoadFailed    = "SCHEMA_LOAD_FAILED"
)

// ResolveError is returned when an entity's column map cannot be produced.
// It is never retried.
type ResolveError struct {
	Entity  string
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *ResolveError) Error() string {
	prefix := e.Code
	if e.Entity != "" {
		prefix = fmt.Sprintf("%s: entity %q", e.Code, e.Entity)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), prefix, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// IsUnknownEntity reports whether err is a ResolveError for a missing entity.
func IsUnknownEntity(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeUnknownEntity
}

// IsInvalidMap reports whether err is a ResolveError for a malformed column map.
func IsInvalidMap(err error) bool {
	var re *ResolveError
	return errors.As(err, &re) && re.Code == ErrCodeInvalidMap
}
