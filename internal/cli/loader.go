package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Column map errors
	ErrCodeUnknownEntity = "E201" // No column map for the entity
	ErrCodeInvalidMap    = "E202" // Column map failed validation

	// Criteria errors
	ErrCodeInvalidCriteria       = "E210" // Criteria document could not be parsed
	ErrCodeUnsupportedComparison = "E211" // Comparison kind outside its closed set
	ErrCodeTypeMismatch          = "E212" // Criterion type differs from the column type
	ErrCodeInvalidPaging         = "E213" // Negative page index or size

	// Execution errors
	ErrCodeQueryFailed = "E220" // Database rejected a query
)

// CommandError is an input or execution failure with its E-code.
type CommandError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *CommandError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error from any layer to its CLI E-code.
func ErrorCode(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}

	var resolveErr *schema.ResolveError
	if errors.As(err, &resolveErr) {
		switch resolveErr.Code {
		case schema.ErrCodeUnknownEntity:
			return ErrCodeUnknownEntity
		case schema.ErrCodeInvalidMap:
			return ErrCodeInvalidMap
		case schema.ErrCodeLoadFailed:
			return ErrCodeLoadFailed
		}
	}

	switch criteria.ErrorCodeOf(err) {
	case criteria.ErrCodeUnsupportedComparison:
		return ErrCodeUnsupportedComparison
	case criteria.ErrCodeTypeMismatch:
		return ErrCodeTypeMismatch
	case criteria.ErrCodeInvalidPaging:
		return ErrCodeInvalidPaging
	}
	return ErrCodeGeneric
}

// errorPos returns the CUE source position carried by err, if any.
func errorPos(err error) token.Pos {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Pos.IsValid() {
		return cmdErr.Pos
	}
	var resolveErr *schema.ResolveError
	if errors.As(err, &resolveErr) {
		return resolveErr.Pos
	}
	return token.NoPos
}

// requirePath fails with ErrCodeNotFound when path does not exist.
func requirePath(kind, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &CommandError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found: %s", kind, path)}
		}
		return &CommandError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", kind, err), Err: err}
	}
	return nil
}

// LoadSchema loads the CUE column maps in dir.
func LoadSchema(dir string) (*schema.Static, error) {
	if err := requirePath("schema directory", dir); err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil || len(files) == 0 {
		return nil, &CommandError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}
	return schema.LoadCUE(dir)
}

// LoadCriteria reads a criteria YAML document.
func LoadCriteria(path string) (*criteria.Set, error) {
	if err := requirePath("criteria file", path); err != nil {
		return nil, err
	}
	set, err := criteria.LoadDocument(path)
	if err != nil {
		return nil, &CommandError{Code: ErrCodeInvalidCriteria, Message: err.Error(), Err: err}
	}
	return set, nil
}
