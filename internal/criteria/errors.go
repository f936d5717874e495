package criteria

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes criteria errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedComparison indicates a comparison kind outside its closed set.
	ErrCodeUnsupportedComparison ErrorCode = "UNSUPPORTED_COMPARISON"

	// ErrCodeTypeMismatch indicates a criterion whose value type differs from its target.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeInvalidPaging indicates a negative page index or page size.
	ErrCodeInvalidPaging ErrorCode = "INVALID_PAGING"
)

// UnsupportedComparisonError reports a comparison kind without an operator
// mapping. It always indicates a caller bug, never a data condition.
type UnsupportedComparisonError struct {
	// Kind is the vocabulary name, e.g. "StringComparison".
	Kind string

	// Value is the offending numeric value.
	Value int
}

func (e *UnsupportedComparisonError) Error() string {
	return fmt.Sprintf("%s with value %d hasn't been implemented", e.Kind, e.Value)
}

// Code returns ErrCodeUnsupportedComparison.
func (e *UnsupportedComparisonError) Code() ErrorCode { return ErrCodeUnsupportedComparison }

// TypeMismatchError reports a criterion whose value type does not match the
// property or column it was matched to.
type TypeMismatchError struct {
	Field string
	Want  ValueType
	Got   ValueType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: criterion is %s but target is %s", e.Field, e.Got, e.Want)
}

// Code returns ErrCodeTypeMismatch.
func (e *TypeMismatchError) Code() ErrorCode { return ErrCodeTypeMismatch }

// PagingError reports an invalid paging envelope.
type PagingError struct {
	Message string
}

func (e *PagingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeInvalidPaging, e.Message)
}

// Code returns ErrCodeInvalidPaging.
func (e *PagingError) Code() ErrorCode { return ErrCodeInvalidPaging }

// IsUnsupportedComparison reports whether err wraps an UnsupportedComparisonError.
func IsUnsupportedComparison(err error) bool {
	var ue *UnsupportedComparisonError
	return errors.As(err, &ue)
}

// IsTypeMismatch reports whether err wraps a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var te *TypeMismatchError
	return errors.As(err, &te)
}

// ErrorCodeOf extracts the code of a criteria error, or "" for other errors.
func ErrorCodeOf(err error) ErrorCode {
	var coded interface{ Code() ErrorCode }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
