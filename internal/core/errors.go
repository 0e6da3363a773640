package core

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal import errors. Nothing is written when one of these is returned.
var (
	ErrUnknownProfile        = errors.New("unknown import profile")
	ErrAmbiguousDelimiter    = errors.New("cannot determine delimiter")
	ErrEncoding              = errors.New("file encoding error")
	ErrMissingRequiredColumn = errors.New("missing required column")
	ErrUnknownEntity         = errors.New("unknown import entity")
	ErrEmptyFile             = errors.New("file is empty")
	ErrFileTooLarge          = errors.New("file exceeds maximum size")
	ErrDuplicateFile         = errors.New("file was already imported")
	ErrInvalidProfile        = errors.New("invalid import profile")
	ErrUnknownOverrideField  = errors.New("mapping names an unknown field")
)

// Row-level error kinds. They surface in Result.Failures, never as the
// error returned from an import.
var (
	ErrInvalidNumericFormat = errors.New("invalid numeric format")
	ErrValidation           = errors.New("validation error")
	ErrBatchCommit          = errors.New("batch commit failed")
)

// MissingColumnsError lists every required field no header could be bound to.
type MissingColumnsError struct {
	Fields []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingRequiredColumn
}

// EncodingError reports the first undecodable byte of a file.
type EncodingError struct {
	Encoding Encoding
	Offset   int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("file is not valid %s (first bad byte at offset %d)", e.Encoding, e.Offset)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// NumericFormatError is returned by DecimalConverter.Convert.
type NumericFormatError struct {
	Text   string
	Reason string
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("invalid number %q: %s", e.Text, e.Reason)
}

func (e *NumericFormatError) Is(target error) bool {
	return target == ErrInvalidNumericFormat
}

// BatchCommitError wraps the storage error that rejected a batch.
type BatchCommitError struct {
	Batch int
	Rows  int
	Err   error
}

func (e *BatchCommitError) Error() string {
	return fmt.Sprintf("batch %d (%d rows) not committed: %v", e.Batch, e.Rows, e.Err)
}

func (e *BatchCommitError) Unwrap() error { return e.Err }

func (e *BatchCommitError) Is(target error) bool {
	return target == ErrBatchCommit
}

// FieldError is a single conversion or validation problem in a row.
type FieldError struct {
	Field   string      `json:"field"`
	Value   string      `json:"value,omitempty"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}
