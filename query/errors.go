package query

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is comparisons, mirroring the teacher's
// validationError / plain-error-value style (database/postgres/parser.go)
// rather than a panic-based error model (spec.md §4.2: "never as panics").
var (
	ErrUnterminatedString  = errors.New("unterminated string")
	ErrUnknownField        = errors.New("unknown field")
	ErrOperatorNotAllowed  = errors.New("operator not allowed for field")
	ErrValueParse          = errors.New("value parse error")
	ErrQuerySyntax         = errors.New("query syntax error")
)

// SyntaxError reports a QuerySyntaxError (spec.md §7) with the byte offset
// where the grammar gave up.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query syntax error at offset %d: %s", e.Offset, e.Message)
}

func (e *SyntaxError) Unwrap() error { return ErrQuerySyntax }

// UnknownFieldError reports an identifier that didn't resolve in the
// fields.Registry.
type UnknownFieldError struct {
	Offset int
	Token  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q at offset %d", e.Token, e.Offset)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// OperatorNotAllowedError reports an operator outside a field's
// allowed_ops.
type OperatorNotAllowedError struct {
	Offset int
	Field  string
	Op     string
}

func (e *OperatorNotAllowedError) Error() string {
	return fmt.Sprintf("operator %q not allowed for field %q at offset %d", e.Op, e.Field, e.Offset)
}

func (e *OperatorNotAllowedError) Unwrap() error { return ErrOperatorNotAllowed }

// ValueParseError reports a value that failed the field's value parser.
type ValueParseError struct {
	Offset int
	Field  string
	Text   string
	Cause  error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q at offset %d: %s", e.Text, e.Field, e.Offset, e.Cause)
}

func (e *ValueParseError) Unwrap() error { return ErrValueParse }
