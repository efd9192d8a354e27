package encoder

import (
	"fmt"

	"github.com/c8tools/c8asm/parser"
)

// EncodingError provides context for encoding failures. It includes the
// source position of the failing expression, its canonical source form,
// and the underlying error message.
type EncodingError struct {
	Expr    parser.Expression // Expression that failed to encode
	Message string            // Error description
	Wrapped error             // Underlying error (may be nil)
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	location := ""
	if len(e.Expr.Tokens) > 0 {
		pos := e.Expr.Pos()
		if pos.Filename != "" {
			location = fmt.Sprintf("%s:%d:%d: ", pos.Filename, pos.Line, pos.Column)
		} else if pos.Line > 0 {
			location = fmt.Sprintf("line %d: ", pos.Line)
		}
	}

	var msg string
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	} else {
		msg = fmt.Sprintf("%s%s", location, e.Message)
	}

	if len(e.Expr.Tokens) > 0 {
		msg = fmt.Sprintf("%s\n  source: %s", msg, e.Expr.String())
	}

	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError creates a new EncodingError with expression context.
func NewEncodingError(expr parser.Expression, message string) *EncodingError {
	return &EncodingError{
		Expr:    expr,
		Message: message,
	}
}
