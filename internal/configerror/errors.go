// Package configerror defines the error types returned while loading the
// logging, settings and clearing-rules files. Every failure is reported at
// load time; callers are expected to abort startup on any of them.
package configerror

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ParseError represents malformed structured text in a configuration file
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: failed to parse: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// decoderLine finds the "line N" the YAML decoder puts in its messages
var decoderLine = regexp.MustCompile(`\bline (\d+)\b`)

// NewParseError wraps a decoder error, taking Line from its message when
// the decoder reports one
func NewParseError(source string, err error) *ParseError {
	e := &ParseError{Source: source, Err: err}
	if err != nil {
		if m := decoderLine.FindStringSubmatch(err.Error()); m != nil {
			e.Line, _ = strconv.Atoi(m[1])
		}
	}
	return e
}

// ValidationError represents a missing or invalid required field.
// Location identifies the record (e.g. "1000.entities.NORWAY"), Field the
// key inside it (e.g. "gl_accounts.write_off_common.number").
type ValidationError struct {
	Source   string
	Location string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	path := e.Field
	if e.Location != "" && e.Field != "" {
		path = e.Location + "." + e.Field
	} else if e.Location != "" {
		path = e.Location
	}
	if path == "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("validation failed for %s at '%s': %s", e.Source, path, e.Reason)
}

// Reference kinds
const (
	KindHandler     = "handler"
	KindFormatter   = "formatter"
	KindPlaceholder = "placeholder"
)

// ReferenceError represents a dangling cross-reference: a logger naming an
// undefined handler, a handler naming an undefined formatter, or a
// placeholder token that has no substitution.
type ReferenceError struct {
	Source   string
	Location string
	Kind     string
	Name     string
}

func (e *ReferenceError) Error() string {
	where := e.Source
	if e.Location != "" {
		if where != "" {
			where += " at '" + e.Location + "'"
		} else {
			where = "'" + e.Location + "'"
		}
	}
	if where == "" {
		return fmt.Sprintf("unresolved %s reference '%s'", e.Kind, e.Name)
	}
	return fmt.Sprintf("unresolved %s reference '%s' in %s", e.Kind, e.Name, where)
}

// IsParseError reports whether err (or any error it wraps or joins) is a ParseError
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsValidationError reports whether err (or any error it wraps or joins) is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsReferenceError reports whether err (or any error it wraps or joins) is a ReferenceError
func IsReferenceError(err error) bool {
	var target *ReferenceError
	return errors.As(err, &target)
}
