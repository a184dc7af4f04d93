package configerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name:     "with line",
			err:      &ParseError{Source: "rules.yaml", Line: 12, Err: errors.New("mapping values are not allowed")},
			expected: "rules.yaml:12: failed to parse: mapping values are not allowed",
		},
		{
			name:     "without line",
			err:      &ParseError{Source: "log_config.yaml", Err: errors.New("unexpected EOF")},
			expected: "log_config.yaml: failed to parse: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	parseErr := &ParseError{Source: "app_config.yaml", Err: originalErr}

	assert.Equal(t, originalErr, parseErr.Unwrap())
	assert.True(t, errors.Is(parseErr, originalErr))
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name: "location and field",
			err: &ValidationError{
				Source:   "rules.yaml",
				Location: "1000.entities.NORWAY",
				Field:    "gl_accounts.write_off_common.number",
				Reason:   "field is required",
			},
			expected: "validation failed for rules.yaml at '1000.entities.NORWAY.gl_accounts.write_off_common.number': field is required",
		},
		{
			name:     "field only",
			err:      &ValidationError{Source: "app_config.yaml", Field: "sap.system", Reason: "field is required"},
			expected: "validation failed for app_config.yaml at 'sap.system': field is required",
		},
		{
			name:     "no path",
			err:      &ValidationError{Source: "log_config.yaml", Reason: "unsupported version 2"},
			expected: "validation failed for log_config.yaml: unsupported version 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestReferenceError(t *testing.T) {
	err := &ReferenceError{Source: "log_config.yaml", Location: "loggers.master", Kind: KindHandler, Name: "file"}
	assert.Equal(t, "unresolved handler reference 'file' in log_config.yaml at 'loggers.master'", err.Error())

	bare := &ReferenceError{Kind: KindPlaceholder, Name: "entity"}
	assert.Equal(t, "unresolved placeholder reference 'entity'", bare.Error())
}

func TestIsHelpers_ThroughWrappingAndJoin(t *testing.T) {
	refErr := &ReferenceError{Kind: KindFormatter, Name: "simple"}
	valErr := &ValidationError{Source: "x", Reason: "bad"}

	joined := errors.Join(valErr, refErr)
	wrapped := fmt.Errorf("loading logging config: %w", joined)

	assert.True(t, IsReferenceError(wrapped))
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsParseError(wrapped))
	assert.True(t, IsParseError(&ParseError{Err: errors.New("x")}))
}

func TestNewParseError_Line(t *testing.T) {
	tests := []struct {
		name string
		err  error
		line int
	}{
		{"syntax error", errors.New("yaml: line 7: did not find expected ',' or ']'"), 7},
		{"type error", errors.New("yaml: unmarshal errors:\n  line 4: cannot unmarshal !!seq into string"), 4},
		{"no line", errors.New("yaml: control characters are not allowed"), 0},
		{"word containing line", errors.New("pipeline 3 failed"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewParseError("rules.yaml", tt.err)
			assert.Equal(t, tt.line, e.Line)
			assert.Equal(t, tt.err, e.Unwrap())
		})
	}
}
