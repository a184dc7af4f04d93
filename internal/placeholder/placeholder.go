// Package placeholder substitutes $name$ tokens found in configuration
// templates with run-time values.
package placeholder

import (
	"path/filepath"
	"regexp"
	"strings"

	"fjacquet/ar-clearing/internal/configerror"
)

// Well-known token names
const (
	AppDir     = "appdir"
	Entity     = "entity"
	CompCode   = "comp_code"
	Date       = "date"
	Customer   = "customer"
	ReportPath = "ReportPath"
	TblRows    = "TblRows"
)

var tokenPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)\$`)

// Values maps token names (without the dollar signs) to their substitutions
type Values map[string]string

// Tokens returns the distinct token names used in s, in order of first appearance
func Tokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Expand replaces every token in s with its value. A token without a value
// yields a ReferenceError; s is left untouched in that case.
func Expand(s string, values Values) (string, error) {
	for _, name := range Tokens(s) {
		if _, ok := values[name]; !ok {
			return s, &configerror.ReferenceError{Location: s, Kind: configerror.KindPlaceholder, Name: name}
		}
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		return values[tok[1:len(tok)-1]]
	}), nil
}

// ExpandPath expands s and normalises both slash styles to the platform
// separator, so "$appdir$\rules.yaml" works on any OS.
func ExpandPath(s string, values Values) (string, error) {
	expanded, err := Expand(s, values)
	if err != nil {
		return s, err
	}
	return NormalizePath(expanded), nil
}

// NormalizePath converts mixed separators to the platform separator and
// cleans the result. A leading UNC prefix (\\server) is preserved.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	unc := strings.HasPrefix(p, `\\`) || strings.HasPrefix(p, "//")
	p = filepath.Clean(filepath.FromSlash(strings.ReplaceAll(p, `\`, "/")))
	if unc {
		sep := string(filepath.Separator)
		p = sep + strings.TrimLeft(p, sep)
		p = sep + p
	}
	return p
}

// Check reports a ReferenceError for the first token in s that is not in allowed
func Check(s string, allowed ...string) error {
	for _, name := range Tokens(s) {
		ok := false
		for _, a := range allowed {
			if a == name {
				ok = true
				break
			}
		}
		if !ok {
			return &configerror.ReferenceError{Location: s, Kind: configerror.KindPlaceholder, Name: name}
		}
	}
	return nil
}
