// Package validation wraps go-playground/validator so that struct tag
// failures surface as configerror.ValidationError values named after the
// YAML keys of the configuration files.
package validation

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"fjacquet/ar-clearing/internal/configerror"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator. Field names are taken from the
// yaml tag, falling back to the mapstructure tag.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"yaml", "mapstructure"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts every failing field into a
// ValidationError located at location inside source. The errors are joined.
func Struct(s interface{}, source, location string) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &configerror.ValidationError{Source: source, Location: location, Reason: err.Error()}
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &configerror.ValidationError{
			Source:   source,
			Location: location,
			Field:    fieldPath(fe.Namespace()),
			Reason:   reason(fe),
		})
	}
	return errors.Join(errs...)
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "required_if":
		return fmt.Sprintf("field is required when %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got '%v'", fe.Param(), fe.Value())
	case "email":
		return fmt.Sprintf("'%v' is not a valid e-mail address", fe.Value())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "numeric":
		return fmt.Sprintf("'%v' must be numeric", fe.Value())
	case "gt", "gte", "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed '%s' check", fe.Tag())
	}
}

// PathExists checks if a given path exists and is accessible.
func PathExists(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}

	return nil
}
