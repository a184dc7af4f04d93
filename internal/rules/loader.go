package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"fjacquet/ar-clearing/internal/configerror"
	"fjacquet/ar-clearing/internal/logging"
	"fjacquet/ar-clearing/internal/validation"

	"gopkg.in/yaml.v3"
)

var countryCodePattern = regexp.MustCompile(`^\d{4}$`)

// Table is the loaded rules file indexed by country code, then entity name.
// It is read-only once returned by Load or Parse.
type Table struct {
	source    string
	countries map[string]*CountryRule
	codes     []string
	warnings  []Warning
	logger    logging.Logger
}

// Load reads and validates the rules file at path
func Load(path string, logger logging.Logger) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clearing rules: %w", err)
	}
	return Parse(data, path, logger)
}

// Parse decodes and validates rules from data. source names the input in errors.
func Parse(data []byte, source string, logger logging.Logger) (*Table, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	log := logger.WithField(logging.FieldSource, source)
	log.Info("Loading clearing rules")

	var countries map[string]*CountryRule
	if err := yaml.Unmarshal(data, &countries); err != nil {
		return nil, configerror.NewParseError(source, err)
	}
	if len(countries) == 0 {
		return nil, &configerror.ValidationError{Source: source, Reason: "no country rules defined"}
	}

	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var errs []error
	for _, code := range codes {
		errs = append(errs, prepareCountry(source, code, countries[code])...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	t := &Table{
		source:    source,
		countries: countries,
		codes:     codes,
		logger:    logger,
	}
	t.warnings = consistencyWarnings(t)
	for _, w := range t.warnings {
		log.Warn(w.Message,
			logging.F(logging.FieldCountryCode, w.CountryCode),
			logging.F(logging.FieldEntity, w.Entity),
			logging.F(logging.FieldTaxCode, w.TaxCode))
	}

	log.Info("Clearing rules loaded", logging.F(logging.FieldCount, len(codes)))
	return t, nil
}

// prepareCountry validates one country and its entities and fills in the
// derived fields (codes, names, compiled pattern).
func prepareCountry(source, code string, c *CountryRule) []error {
	if !countryCodePattern.MatchString(code) {
		return []error{&configerror.ValidationError{
			Source:   source,
			Location: code,
			Reason:   "country code must consist of exactly 4 digits",
		}}
	}
	if c == nil {
		return []error{&configerror.ValidationError{Source: source, Location: code, Reason: "country record is empty"}}
	}
	c.Code = code

	var errs []error
	if err := validation.Struct(c, source, code); err != nil {
		errs = append(errs, err)
	}

	if c.CaseIDPattern != "" {
		rx, err := regexp.Compile(caseIDExpression(c.CaseIDPattern))
		if err != nil {
			errs = append(errs, &configerror.ValidationError{
				Source:   source,
				Location: code,
				Field:    "case_id_rx",
				Reason:   fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
		c.caseID = rx
	}

	names := make([]string, 0, len(c.Entities))
	for name := range c.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		location := code + ".entities." + name
		e := c.Entities[name]
		if name == "" {
			errs = append(errs, &configerror.ValidationError{Source: source, Location: code + ".entities", Reason: "entity name is required"})
			continue
		}
		if e == nil {
			errs = append(errs, &configerror.ValidationError{Source: source, Location: location, Reason: "entity record is empty"})
			continue
		}
		e.Name = name
		e.CompanyCode = code
		if err := validation.Struct(e, source, location); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Source returns the file the table was loaded from
func (t *Table) Source() string {
	return t.source
}

// Codes returns the country codes in ascending order
func (t *Table) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Country returns the rule of a country code
func (t *Table) Country(code string) (*CountryRule, bool) {
	c, ok := t.countries[code]
	return c, ok
}

// Entity returns the rule of an entity within a country code
func (t *Table) Entity(code, name string) (*EntityRule, bool) {
	c, ok := t.countries[code]
	if !ok {
		return nil, false
	}
	e, ok := c.Entities[name]
	return e, ok
}

// Warnings returns the consistency warnings found while loading
func (t *Table) Warnings() []Warning {
	out := make([]Warning, len(t.warnings))
	copy(out, t.warnings)
	return out
}

// EntityNames returns the entity names of a country in ascending order
func (c *CountryRule) EntityNames() []string {
	names := make([]string, 0, len(c.Entities))
	for name := range c.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
