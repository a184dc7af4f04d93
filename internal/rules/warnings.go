package rules

import (
	"fmt"
	"sort"
)

// Warning reports a rule combination that loads fine but is likely a mistake
type Warning struct {
	CountryCode string
	Entity      string
	TaxCode     string
	Message     string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s/%s: %s", w.CountryCode, w.Entity, w.Message)
}

// consistencyWarnings compares each entity's valid taxes with the skipped
// and override tax codes of the entity and its country
func consistencyWarnings(t *Table) []Warning {
	var out []Warning
	for _, code := range t.codes {
		c := t.countries[code]
		for _, name := range c.EntityNames() {
			e := c.Entities[name]
			for _, tax := range e.ValidTaxes {
				if contains(c.SkippedTaxes, tax) {
					out = append(out, Warning{code, name, tax,
						fmt.Sprintf("valid tax code '%s' is skipped by the country", tax)})
				}
				if contains(e.SkippedTaxes, tax) {
					out = append(out, Warning{code, name, tax,
						fmt.Sprintf("valid tax code '%s' is skipped by the entity", tax)})
				}
			}
			if len(e.ValidTaxes) == 0 {
				continue
			}
			for _, tax := range overrideTaxes(c) {
				if !contains(e.ValidTaxes, tax) {
					out = append(out, Warning{code, name, tax,
						fmt.Sprintf("override tax code '%s' is not among the entity's valid taxes", tax)})
				}
			}
		}
	}
	return out
}

// overrideTaxes returns the distinct tax codes a country assigns through
// category and currency overrides, sorted
func overrideTaxes(c *CountryRule) []string {
	seen := map[string]bool{}
	for _, tax := range c.CategoryTaxes {
		seen[tax] = true
	}
	for _, tax := range c.CurrencyTaxes {
		seen[tax] = true
	}
	out := make([]string, 0, len(seen))
	for tax := range seen {
		if applicable(tax) {
			out = append(out, tax)
		}
	}
	sort.Strings(out)
	return out
}
