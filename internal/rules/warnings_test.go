package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsistencyWarnings(t *testing.T) {
	table := loadTestTable(t)

	warnings := table.Warnings()
	assert.Contains(t, warnings, Warning{
		CountryCode: "1000",
		Entity:      "NORWAY_WL",
		TaxCode:     "X1",
		Message:     "valid tax code 'X1' is skipped by the country",
	})
	assert.Contains(t, warnings, Warning{
		CountryCode: "1000",
		Entity:      "NORWAY_WL",
		TaxCode:     "A1",
		Message:     "override tax code 'A1' is not among the entity's valid taxes",
	})
	for _, w := range warnings {
		assert.NotEqual(t, "NORWAY", w.Entity, "unexpected warning: %s", w)
	}
}

func TestConsistencyWarnings_EntitySkipsItsOwnValidTax(t *testing.T) {
	content := `1000:
  country: Norway
  entities:
    NORWAY:
      type: company_code
      valid_taxes: [A1]
      skipped_taxes: [A1]
      gl_accounts: {write_off_common: {number: 1}}
`
	table, err := Parse([]byte(content), "rules.yaml", nil)
	assert.NoError(t, err)
	assert.Equal(t, []Warning{{
		CountryCode: "1000",
		Entity:      "NORWAY",
		TaxCode:     "A1",
		Message:     "valid tax code 'A1' is skipped by the entity",
	}}, table.Warnings())
	assert.Equal(t, "1000/NORWAY: valid tax code 'A1' is skipped by the entity", table.Warnings()[0].String())
}
