// Package rules loads the per-country clearing rules: thresholds, tax
// overrides, GL account mappings and accountant contacts for every entity
// of a company code.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// NotApplicable marks a tax code setting that does not apply
const NotApplicable = "NA"

// Entity type tags
const (
	TypeWorklist    = "worklist"
	TypeCompanyCode = "company_code"
)

// Customer segments used by cost center mappings
const (
	SegmentTrade  = "trade"
	SegmentRetail = "retail"
)

// Amount is a decimal threshold read from a YAML scalar
type Amount struct {
	decimal.Decimal
}

// UnmarshalYAML parses the scalar text as a decimal
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: threshold must be a number", value.Line)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid threshold '%s': %w", value.Line, value.Value, err)
	}
	a.Decimal = d
	return nil
}

// NewAmount builds an Amount from a string, panicking on malformed input.
// Intended for constants and tests.
func NewAmount(s string) Amount {
	return Amount{Decimal: decimal.RequireFromString(s)}
}

// CountryRule holds the clearing parameters of one company code
type CountryRule struct {
	Code                 string                 `yaml:"-"`
	Country              string                 `yaml:"country" validate:"required"`
	Active               bool                   `yaml:"active"`
	BaseThreshold        Amount                 `yaml:"base_threshold"`
	TaxThresholds        map[string]Amount      `yaml:"tax_thresholds"`
	CategoryTaxes        map[string]string      `yaml:"category_taxes"`
	CurrencyTaxes        map[string]string      `yaml:"currency_taxes"`
	DiffUniversalTaxCode string                 `yaml:"diff_universal_tax_code"`
	UnusedTaxCode        string                 `yaml:"unused_tax_code"`
	SkippedTaxes         []string               `yaml:"skipped_taxes"`
	CaseIDPattern        string                 `yaml:"case_id_rx"`
	LocalDiffName        string                 `yaml:"local_diff_name"`
	Entities             map[string]*EntityRule `yaml:"entities" validate:"-"`

	caseID *regexp.Regexp
}

// EntityRule holds the clearing parameters of one entity of a country
type EntityRule struct {
	Name            string            `yaml:"-"`
	CompanyCode     string            `yaml:"-"`
	Type            string            `yaml:"type" validate:"required,oneof=worklist company_code"`
	Active          bool              `yaml:"active"`
	ValidTaxes      []string          `yaml:"valid_taxes"`
	SkippedTaxes    []string          `yaml:"skipped_taxes"`
	HeadOfficeTaxes map[string]string `yaml:"head_office_taxes"`
	GLAccounts      GLAccounts        `yaml:"gl_accounts"`
	Accountants     []Accountant      `yaml:"accountants" validate:"dive"`
}

// GLAccounts maps posting purposes to GL accounts. Only the common
// write-off account is mandatory.
type GLAccounts struct {
	WriteOffCommon  *GLAccount `yaml:"write_off_common" validate:"required"`
	WriteOffDebits  *GLAccount `yaml:"write_off_debits" validate:"omitempty"`
	WriteOffCredits *GLAccount `yaml:"write_off_credits" validate:"omitempty"`
	Penalties       *GLAccount `yaml:"penalties" validate:"omitempty"`
}

// GLAccount is a general-ledger account with its cost centers
type GLAccount struct {
	Number     int64      `yaml:"number" validate:"required"`
	CostCenter CostCenter `yaml:"cost_center"`
}

// CostCenter assigns a cost center per customer segment
type CostCenter struct {
	Trade  string `yaml:"trade"`
	Retail string `yaml:"retail"`
}

// Accountant is a contact notified about an entity's clearing results
type Accountant struct {
	Name    string `yaml:"name"`
	Surname string `yaml:"surname"`
	Email   string `yaml:"mail" validate:"required,email"`
}

// UnmarshalYAML accepts the address under either "mail" or "email"
func (a *Accountant) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name    string `yaml:"name"`
		Surname string `yaml:"surname"`
		Mail    string `yaml:"mail"`
		Email   string `yaml:"email"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	a.Name = raw.Name
	a.Surname = raw.Surname
	a.Email = raw.Mail
	if a.Email == "" {
		a.Email = raw.Email
	}
	return nil
}

// FullName returns "Name Surname"
func (a Accountant) FullName() string {
	return strings.TrimSpace(a.Name + " " + a.Surname)
}
