package rules

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/ar-clearing/internal/logging"
	"fjacquet/ar-clearing/internal/placeholder"

	"github.com/shopspring/decimal"
)

// minimumThreshold replaces a zero base threshold
var minimumThreshold = decimal.RequireFromString("0.01")

// penaltyCategories are the item categories posted to the penalties account
var penaltyCategories = map[string]bool{"010": true, "011": true, "012": true}

// EntityRef identifies an entity selected for processing
type EntityRef struct {
	Entity      string `csv:"entity"`
	CompanyCode string `csv:"company_code"`
	Country     string `csv:"country"`
	Type        string `csv:"type"`
}

// ActiveEntities returns the entities to process. Inactive countries are
// always skipped. When userEntity is set only that entity is returned, even
// if it is marked inactive; otherwise every active entity is returned.
func (t *Table) ActiveEntities(userEntity string) []EntityRef {
	log := t.logger
	if log == nil {
		log = logging.Discard()
	}
	log.Info("Searching for active entities")

	var refs []EntityRef
	for _, code := range t.codes {
		c := t.countries[code]
		if !c.Active {
			log.Warn("Country is excluded from clearing according to the clearing rules",
				logging.F(logging.FieldCountry, c.Country),
				logging.F(logging.FieldCountryCode, code))
			continue
		}

		for _, name := range c.EntityNames() {
			e := c.Entities[name]
			if userEntity != "" {
				if strings.EqualFold(userEntity, name) {
					refs = append(refs, newRef(c, e))
					break
				}
				continue
			}
			if !e.Active {
				log.Warn("Entity is excluded from clearing according to the clearing rules",
					logging.F(logging.FieldEntity, name))
				continue
			}
			refs = append(refs, newRef(c, e))
		}
	}

	log.Info("Active entities found", logging.F(logging.FieldCount, len(refs)))
	return refs
}

// FindEntity looks an entity up by name across all countries, ignoring case
func (t *Table) FindEntity(name string) (*EntityRule, bool) {
	for _, code := range t.codes {
		for entityName, e := range t.countries[code].Entities {
			if strings.EqualFold(entityName, name) {
				return e, true
			}
		}
	}
	return nil, false
}

func newRef(c *CountryRule, e *EntityRule) EntityRef {
	return EntityRef{Entity: e.Name, CompanyCode: c.Code, Country: c.Country, Type: e.Type}
}

// Threshold returns the clearing threshold for a tax code: its own
// threshold if one is defined, else the base threshold. A zero base
// threshold is raised to 0.01.
func (c *CountryRule) Threshold(taxCode string) decimal.Decimal {
	if th, ok := c.TaxThresholds[taxCode]; ok {
		return th.Decimal
	}
	if c.BaseThreshold.IsZero() {
		return minimumThreshold
	}
	return c.BaseThreshold.Decimal
}

// IsSkippedTax reports whether a tax code is excluded from clearing by the
// country or the entity
func (c *CountryRule) IsSkippedTax(e *EntityRule, taxCode string) bool {
	if contains(c.SkippedTaxes, taxCode) {
		return true
	}
	return e != nil && contains(e.SkippedTaxes, taxCode)
}

// TaxCodeFor returns the tax code to post a difference with. current is the
// code found on the items ("" when missing). A universal difference code
// wins; otherwise a missing code is derived from currency, head office and
// category overrides, falling back to the unused tax code.
func (c *CountryRule) TaxCodeFor(e *EntityRule, current, currency, headOffice, category string) string {
	taxCode := current
	if applicable(c.DiffUniversalTaxCode) {
		taxCode = c.DiffUniversalTaxCode
	}
	if taxCode != "" {
		return taxCode
	}

	if code, ok := c.CurrencyTaxes[currency]; ok {
		return code
	}
	if e != nil {
		if code, ok := e.HeadOfficeTaxes[headOffice]; ok {
			return code
		}
	}
	if code, ok := c.CategoryTaxes[category]; ok {
		return code
	}
	if applicable(c.UnusedTaxCode) {
		return c.UnusedTaxCode
	}
	return ""
}

// CaseIDRegexp returns the compiled case-ID matcher, nil if no pattern is set
func (c *CountryRule) CaseIDRegexp() *regexp.Regexp {
	return c.caseID
}

// CaseIDs extracts the case IDs referenced in an item text such as
// "D 1234567" or "DP-1234567".
func (c *CountryRule) CaseIDs(text string) []string {
	if c.caseID == nil {
		return nil
	}
	var ids []string
	for _, m := range c.caseID.FindAllStringSubmatch(text, -1) {
		ids = append(ids, m[2])
	}
	return ids
}

// PostingText builds the posting text of a difference for a customer and
// its case IDs from the local_diff_name template.
func (c *CountryRule) PostingText(customer string, caseIDs []string) (string, error) {
	name, err := placeholder.Expand(c.LocalDiffName, placeholder.Values{placeholder.Customer: customer})
	if err != nil {
		return "", err
	}
	return name + " D " + strings.Join(caseIDs, " D "), nil
}

// GLAccountFor selects the GL account for a remaining amount of an item
// category. No account is used for a zero amount.
func (e *EntityRule) GLAccountFor(amount decimal.Decimal, category string) *GLAccount {
	acc := e.GLAccounts
	switch {
	case amount.IsZero():
		return nil
	case acc.Penalties != nil && penaltyCategories[category]:
		return acc.Penalties
	case acc.WriteOffDebits != nil && amount.IsPositive():
		return acc.WriteOffDebits
	case acc.WriteOffCredits != nil && amount.IsNegative():
		return acc.WriteOffCredits
	default:
		return acc.WriteOffCommon
	}
}

// SharedCostCenter returns the cost center when both segments use the same one
func (g *GLAccount) SharedCostCenter() (string, bool) {
	if g.CostCenter.Trade == g.CostCenter.Retail {
		return g.CostCenter.Trade, true
	}
	return "", false
}

// CostCenterFor returns the cost center of a customer segment
func (g *GLAccount) CostCenterFor(segment string) (string, error) {
	if cc, ok := g.SharedCostCenter(); ok {
		return cc, nil
	}
	switch strings.ToLower(segment) {
	case SegmentTrade:
		return g.CostCenter.Trade, nil
	case SegmentRetail:
		return g.CostCenter.Retail, nil
	default:
		return "", fmt.Errorf("unknown customer segment '%s' for GL account %d", segment, g.Number)
	}
}

// Recipients returns the e-mail addresses of the entity's accountants
func (e *EntityRule) Recipients() []string {
	out := make([]string, 0, len(e.Accountants))
	for _, a := range e.Accountants {
		out = append(out, a.Email)
	}
	return out
}

// UsesWorklist reports whether the entity's items are selected by worklist
// rather than by company code
func (e *EntityRule) UsesWorklist() bool {
	return e.Type == TypeWorklist
}

func applicable(code string) bool {
	return code != "" && code != NotApplicable
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// caseIDExpression embeds a country's case-ID fragment into the matcher
// for "D"/"DP" prefixed references
func caseIDExpression(fragment string) string {
	return `(?i)(\A|[^a-zA-Z])DP?\s*[-_/]?\s*(` + fragment + `)`
}
