package payroll

import "math"

// TaxBracket is one marginal slice of the annual withholding table.
// Lower is the bracket's exclusive floor; the ceiling is the next
// bracket's floor, or unbounded for the last entry.
type TaxBracket struct {
	Lower float64
	Rate  float64
	Label string
}

type BracketTax struct {
	Bracket   string  `json:"bracket"`
	TaxAmount float64 `json:"taxAmount"`
	TaxRate   float64 `json:"taxRate"`
}

type TaxResult struct {
	// PeriodTax is the semi-monthly withholding for the period. The
	// system this replaces labelled it "monthlyTax"; it never was one.
	PeriodTax           float64      `json:"periodTax"`
	AnnualTax           float64      `json:"annualTax"`
	AnnualTaxableIncome float64      `json:"annualTaxableIncome"`
	EffectiveRate       float64      `json:"effectiveRate"`
	Brackets            []BracketTax `json:"brackets,omitempty"`
}

// TaxCalculator applies a progressive annual bracket table to one
// period's earnings. Pure and deterministic: configuration in, tax out.
type TaxCalculator struct {
	exemption float64
	brackets  []TaxBracket
}

// DefaultAnnualExemption is the floor below which annualized income owes
// no withholding tax.
const DefaultAnnualExemption = 250000

// DefaultTaxBrackets returns the standard annual table: 15% / 20% / 25%
// / 30% / 35% marginal slices above the exemption.
func DefaultTaxBrackets() []TaxBracket {
	return []TaxBracket{
		{Lower: 250000, Rate: 0.15, Label: "250,001 - 400,000"},
		{Lower: 400000, Rate: 0.20, Label: "400,001 - 800,000"},
		{Lower: 800000, Rate: 0.25, Label: "800,001 - 2,000,000"},
		{Lower: 2000000, Rate: 0.30, Label: "2,000,001 - 8,000,000"},
		{Lower: 8000000, Rate: 0.35, Label: "Over 8,000,000"},
	}
}

// NewTaxCalculator returns a calculator loaded with the default table.
func NewTaxCalculator() *TaxCalculator {
	return NewTaxCalculatorWithTable(DefaultAnnualExemption, DefaultTaxBrackets())
}

// NewTaxCalculatorWithTable builds a calculator from an ascending
// bracket table, sorted by Lower. The table is aligned to the
// exemption: brackets entirely below it are dropped and a floor under
// it is raised to it, so a raised exemption never leaves an exempt
// slice being itemized.
func NewTaxCalculatorWithTable(exemption float64, brackets []TaxBracket) *TaxCalculator {
	aligned := make([]TaxBracket, 0, len(brackets))
	for i, bracket := range brackets {
		if i+1 < len(brackets) && brackets[i+1].Lower <= exemption {
			continue
		}
		if bracket.Lower < exemption {
			bracket.Lower = exemption
		}
		aligned = append(aligned, bracket)
	}
	return &TaxCalculator{exemption: exemption, brackets: aligned}
}

// Compute annualizes one period's earnings, walks the bracket table and
// converts the annual tax back to a per-period amount. Salary type picks
// the annualization factor; monthly employees are paid semi-monthly, so
// 24 periods make a year. Daily and hourly employees use the same factor
// until their pay paths are fully specified.
func (c *TaxCalculator) Compute(periodEarnings float64, salaryType string) TaxResult {
	annual := sanitize(periodEarnings) * PeriodsPerYear
	result := TaxResult{AnnualTaxableIncome: annual}
	if annual <= c.exemption {
		return result
	}

	var annualTax float64
	for i, bracket := range c.brackets {
		if annual <= bracket.Lower {
			break
		}
		upper := math.Inf(1)
		if i+1 < len(c.brackets) {
			upper = c.brackets[i+1].Lower
		}
		taxable := math.Min(annual, upper) - bracket.Lower
		if taxable <= 0 {
			continue
		}
		amount := taxable * bracket.Rate
		annualTax += amount
		result.Brackets = append(result.Brackets, BracketTax{
			Bracket:   bracket.Label,
			TaxAmount: amount,
			TaxRate:   bracket.Rate,
		})
	}

	result.AnnualTax = sanitize(annualTax)
	result.PeriodTax = safeDivide(result.AnnualTax, PeriodsPerYear)
	result.EffectiveRate = safeDivide(result.AnnualTax, annual) * 100
	return result
}
