package payroll

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s: expected %v, got %v", label, want, got)
	}
}

func TestTaxExemptAtThreshold(t *testing.T) {
	// 240,000 exemption annualizes cleanly: 10,000 per period lands on
	// the threshold exactly, one cent more crosses it.
	calc := NewTaxCalculatorWithTable(240000, []TaxBracket{{Lower: 240000, Rate: 0.15, Label: "over 240,000"}})

	result := calc.Compute(10000, SalaryTypeMonthly)
	if result.PeriodTax != 0 {
		t.Fatalf("expected zero tax at exemption threshold, got %v", result.PeriodTax)
	}
	if len(result.Brackets) != 0 {
		t.Fatalf("expected empty bracket breakdown, got %d entries", len(result.Brackets))
	}

	over := calc.Compute(10000.01, SalaryTypeMonthly)
	if over.PeriodTax <= 0 {
		t.Fatalf("expected positive tax just over threshold, got %v", over.PeriodTax)
	}
	if len(over.Brackets) != 1 {
		t.Fatalf("expected a single bracket touched, got %d", len(over.Brackets))
	}
}

func TestTaxBelowDefaultExemption(t *testing.T) {
	calc := NewTaxCalculator()

	// 10,000 per period annualizes to 240,000, under the 250,000
	// default exemption.
	result := calc.Compute(10000, SalaryTypeMonthly)
	if result.PeriodTax != 0 || result.AnnualTax != 0 {
		t.Fatalf("expected exempt income, got %+v", result)
	}
}

func TestTaxBracketWalk(t *testing.T) {
	calc := NewTaxCalculator()

	// 25,000 per period annualizes to 600,000: 150,000 taxed at 15%
	// and 200,000 at 20%.
	result := calc.Compute(25000, SalaryTypeMonthly)

	approx(t, result.AnnualTaxableIncome, 600000, "annual taxable income")
	approx(t, result.AnnualTax, 62500, "annual tax")
	approx(t, result.PeriodTax, 62500.0/24, "period tax")
	approx(t, result.EffectiveRate, 62500.0/600000*100, "effective rate")

	if len(result.Brackets) != 2 {
		t.Fatalf("expected 2 brackets, got %d", len(result.Brackets))
	}
	approx(t, result.Brackets[0].TaxAmount, 22500, "first bracket amount")
	approx(t, result.Brackets[0].TaxRate, 0.15, "first bracket rate")
	approx(t, result.Brackets[1].TaxAmount, 40000, "second bracket amount")
	approx(t, result.Brackets[1].TaxRate, 0.20, "second bracket rate")
}

func TestTaxRaisedExemptionAlignsBrackets(t *testing.T) {
	// A 500,000 exemption swallows the 15% bracket entirely and eats
	// into the 20% one, whose floor must move up to the exemption.
	calc := NewTaxCalculatorWithTable(500000, DefaultTaxBrackets())

	// 25,000 per period annualizes to 600,000: only the 100,000 above
	// the exemption is taxable, all at 20%.
	result := calc.Compute(25000, SalaryTypeMonthly)
	approx(t, result.AnnualTax, 100000*0.20, "annual tax")
	if len(result.Brackets) != 1 {
		t.Fatalf("expected a single bracket touched, got %+v", result.Brackets)
	}
	approx(t, result.Brackets[0].TaxRate, 0.20, "bracket rate")

	// Income under the raised exemption stays fully exempt even though
	// it clears the default table's first two floors.
	exempt := calc.Compute(20000, SalaryTypeMonthly) // 480,000 annual
	if exempt.PeriodTax != 0 || len(exempt.Brackets) != 0 {
		t.Fatalf("expected exempt income under raised exemption, got %+v", exempt)
	}
}

func TestTaxTopBracketUnbounded(t *testing.T) {
	calc := NewTaxCalculator()

	// 500,000 per period is 12,000,000 annually, reaching the open-ended
	// 35% bracket.
	result := calc.Compute(500000, SalaryTypeMonthly)
	if len(result.Brackets) != 5 {
		t.Fatalf("expected all 5 brackets touched, got %d", len(result.Brackets))
	}
	top := result.Brackets[4]
	approx(t, top.TaxAmount, 4000000*0.35, "top bracket amount")
}

func TestTaxZeroAndNegativeEarnings(t *testing.T) {
	calc := NewTaxCalculator()

	if got := calc.Compute(0, SalaryTypeMonthly).PeriodTax; got != 0 {
		t.Fatalf("expected zero tax on zero earnings, got %v", got)
	}
	if got := calc.Compute(math.NaN(), SalaryTypeMonthly).PeriodTax; got != 0 {
		t.Fatalf("expected NaN earnings coerced to zero tax, got %v", got)
	}
}

func TestTaxDeterministic(t *testing.T) {
	calc := NewTaxCalculator()

	first := calc.Compute(33333.33, SalaryTypeMonthly)
	second := calc.Compute(33333.33, SalaryTypeMonthly)
	if first.PeriodTax != second.PeriodTax || first.AnnualTax != second.AnnualTax {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestTaxCustomTable(t *testing.T) {
	calc := NewTaxCalculatorWithTable(0, []TaxBracket{{Lower: 0, Rate: 0.6, Label: "flat 60%"}})

	result := calc.Compute(1000, SalaryTypeMonthly)
	approx(t, result.PeriodTax, 600, "flat period tax")
	if result.Brackets[0].Bracket != "flat 60%" {
		t.Fatalf("unexpected bracket label %q", result.Brackets[0].Bracket)
	}
}
