package payroll

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"hrpay/internal/domain/attendance"
)

var testShift = &attendance.Schedule{
	Name:        "day",
	TimeIn:      "08:00",
	TimeOut:     "17:00",
	WorkingDays: attendance.DefaultWorkingDays,
}

func quietCalculator(tax *TaxCalculator) *Calculator {
	return NewCalculator(tax, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func date(t *testing.T, day string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad date %s: %v", day, err)
	}
	return parsed
}

func cleanDay(t *testing.T, day string) attendance.Record {
	t.Helper()
	return punchedDay(t, day, "08:00", "17:00")
}

func punchedDay(t *testing.T, day, in, out string) attendance.Record {
	t.Helper()
	timeIn, err := time.Parse("2006-01-02 15:04", day+" "+in)
	if err != nil {
		t.Fatalf("bad time in: %v", err)
	}
	timeOut, err := time.Parse("2006-01-02 15:04", day+" "+out)
	if err != nil {
		t.Fatalf("bad time out: %v", err)
	}
	return attendance.Record{
		EmployeeID: "e1",
		Date:       date(t, day),
		TimeIn:     &timeIn,
		TimeOut:    &timeOut,
	}
}

// Two full weeks, 2025-03-03 (Monday) through 2025-03-14 (Friday):
// ten expected working days on the Monday-Friday shift.
func twoWeekInput(t *testing.T) (EmployeeInput, time.Time, time.Time) {
	t.Helper()
	days := []string{
		"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06",
		"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14",
	}
	var records []attendance.Record
	for _, day := range days {
		records = append(records, cleanDay(t, day))
	}
	emp := EmployeeInput{
		EmployeeID: "e1",
		SalaryType: SalaryTypeMonthly,
		SalaryRate: 20000,
		Schedule:   testShift,
		Attendance: records,
	}
	return emp, date(t, "2025-03-03"), date(t, "2025-03-14")
}

func TestCalculateMonthlyBaseScenario(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	emp, start, end := twoWeekInput(t)

	// Nine of ten expected days attended, no deductions.
	result := calc.Calculate(emp, nil, start, end, false)

	approx(t, result.BasicPay, 10000, "basic pay")
	approx(t, result.OvertimePay, 0, "overtime pay")
	approx(t, result.HolidayPay, 0, "holiday pay")
	approx(t, result.TotalEarnings, 9000, "total earnings")
	approx(t, result.TotalDeductions, 0, "total deductions")
	approx(t, result.NetPay, 9000, "net pay")
	if len(result.Deductions) != 0 {
		t.Fatalf("expected no deduction lines, got %d", len(result.Deductions))
	}
}

func TestCalculateWorkedHoliday(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	emp, start, end := twoWeekInput(t)

	holidays := []Holiday{{Name: "Regular Holiday", Date: date(t, "2025-03-10"), PayRate: 2.0, IsActive: true}}
	result := calc.Calculate(emp, holidays, start, end, false)

	approx(t, result.HolidayPay, 2000, "holiday pay")
	approx(t, result.TotalEarnings, 11000, "total earnings")
}

func TestCalculateUnworkedHolidayIgnored(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	emp, start, end := twoWeekInput(t)

	// 2025-03-07 was not attended; inactive holidays never pay.
	holidays := []Holiday{
		{Name: "Skipped", Date: date(t, "2025-03-07"), PayRate: 2.0, IsActive: true},
		{Name: "Inactive", Date: date(t, "2025-03-10"), PayRate: 2.0, IsActive: false},
		{Name: "Outside", Date: date(t, "2025-03-21"), PayRate: 2.0, IsActive: true},
	}
	result := calc.Calculate(emp, holidays, start, end, false)

	approx(t, result.HolidayPay, 0, "holiday pay")
	approx(t, result.TotalEarnings, 9000, "total earnings")
}

func TestCalculateLateAndUndertimeAdjustment(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	start, end := date(t, "2025-03-03"), date(t, "2025-03-07")

	records := []attendance.Record{
		punchedDay(t, "2025-03-03", "08:30", "17:00"), // 30 late, 30 undertime
		cleanDay(t, "2025-03-04"),
		cleanDay(t, "2025-03-05"),
		cleanDay(t, "2025-03-06"),
		cleanDay(t, "2025-03-07"),
	}
	emp := EmployeeInput{
		EmployeeID: "e1",
		SalaryType: SalaryTypeMonthly,
		SalaryRate: 20000,
		Schedule:   testShift,
		Attendance: records,
	}

	// Five expected days: daily rate 2000, hourly rate 250. The hour of
	// combined late plus undertime costs one hourly rate.
	result := calc.Calculate(emp, nil, start, end, false)
	approx(t, result.TotalEarnings, 5*2000-250, "total earnings")
}

func TestCalculateOvertimePremium(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	start, end := date(t, "2025-03-03"), date(t, "2025-03-07")

	records := []attendance.Record{
		punchedDay(t, "2025-03-03", "08:00", "19:00"), // 2h overtime
		cleanDay(t, "2025-03-04"),
		cleanDay(t, "2025-03-05"),
		cleanDay(t, "2025-03-06"),
		cleanDay(t, "2025-03-07"),
	}
	emp := EmployeeInput{
		EmployeeID: "e1",
		SalaryType: SalaryTypeMonthly,
		SalaryRate: 20000,
		Schedule:   testShift,
		Attendance: records,
	}

	result := calc.Calculate(emp, nil, start, end, false)
	approx(t, result.OvertimePay, 2*250*1.5, "overtime pay")
	approx(t, result.TotalEarnings, 10000+750, "total earnings")
}

// fiveDayInput earns exactly 1000: monthly rate 2000 over one five-day
// week, all days attended.
func fiveDayInput(t *testing.T) (EmployeeInput, time.Time, time.Time) {
	t.Helper()
	var records []attendance.Record
	for _, day := range []string{"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07"} {
		records = append(records, cleanDay(t, day))
	}
	emp := EmployeeInput{
		EmployeeID: "e1",
		SalaryType: SalaryTypeMonthly,
		SalaryRate: 2000,
		Schedule:   testShift,
		Attendance: records,
	}
	return emp, date(t, "2025-03-03"), date(t, "2025-03-07")
}

func TestCalculateBenefitSkipOnNegativeHeadroom(t *testing.T) {
	// Flat 60% table turns 1000 earnings into a 600 period tax.
	calc := quietCalculator(NewTaxCalculatorWithTable(0, []TaxBracket{{Lower: 0, Rate: 0.6, Label: "flat"}}))
	emp, start, end := fiveDayInput(t)
	emp.Benefits = []Benefit{
		{Name: "Health Plan", EmployeeContribution: 300, AssignedAt: date(t, "2024-01-01")},
		{Name: "Pension", EmployeeContribution: 200, AssignedAt: date(t, "2024-06-01")},
	}

	result := calc.Calculate(emp, nil, start, end, true)

	approx(t, result.TotalEarnings, 1000, "total earnings")
	// Tax 600 commits, Health Plan 300 fits the remaining 400, Pension
	// 200 would overdraw the last 100 and is skipped, not resized.
	approx(t, result.TotalDeductions, 900, "total deductions")
	approx(t, result.NetPay, 100, "net pay")
	if len(result.Deductions) != 2 {
		t.Fatalf("expected tax + one benefit, got %+v", result.Deductions)
	}
	if result.Deductions[0].Name != DeductionWithholdingTax || result.Deductions[1].Name != "Health Plan" {
		t.Fatalf("unexpected deduction order: %+v", result.Deductions)
	}
}

func TestCalculateBenefitOrderIsAssignmentDate(t *testing.T) {
	calc := quietCalculator(NewTaxCalculatorWithTable(0, []TaxBracket{{Lower: 0, Rate: 0.6, Label: "flat"}}))
	emp, start, end := fiveDayInput(t)
	// Listed out of order; the later-assigned 300 must lose.
	emp.Benefits = []Benefit{
		{Name: "Health Plan", EmployeeContribution: 300, AssignedAt: date(t, "2024-06-01")},
		{Name: "Pension", EmployeeContribution: 200, AssignedAt: date(t, "2024-01-01")},
	}

	result := calc.Calculate(emp, nil, start, end, true)

	if result.Deductions[1].Name != "Pension" {
		t.Fatalf("expected earliest-assigned benefit first, got %+v", result.Deductions)
	}
	approx(t, result.TotalDeductions, 800, "total deductions")
	approx(t, result.NetPay, 200, "net pay")
}

func TestCalculateCashAdvanceNoHeadroomGuard(t *testing.T) {
	calc := quietCalculator(NewTaxCalculatorWithTable(0, []TaxBracket{{Lower: 0, Rate: 0.6, Label: "flat"}}))
	emp, start, end := fiveDayInput(t)
	emp.Advances = []CashAdvance{
		{ID: "adv1", Amount: 5000, IssuedAt: date(t, "2025-03-05")},
		{ID: "adv2", Amount: 100, IssuedAt: date(t, "2025-02-01")}, // outside period
	}

	result := calc.Calculate(emp, nil, start, end, true)

	// Advances deduct in full even past the headroom; only the final
	// clamp keeps net pay at zero.
	approx(t, result.TotalDeductions, 5600, "total deductions")
	approx(t, result.NetPay, 0, "net pay")
	if len(result.PaidAdvanceIDs) != 1 || result.PaidAdvanceIDs[0] != "adv1" {
		t.Fatalf("expected only the in-period advance consumed, got %v", result.PaidAdvanceIDs)
	}
}

func TestCalculateAdvanceOnPeriodEndDate(t *testing.T) {
	calc := quietCalculator(NewTaxCalculatorWithTable(0, []TaxBracket{{Lower: 0, Rate: 0.6, Label: "flat"}}))
	emp, start, end := fiveDayInput(t)
	// Issued mid-day on the last day of the period. The period end is a
	// date at midnight; day-level comparison must still capture it.
	issuedAt := date(t, "2025-03-07").Add(10 * time.Hour)
	emp.Advances = []CashAdvance{{ID: "adv1", Amount: 100, IssuedAt: issuedAt}}

	result := calc.Calculate(emp, nil, start, end, true)

	if len(result.PaidAdvanceIDs) != 1 || result.PaidAdvanceIDs[0] != "adv1" {
		t.Fatalf("advance issued on the period end date was not consumed: deductions=%+v paid=%v",
			result.Deductions, result.PaidAdvanceIDs)
	}
	// Tax 600 plus the 100 advance.
	approx(t, result.TotalDeductions, 700, "total deductions")
	approx(t, result.NetPay, 300, "net pay")
}

func TestCalculateDeductionsDisabled(t *testing.T) {
	calc := quietCalculator(NewTaxCalculatorWithTable(0, []TaxBracket{{Lower: 0, Rate: 0.6, Label: "flat"}}))
	emp, start, end := fiveDayInput(t)
	emp.Benefits = []Benefit{{Name: "Health Plan", EmployeeContribution: 300, AssignedAt: date(t, "2024-01-01")}}
	emp.Advances = []CashAdvance{{ID: "adv1", Amount: 500, IssuedAt: date(t, "2025-03-05")}}

	result := calc.Calculate(emp, nil, start, end, false)

	approx(t, result.TotalDeductions, 0, "total deductions")
	approx(t, result.NetPay, 1000, "net pay")
	if len(result.Deductions) != 0 || len(result.PaidAdvanceIDs) != 0 {
		t.Fatalf("expected untouched deductions and advances, got %+v", result)
	}
}

func TestCalculateZeroExpectedWorkDays(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	start, end := date(t, "2025-03-03"), date(t, "2025-03-07")

	// Saturday-only schedule over a Monday-Friday window: zero expected
	// days. The division degenerates to zero pay, never NaN.
	emp := EmployeeInput{
		EmployeeID: "e1",
		SalaryType: SalaryTypeMonthly,
		SalaryRate: 20000,
		Schedule: &attendance.Schedule{
			TimeIn:      "08:00",
			TimeOut:     "12:00",
			WorkingDays: []string{"saturday"},
		},
		Attendance: []attendance.Record{cleanDay(t, "2025-03-03")},
	}

	result := calc.Calculate(emp, nil, start, end, true)

	for label, v := range map[string]float64{
		"basicPay":      result.BasicPay,
		"totalEarnings": result.TotalEarnings,
		"netPay":        result.NetPay,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", label, v)
		}
	}
	approx(t, result.TotalEarnings, 0, "total earnings")
	approx(t, result.NetPay, 0, "net pay")
}

func TestCalculateNetPayNeverNegative(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	emp, start, end := fiveDayInput(t)
	emp.Advances = []CashAdvance{{ID: "adv1", Amount: 999999, IssuedAt: date(t, "2025-03-04")}}

	result := calc.Calculate(emp, nil, start, end, true)
	if result.NetPay < 0 {
		t.Fatalf("net pay went negative: %v", result.NetPay)
	}
}

func TestCalculateRecalculationIdempotent(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	emp, start, end := twoWeekInput(t)

	first := calc.Calculate(emp, nil, start, end, true)
	second := calc.Calculate(emp, nil, start, end, true)

	if first.TotalEarnings != second.TotalEarnings || first.NetPay != second.NetPay || len(first.Deductions) != len(second.Deductions) {
		t.Fatalf("recalculation drifted: %+v vs %+v", first, second)
	}
}

func TestCalculateDailyFallback(t *testing.T) {
	calc := quietCalculator(NewTaxCalculator())
	start, end := date(t, "2025-03-03"), date(t, "2025-03-07")

	emp := EmployeeInput{
		EmployeeID: "e1",
		SalaryType: SalaryTypeDaily,
		SalaryRate: 800,
		BasicPay:   4000, // five attended days priced by the caller
		Schedule:   testShift,
		Attendance: []attendance.Record{
			cleanDay(t, "2025-03-03"),
			punchedDay(t, "2025-03-04", "08:00", "19:00"), // 2h overtime
		},
	}

	result := calc.Calculate(emp, nil, start, end, false)

	approx(t, result.BasicPay, 4000, "basic pay")
	// Hourly rate 100: overtime pays 2 * 100 * 1.5.
	approx(t, result.OvertimePay, 300, "overtime pay")
	approx(t, result.TotalEarnings, 4300, "total earnings")
}

func TestExpectedWorkDaysDefaultsToWeekdays(t *testing.T) {
	// No schedule: Monday-Friday assumed over the two calendar weeks.
	got := expectedWorkDays(nil, date(t, "2025-03-03"), date(t, "2025-03-16"))
	if got != 10 {
		t.Fatalf("expected 10 work days, got %d", got)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := safeDivide(10, 0); got != 0 {
		t.Fatalf("expected zero for zero divisor, got %v", got)
	}
	if got := safeDivide(10, 4); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := sanitize(math.Inf(1)); got != 0 {
		t.Fatalf("expected Inf coerced to 0, got %v", got)
	}
}
