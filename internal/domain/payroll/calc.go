package payroll

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"hrpay/internal/domain/attendance"
)

// Calculator turns one employee's attendance and compensation
// configuration into a period pay result. It holds no state beyond its
// collaborators and performs no I/O; the service layer owns persistence.
type Calculator struct {
	tax    *TaxCalculator
	logger *slog.Logger
}

func NewCalculator(tax *TaxCalculator, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{tax: tax, logger: logger}
}

func (c *Calculator) Calculate(emp EmployeeInput, holidays []Holiday, periodStart, periodEnd time.Time, deductionsEnabled bool) Result {
	result := Result{EmployeeID: emp.EmployeeID}

	var totalLate, totalUndertime, totalOvertime int
	attendedDays := 0
	attendedDates := make(map[string]bool)
	for _, rec := range emp.Attendance {
		metrics := attendance.Reduce(rec, emp.Schedule)
		totalLate += metrics.LateMinutes
		totalUndertime += metrics.UndertimeMinutes
		totalOvertime += metrics.OvertimeMinutes
		if rec.TimeIn != nil && rec.TimeOut != nil {
			attendedDays++
			attendedDates[dayKey(rec.Date)] = true
		}
	}

	overtimeHours := float64(totalOvertime) / 60

	switch emp.SalaryType {
	case SalaryTypeMonthly:
		expectedDays := expectedWorkDays(emp.Schedule, periodStart, periodEnd)
		halfMonth := sanitize(emp.SalaryRate / 2)
		dailyRate := safeDivide(halfMonth, float64(expectedDays))
		hourlyRate := safeDivide(dailyRate, WorkDayHours)
		c.logger.Debug("rates computed",
			"employee", emp.EmployeeID,
			"expectedWorkDays", expectedDays,
			"dailyRate", dailyRate,
			"hourlyRate", hourlyRate,
		)

		// Basic pay is the full half-month salary regardless of
		// attendance; absences surface through the present-day gross.
		result.BasicPay = halfMonth
		result.OvertimePay = sanitize(overtimeHours * hourlyRate * OvertimeMultiplier)

		grossPresent := sanitize(float64(attendedDays) * dailyRate)
		timeAdjustments := sanitize(float64(totalLate+totalUndertime) / 60 * hourlyRate)

		for _, holiday := range holidays {
			if !holiday.IsActive {
				continue
			}
			if holiday.Date.Before(periodStart) || holiday.Date.After(periodEnd) {
				continue
			}
			if !attendedDates[dayKey(holiday.Date)] {
				continue
			}
			pay := dailyRate * holiday.PayRate
			result.HolidayPay += pay
			c.logger.Debug("holiday pay added",
				"employee", emp.EmployeeID,
				"holiday", holiday.Name,
				"payRate", holiday.PayRate,
				"amount", pay,
			)
		}
		result.HolidayPay = sanitize(result.HolidayPay)

		result.TotalEarnings = sanitize(math.Max(0, grossPresent+result.OvertimePay+result.HolidayPay-timeAdjustments))

	default:
		// Daily and hourly employees: base pay is priced by the caller;
		// only overtime and time adjustments are applied here.
		hourlyRate := emp.SalaryRate
		if emp.SalaryType == SalaryTypeDaily {
			hourlyRate = safeDivide(emp.SalaryRate, WorkDayHours)
		}
		result.BasicPay = sanitize(emp.BasicPay)
		result.OvertimePay = sanitize(overtimeHours * hourlyRate * OvertimeMultiplier)
		timeAdjustments := sanitize(float64(totalLate+totalUndertime) / 60 * hourlyRate)
		result.TotalEarnings = sanitize(math.Max(0, result.BasicPay+result.OvertimePay-timeAdjustments))
	}

	if deductionsEnabled {
		c.applyDeductions(&result, emp, periodStart, periodEnd)
	}

	result.NetPay = math.Max(0, result.TotalEarnings-result.TotalDeductions)
	return result
}

func (c *Calculator) applyDeductions(result *Result, emp EmployeeInput, periodStart, periodEnd time.Time) {
	var total float64

	taxResult := c.tax.Compute(result.TotalEarnings, emp.SalaryType)
	if taxResult.PeriodTax > 0 {
		total += taxResult.PeriodTax
		result.Deductions = append(result.Deductions, DeductionLine{Name: DeductionWithholdingTax, Amount: taxResult.PeriodTax})
		c.logger.Debug("withholding tax applied",
			"employee", emp.EmployeeID,
			"periodTax", taxResult.PeriodTax,
			"effectiveRate", taxResult.EffectiveRate,
			"brackets", len(taxResult.Brackets),
		)
	}

	// Benefits are tried strictly in assignment order. A contribution
	// that would push net pay negative is skipped, not resized, and
	// later benefits still get their chance against the remaining
	// headroom.
	for _, benefit := range sortedBenefits(emp.Benefits) {
		if benefit.EmployeeContribution <= 0 {
			continue
		}
		if result.TotalEarnings-(total+benefit.EmployeeContribution) < 0 {
			c.logger.Debug("benefit deduction skipped",
				"employee", emp.EmployeeID,
				"benefit", benefit.Name,
				"contribution", benefit.EmployeeContribution,
			)
			continue
		}
		total += benefit.EmployeeContribution
		result.Deductions = append(result.Deductions, DeductionLine{Name: benefit.Name, Amount: benefit.EmployeeContribution})
		c.logger.Debug("benefit deduction committed",
			"employee", emp.EmployeeID,
			"benefit", benefit.Name,
			"contribution", benefit.EmployeeContribution,
		)
	}

	// Cash advances are recovered in full with no headroom guard; the
	// final net-pay clamp is the only safety net. Asymmetric with
	// benefits on purpose.
	for _, advance := range emp.Advances {
		// Compare calendar days, not instants. The period bounds are
		// dates at midnight; an advance timestamped later on the end
		// date still belongs to this period.
		issued := attendance.DayOf(advance.IssuedAt)
		if issued.Before(attendance.DayOf(periodStart)) || issued.After(attendance.DayOf(periodEnd)) {
			continue
		}
		total += advance.Amount
		result.Deductions = append(result.Deductions, DeductionLine{Name: DeductionCashAdvance, Amount: advance.Amount})
		result.PaidAdvanceIDs = append(result.PaidAdvanceIDs, advance.ID)
		c.logger.Debug("cash advance recovered",
			"employee", emp.EmployeeID,
			"advance", advance.ID,
			"amount", advance.Amount,
		)
	}

	result.TotalDeductions = sanitize(total)
}

// expectedWorkDays counts the calendar days in [start, end] that fall on
// the schedule's working days, Monday through Friday when no schedule is
// assigned.
func expectedWorkDays(sched *attendance.Schedule, start, end time.Time) int {
	workingDays := attendance.DefaultWorkingDays
	if sched != nil && len(sched.WorkingDays) > 0 {
		workingDays = sched.WorkingDays
	}
	names := make(map[string]bool, len(workingDays))
	for _, d := range workingDays {
		names[d] = true
	}

	days := 0
	for d := attendance.DayOf(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if names[attendance.WeekdayName(d.Weekday())] {
			days++
		}
	}
	return days
}

// sortedBenefits fixes the deduction order: assignment date, then name.
// The skip rule above makes ordering observable, so it cannot be left to
// whatever the data layer happened to return.
func sortedBenefits(benefits []Benefit) []Benefit {
	out := make([]Benefit, len(benefits))
	copy(out, benefits)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.Before(out[j].AssignedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
