package payroll

const (
	PeriodStatusDraft  = "draft"
	PeriodStatusClosed = "closed"

	SalaryTypeMonthly = "monthly"
	SalaryTypeDaily   = "daily"
	SalaryTypeHourly  = "hourly"

	HolidayTypeRegular = "regular"
	HolidayTypeSpecial = "special"

	DeductionWithholdingTax = "Withholding Tax"
	DeductionCashAdvance    = "Cash Advance"

	// WorkDayHours converts a daily rate into an hourly rate.
	WorkDayHours = 8

	// OvertimeMultiplier is the 50% premium on overtime hours.
	OvertimeMultiplier = 1.5

	// PeriodsPerYear assumes semi-monthly payroll: two periods a month.
	PeriodsPerYear = 24
)
