package payroll

import (
	"time"

	"hrpay/internal/domain/attendance"
)

type Period struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	Status            string    `json:"status"`
	DeductionsEnabled bool      `json:"deductionsEnabled"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Holiday struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Date     time.Time `json:"date"`
	PayRate  float64   `json:"payRate"`
	IsActive bool      `json:"isActive"`
}

type Benefit struct {
	Name                 string    `json:"name"`
	EmployeeContribution float64   `json:"employeeContribution"`
	AssignedAt           time.Time `json:"assignedAt"`
}

type CashAdvance struct {
	ID       string    `json:"id"`
	Amount   float64   `json:"amount"`
	IssuedAt time.Time `json:"issuedAt"`
}

// EmployeeInput is everything the calculator needs for one employee:
// compensation configuration plus the period's raw attendance. BasicPay
// is only consulted for daily and hourly salary types, where the caller
// prices the base pay; the monthly path derives it from SalaryRate.
type EmployeeInput struct {
	EmployeeID string
	SalaryType string
	SalaryRate float64
	BasicPay   float64
	Schedule   *attendance.Schedule
	Attendance []attendance.Record
	Benefits   []Benefit
	Advances   []CashAdvance
}

type DeductionLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Result is the computed pay for one employee in one period.
type Result struct {
	EmployeeID      string          `json:"employeeId"`
	BasicPay        float64         `json:"basicPay"`
	OvertimePay     float64         `json:"overtimePay"`
	HolidayPay      float64         `json:"holidayPay"`
	TotalEarnings   float64         `json:"totalEarnings"`
	TotalDeductions float64         `json:"totalDeductions"`
	NetPay          float64         `json:"netPay"`
	Deductions      []DeductionLine `json:"deductions"`
	PaidAdvanceIDs  []string        `json:"-"`
}

type Item struct {
	ID              string          `json:"id"`
	PeriodID        string          `json:"periodId"`
	EmployeeID      string          `json:"employeeId"`
	EmployeeName    string          `json:"employeeName"`
	BasicPay        float64         `json:"basicPay"`
	OvertimePay     float64         `json:"overtimePay"`
	HolidayPay      float64         `json:"holidayPay"`
	TotalEarnings   float64         `json:"totalEarnings"`
	TotalDeductions float64         `json:"totalDeductions"`
	NetPay          float64         `json:"netPay"`
	Deductions      []DeductionLine `json:"deductions"`
}

type RunSummary struct {
	TotalEmployees  int     `json:"totalEmployees"`
	TotalEarnings   float64 `json:"totalEarnings"`
	TotalDeductions float64 `json:"totalDeductions"`
	TotalNetPay     float64 `json:"totalNetPay"`
	Failed          int     `json:"failed"`
}

// EmployeeMeta is the payroll-relevant employee row; the service fills
// in attendance, benefits and advances per period before calculating.
type EmployeeMeta struct {
	EmployeeID string
	FirstName  string
	LastName   string
	SalaryType string
	SalaryRate float64
	ScheduleID string
}

type PayslipData struct {
	Item       Item
	PeriodName string
	StartDate  time.Time
	EndDate    time.Time
}
