package payroll

import (
	"context"
	"time"

	"hrpay/internal/domain/attendance"
)

// StoreAPI is the persistence surface the run service depends on. The
// pgx-backed Store implements it; tests substitute a fake.
type StoreAPI interface {
	GetPeriod(ctx context.Context, periodID string) (Period, error)
	MarkPeriodClosed(ctx context.Context, periodID string) (bool, error)
	AcquireRunLock(ctx context.Context, periodID string) (release func(), err error)
	ListHolidays(ctx context.Context, start, end time.Time) ([]Holiday, error)
	ListActiveEmployees(ctx context.Context) ([]EmployeeMeta, error)
	GetSchedule(ctx context.Context, scheduleID string) (*attendance.Schedule, error)
	ListAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error)
	ListBenefits(ctx context.Context, employeeID string, asOf time.Time) ([]Benefit, error)
	ListUnpaidAdvances(ctx context.Context, employeeID string, start, end time.Time) ([]CashAdvance, error)
	SaveResult(ctx context.Context, periodID string, result Result) error
	ListItems(ctx context.Context, periodID string) ([]Item, error)
	GetPayslipData(ctx context.Context, itemID string) (PayslipData, error)
}
