package payroll

import (
	"context"
	"log/slog"

	"hrpay/internal/domain/attendance"
)

// Service drives the per-period batch: load configuration, calculate
// each employee, persist each result in its own transaction.
type Service struct {
	store  StoreAPI
	calc   *Calculator
	logger *slog.Logger
}

func NewService(store StoreAPI, calc *Calculator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, calc: calc, logger: logger}
}

// RunPeriod calculates payroll for every active employee in the period.
// Closed periods are rejected before anything is read or written. One
// employee failing to load or persist does not abort the batch; the
// failure is logged, counted, and the loop moves on, so already-written
// items stay valid.
func (s *Service) RunPeriod(ctx context.Context, periodID string) (RunSummary, error) {
	period, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return RunSummary{}, err
	}
	if period.Status == PeriodStatusClosed {
		return RunSummary{}, ErrPeriodClosed
	}

	release, err := s.store.AcquireRunLock(ctx, periodID)
	if err != nil {
		return RunSummary{}, err
	}
	defer release()

	// The status may have flipped while we waited on the lock.
	period, err = s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return RunSummary{}, err
	}
	if period.Status == PeriodStatusClosed {
		return RunSummary{}, ErrPeriodClosed
	}

	holidays, err := s.store.ListHolidays(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return RunSummary{}, err
	}

	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	var summary RunSummary
	for _, meta := range employees {
		result, err := s.runEmployee(ctx, period, meta, holidays)
		if err != nil {
			s.logger.Error("payroll calculation failed",
				"period", periodID,
				"employee", meta.EmployeeID,
				"err", err,
			)
			summary.Failed++
			continue
		}
		summary.TotalEmployees++
		summary.TotalEarnings += result.TotalEarnings
		summary.TotalDeductions += result.TotalDeductions
		summary.TotalNetPay += result.NetPay
	}

	s.logger.Info("payroll run complete",
		"period", periodID,
		"employees", summary.TotalEmployees,
		"failed", summary.Failed,
		"totalNetPay", summary.TotalNetPay,
	)
	return summary, nil
}

func (s *Service) runEmployee(ctx context.Context, period Period, meta EmployeeMeta, holidays []Holiday) (Result, error) {
	input := EmployeeInput{
		EmployeeID: meta.EmployeeID,
		SalaryType: meta.SalaryType,
		SalaryRate: meta.SalaryRate,
	}

	if meta.ScheduleID != "" {
		schedule, err := s.store.GetSchedule(ctx, meta.ScheduleID)
		if err != nil {
			return Result{}, err
		}
		input.Schedule = schedule
	}

	records, err := s.store.ListAttendance(ctx, meta.EmployeeID, period.StartDate, period.EndDate)
	if err != nil {
		return Result{}, err
	}
	input.Attendance = records

	if period.DeductionsEnabled {
		benefits, err := s.store.ListBenefits(ctx, meta.EmployeeID, period.EndDate)
		if err != nil {
			return Result{}, err
		}
		input.Benefits = benefits

		advances, err := s.store.ListUnpaidAdvances(ctx, meta.EmployeeID, period.StartDate, period.EndDate)
		if err != nil {
			return Result{}, err
		}
		input.Advances = advances
	}

	// Daily and hourly base pay is priced from attended days until the
	// detailed proration for those salary types is settled.
	if meta.SalaryType != SalaryTypeMonthly {
		input.BasicPay = basePayFallback(meta, records)
	}

	result := s.calc.Calculate(input, holidays, period.StartDate, period.EndDate, period.DeductionsEnabled)

	if err := s.store.SaveResult(ctx, period.ID, result); err != nil {
		return Result{}, err
	}
	return result, nil
}

func basePayFallback(meta EmployeeMeta, records []attendance.Record) float64 {
	switch meta.SalaryType {
	case SalaryTypeDaily:
		days := 0
		for _, rec := range records {
			if rec.TimeIn != nil && rec.TimeOut != nil {
				days++
			}
		}
		return float64(days) * meta.SalaryRate
	case SalaryTypeHourly:
		minutes := 0
		for _, rec := range records {
			minutes += attendance.Reduce(rec, nil).WorkedMinutes
		}
		return float64(minutes) / 60 * meta.SalaryRate
	default:
		return 0
	}
}

// ClosePeriod is the one-way draft to closed transition. Closed periods
// never reopen.
func (s *Service) ClosePeriod(ctx context.Context, periodID string) error {
	period, err := s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if period.Status == PeriodStatusClosed {
		return ErrPeriodClosed
	}

	closed, err := s.store.MarkPeriodClosed(ctx, periodID)
	if err != nil {
		return err
	}
	if !closed {
		return ErrPeriodClosed
	}
	s.logger.Info("payroll period closed", "period", periodID)
	return nil
}
