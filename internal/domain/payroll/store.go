package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpay/internal/domain/attendance"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) ListPeriods(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status, deductions_enabled, created_at
    FROM payroll_periods
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var period Period
		if err := rows.Scan(&period.ID, &period.Name, &period.StartDate, &period.EndDate, &period.Status, &period.DeductionsEnabled, &period.CreatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, nil
}

func (s *Store) CreatePeriod(ctx context.Context, name string, startDate, endDate time.Time, deductionsEnabled bool) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_periods (name, start_date, end_date, status, deductions_enabled)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, name, startDate, endDate, PeriodStatusDraft, deductionsEnabled).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetPeriod(ctx context.Context, periodID string) (Period, error) {
	var period Period
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status, deductions_enabled, created_at
    FROM payroll_periods
    WHERE id = $1
  `, periodID).Scan(&period.ID, &period.Name, &period.StartDate, &period.EndDate, &period.Status, &period.DeductionsEnabled, &period.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	return period, err
}

// MarkPeriodClosed flips a draft period to closed. Returns false when
// the period was not in draft, so closing is a one-way gate.
func (s *Store) MarkPeriodClosed(ctx context.Context, periodID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_periods SET status = $1, closed_at = now()
    WHERE id = $2 AND status = $3
  `, PeriodStatusClosed, periodID, PeriodStatusDraft)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AcquireRunLock serializes calculation runs for one period on a
// session-level advisory lock held by a dedicated connection. Two admins
// clicking "recalculate" at once queue up instead of interleaving their
// delete-and-reinsert passes.
func (s *Store) AcquireRunLock(ctx context.Context, periodID string) (func(), error) {
	conn, err := s.DB.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock(hashtextextended($1, 0))", periodID); err != nil {
		conn.Release()
		return nil, err
	}
	release := func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock(hashtextextended($1, 0))", periodID)
		conn.Release()
	}
	return release, nil
}

func (s *Store) ListHolidays(ctx context.Context, start, end time.Time) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, type, date, pay_rate, is_active
    FROM holidays
    WHERE date >= $1 AND date <= $2
    ORDER BY date
  `, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHolidays(rows)
}

func (s *Store) ListAllHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, type, date, pay_rate, is_active
    FROM holidays
    ORDER BY date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHolidays(rows)
}

func scanHolidays(rows pgx.Rows) ([]Holiday, error) {
	var holidays []Holiday
	for rows.Next() {
		var holiday Holiday
		if err := rows.Scan(&holiday.ID, &holiday.Name, &holiday.Type, &holiday.Date, &holiday.PayRate, &holiday.IsActive); err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}
	return holidays, nil
}

func (s *Store) CreateHoliday(ctx context.Context, holiday Holiday) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (name, type, date, pay_rate, is_active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, holiday.Name, holiday.Type, holiday.Date, holiday.PayRate, holiday.IsActive).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListActiveEmployees(ctx context.Context) ([]EmployeeMeta, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name, e.last_name, e.salary_type,
           COALESCE(sg.salary_rate, 0),
           COALESCE(e.schedule_id::text, '')
    FROM employees e
    LEFT JOIN salary_grades sg ON e.salary_grade_id = sg.id
    WHERE e.status = 'active'
    ORDER BY e.last_name, e.first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeMeta
	for rows.Next() {
		var meta EmployeeMeta
		if err := rows.Scan(&meta.EmployeeID, &meta.FirstName, &meta.LastName, &meta.SalaryType, &meta.SalaryRate, &meta.ScheduleID); err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

func (s *Store) GetSchedule(ctx context.Context, scheduleID string) (*attendance.Schedule, error) {
	var schedule attendance.Schedule
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, time_in, time_out, working_days, created_at
    FROM schedules
    WHERE id = $1
  `, scheduleID).Scan(&schedule.ID, &schedule.Name, &schedule.TimeIn, &schedule.TimeOut, &schedule.WorkingDays, &schedule.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *Store) ListAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, time_in, time_out, break_out, break_in, break_minutes, status
    FROM attendance_records
    WHERE employee_id = $1 AND date >= $2 AND date <= $3
    ORDER BY date
  `, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.BreakOut, &rec.BreakIn, &rec.BreakMinutes, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) ListBenefits(ctx context.Context, employeeID string, asOf time.Time) ([]Benefit, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT bt.name, eb.employee_contribution, eb.assigned_at
    FROM employee_benefits eb
    JOIN benefit_types bt ON eb.benefit_type_id = bt.id
    WHERE eb.employee_id = $1
      AND eb.is_active = true
      AND (eb.ends_at IS NULL OR eb.ends_at > $2)
    ORDER BY eb.assigned_at, bt.name
  `, employeeID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var benefits []Benefit
	for rows.Next() {
		var benefit Benefit
		if err := rows.Scan(&benefit.Name, &benefit.EmployeeContribution, &benefit.AssignedAt); err != nil {
			return nil, err
		}
		benefits = append(benefits, benefit)
	}
	return benefits, nil
}

// ListUnpaidAdvances windows on calendar days so an advance issued
// any time on the period's end date is still recovered in that period.
func (s *Store) ListUnpaidAdvances(ctx context.Context, employeeID string, start, end time.Time) ([]CashAdvance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, amount, issued_at
    FROM cash_advances
    WHERE employee_id = $1
      AND is_paid = false
      AND issued_at >= $2::date
      AND issued_at < $3::date + 1
    ORDER BY issued_at
  `, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []CashAdvance
	for rows.Next() {
		var advance CashAdvance
		if err := rows.Scan(&advance.ID, &advance.Amount, &advance.IssuedAt); err != nil {
			return nil, err
		}
		advances = append(advances, advance)
	}
	return advances, nil
}

// SaveResult writes one employee's computed item atomically: the item is
// upserted, stale deduction rows are replaced, and the consumed cash
// advances are flagged paid in the same transaction.
func (s *Store) SaveResult(ctx context.Context, periodID string, result Result) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var itemID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO payroll_items
      (period_id, employee_id, basic_pay, overtime_pay, holiday_pay, total_earnings, total_deductions, net_pay)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (period_id, employee_id)
    DO UPDATE SET basic_pay = EXCLUDED.basic_pay,
                  overtime_pay = EXCLUDED.overtime_pay,
                  holiday_pay = EXCLUDED.holiday_pay,
                  total_earnings = EXCLUDED.total_earnings,
                  total_deductions = EXCLUDED.total_deductions,
                  net_pay = EXCLUDED.net_pay,
                  updated_at = now()
    RETURNING id
  `, periodID, result.EmployeeID, result.BasicPay, result.OvertimePay, result.HolidayPay, result.TotalEarnings, result.TotalDeductions, result.NetPay).Scan(&itemID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM payroll_deductions WHERE payroll_item_id = $1", itemID); err != nil {
		return err
	}

	for _, line := range result.Deductions {
		typeID, err := findOrCreateDeductionType(ctx, tx, line.Name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO payroll_deductions (payroll_item_id, deduction_type_id, amount)
      VALUES ($1,$2,$3)
    `, itemID, typeID, line.Amount); err != nil {
			return err
		}
	}

	for _, advanceID := range result.PaidAdvanceIDs {
		if _, err := tx.Exec(ctx, `
      UPDATE cash_advances SET is_paid = true, paid_at = now() WHERE id = $1
    `, advanceID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// findOrCreateDeductionType upserts by name. The no-op DO UPDATE makes
// RETURNING yield the existing row's id, so concurrent batches racing on
// the same benefit name both get the one row.
func findOrCreateDeductionType(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO deduction_types (name)
    VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, name).Scan(&id)
	return id, err
}

func (s *Store) ListItems(ctx context.Context, periodID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT i.id, i.period_id, i.employee_id, e.first_name || ' ' || e.last_name,
           i.basic_pay, i.overtime_pay, i.holiday_pay, i.total_earnings, i.total_deductions, i.net_pay
    FROM payroll_items i
    JOIN employees e ON i.employee_id = e.id
    WHERE i.period_id = $1
    ORDER BY e.last_name, e.first_name
  `, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.PeriodID, &item.EmployeeID, &item.EmployeeName, &item.BasicPay, &item.OvertimePay, &item.HolidayPay, &item.TotalEarnings, &item.TotalDeductions, &item.NetPay); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for i := range items {
		deductions, err := s.listItemDeductions(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Deductions = deductions
	}
	return items, nil
}

// ListEmployeeItems backs the self-service payslip list: one employee's
// items across all periods, newest first.
func (s *Store) ListEmployeeItems(ctx context.Context, employeeID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT i.id, i.period_id, i.employee_id, e.first_name || ' ' || e.last_name,
           i.basic_pay, i.overtime_pay, i.holiday_pay, i.total_earnings, i.total_deductions, i.net_pay
    FROM payroll_items i
    JOIN employees e ON i.employee_id = e.id
    JOIN payroll_periods p ON i.period_id = p.id
    WHERE i.employee_id = $1
    ORDER BY p.start_date DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.PeriodID, &item.EmployeeID, &item.EmployeeName, &item.BasicPay, &item.OvertimePay, &item.HolidayPay, &item.TotalEarnings, &item.TotalDeductions, &item.NetPay); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for i := range items {
		deductions, err := s.listItemDeductions(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Deductions = deductions
	}
	return items, nil
}

func (s *Store) listItemDeductions(ctx context.Context, itemID string) ([]DeductionLine, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT dt.name, pd.amount
    FROM payroll_deductions pd
    JOIN deduction_types dt ON pd.deduction_type_id = dt.id
    WHERE pd.payroll_item_id = $1
    ORDER BY pd.id
  `, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []DeductionLine
	for rows.Next() {
		var line DeductionLine
		if err := rows.Scan(&line.Name, &line.Amount); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Store) GetPayslipData(ctx context.Context, itemID string) (PayslipData, error) {
	var data PayslipData
	err := s.DB.QueryRow(ctx, `
    SELECT i.id, i.period_id, i.employee_id, e.first_name || ' ' || e.last_name,
           i.basic_pay, i.overtime_pay, i.holiday_pay, i.total_earnings, i.total_deductions, i.net_pay,
           p.name, p.start_date, p.end_date
    FROM payroll_items i
    JOIN employees e ON i.employee_id = e.id
    JOIN payroll_periods p ON i.period_id = p.id
    WHERE i.id = $1
  `, itemID).Scan(
		&data.Item.ID, &data.Item.PeriodID, &data.Item.EmployeeID, &data.Item.EmployeeName,
		&data.Item.BasicPay, &data.Item.OvertimePay, &data.Item.HolidayPay,
		&data.Item.TotalEarnings, &data.Item.TotalDeductions, &data.Item.NetPay,
		&data.PeriodName, &data.StartDate, &data.EndDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayslipData{}, ErrItemNotFound
	}
	if err != nil {
		return PayslipData{}, err
	}

	deductions, err := s.listItemDeductions(ctx, itemID)
	if err != nil {
		return PayslipData{}, err
	}
	data.Item.Deductions = deductions
	return data, nil
}

func (s *Store) PeriodSummary(ctx context.Context, periodID string) (RunSummary, error) {
	var summary RunSummary
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COALESCE(SUM(total_earnings),0), COALESCE(SUM(total_deductions),0), COALESCE(SUM(net_pay),0)
    FROM payroll_items
    WHERE period_id = $1
  `, periodID).Scan(&summary.TotalEmployees, &summary.TotalEarnings, &summary.TotalDeductions, &summary.TotalNetPay)
	return summary, err
}
