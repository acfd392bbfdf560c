package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAlreadyClockedIn  = errors.New("employee already clocked in for this date")
	ErrNotClockedIn      = errors.New("employee has not clocked in for this date")
	ErrAlreadyClockedOut = errors.New("employee already clocked out for this date")
	ErrBreakOpen         = errors.New("a break is already open")
	ErrNoBreakOpen       = errors.New("no open break to return from")
	ErrScheduleNotFound  = errors.New("schedule not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) ListSchedules(ctx context.Context) ([]Schedule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, time_in, time_out, working_days, created_at
    FROM schedules
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		var schedule Schedule
		if err := rows.Scan(&schedule.ID, &schedule.Name, &schedule.TimeIn, &schedule.TimeOut, &schedule.WorkingDays, &schedule.CreatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (s *Store) CreateSchedule(ctx context.Context, schedule Schedule) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO schedules (name, time_in, time_out, working_days)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, schedule.Name, schedule.TimeIn, schedule.TimeOut, schedule.WorkingDays).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetSchedule(ctx context.Context, scheduleID string) (*Schedule, error) {
	var schedule Schedule
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, time_in, time_out, working_days, created_at
    FROM schedules
    WHERE id = $1
  `, scheduleID).Scan(&schedule.ID, &schedule.Name, &schedule.TimeIn, &schedule.TimeOut, &schedule.WorkingDays, &schedule.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// EmployeeSchedule resolves the shift assigned to an employee, nil when
// none is assigned.
func (s *Store) EmployeeSchedule(ctx context.Context, employeeID string) (*Schedule, error) {
	var schedule Schedule
	err := s.DB.QueryRow(ctx, `
    SELECT sc.id, sc.name, sc.time_in, sc.time_out, sc.working_days, sc.created_at
    FROM employees e
    JOIN schedules sc ON e.schedule_id = sc.id
    WHERE e.id = $1
  `, employeeID).Scan(&schedule.ID, &schedule.Name, &schedule.TimeIn, &schedule.TimeOut, &schedule.WorkingDays, &schedule.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *Store) getDay(ctx context.Context, employeeID string, date time.Time) (Record, bool, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, date, time_in, time_out, break_out, break_in, break_minutes, status
    FROM attendance_records
    WHERE employee_id = $1 AND date = $2
  `, employeeID, date).Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.BreakOut, &rec.BreakIn, &rec.BreakMinutes, &rec.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// ClockIn opens the day's record. Status is judged once, here, against
// the employee's schedule; payroll later recomputes the numeric breakdown
// from the raw punches without touching this status.
func (s *Store) ClockIn(ctx context.Context, employeeID string, at time.Time) (Record, error) {
	date := DayOf(at)
	if _, found, err := s.getDay(ctx, employeeID, date); err != nil {
		return Record{}, err
	} else if found {
		return Record{}, ErrAlreadyClockedIn
	}

	schedule, err := s.EmployeeSchedule(ctx, employeeID)
	if err != nil {
		return Record{}, err
	}

	probe := Record{EmployeeID: employeeID, Date: date, TimeIn: &at, TimeOut: &at}
	status := Classify(Reduce(probe, schedule), true)

	var rec Record
	err = s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, date, time_in, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id, employee_id, date, time_in, time_out, break_out, break_in, break_minutes, status
  `, employeeID, date, at, status).Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.BreakOut, &rec.BreakIn, &rec.BreakMinutes, &rec.Status)
	return rec, err
}

func (s *Store) BreakOut(ctx context.Context, employeeID string, at time.Time) (Record, error) {
	rec, found, err := s.getDay(ctx, employeeID, DayOf(at))
	if err != nil {
		return Record{}, err
	}
	if !found || rec.TimeIn == nil {
		return Record{}, ErrNotClockedIn
	}
	if rec.TimeOut != nil {
		return Record{}, ErrAlreadyClockedOut
	}
	if rec.BreakOut != nil && rec.BreakIn == nil {
		return Record{}, ErrBreakOpen
	}

	_, err = s.DB.Exec(ctx, `
    UPDATE attendance_records SET break_out = $1, break_in = NULL WHERE id = $2
  `, at, rec.ID)
	if err != nil {
		return Record{}, err
	}
	rec.BreakOut = &at
	rec.BreakIn = nil
	return rec, nil
}

// BreakIn closes an open break and accumulates its whole minutes onto
// the day's recorded break duration.
func (s *Store) BreakIn(ctx context.Context, employeeID string, at time.Time) (Record, error) {
	rec, found, err := s.getDay(ctx, employeeID, DayOf(at))
	if err != nil {
		return Record{}, err
	}
	if !found || rec.TimeIn == nil {
		return Record{}, ErrNotClockedIn
	}
	if rec.BreakOut == nil || rec.BreakIn != nil {
		return Record{}, ErrNoBreakOpen
	}

	minutes := wholeMinutes(at.Sub(*rec.BreakOut))
	err = s.DB.QueryRow(ctx, `
    UPDATE attendance_records
    SET break_in = $1, break_minutes = break_minutes + $2
    WHERE id = $3
    RETURNING break_minutes
  `, at, minutes, rec.ID).Scan(&rec.BreakMinutes)
	if err != nil {
		return Record{}, err
	}
	rec.BreakIn = &at
	return rec, nil
}

func (s *Store) ClockOut(ctx context.Context, employeeID string, at time.Time) (Record, error) {
	rec, found, err := s.getDay(ctx, employeeID, DayOf(at))
	if err != nil {
		return Record{}, err
	}
	if !found || rec.TimeIn == nil {
		return Record{}, ErrNotClockedIn
	}
	if rec.TimeOut != nil {
		return Record{}, ErrAlreadyClockedOut
	}

	schedule, err := s.EmployeeSchedule(ctx, employeeID)
	if err != nil {
		return Record{}, err
	}

	rec.TimeOut = &at
	status := Classify(Reduce(rec, schedule), true)

	_, err = s.DB.Exec(ctx, `
    UPDATE attendance_records SET time_out = $1, status = $2 WHERE id = $3
  `, at, status, rec.ID)
	if err != nil {
		return Record{}, err
	}
	rec.Status = status
	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error) {
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

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.BreakOut, &rec.BreakIn, &rec.BreakMinutes, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DayOf truncates a timestamp to its calendar date.
func DayOf(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}
