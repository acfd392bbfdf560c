package attendance

import "time"

const (
	StatusPresent  = "present"
	StatusLate     = "late"
	StatusOvertime = "overtime"
	StatusAbsent   = "absent"
)

// Schedule is a named work-shift template. TimeIn and TimeOut are
// times of day in HH:MM form; WorkingDays holds lowercase weekday names.
type Schedule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TimeIn      string    `json:"timeIn"`
	TimeOut     string    `json:"timeOut"`
	WorkingDays []string  `json:"workingDays"`
	CreatedAt   time.Time `json:"createdAt"`
}

var DefaultWorkingDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func (s *Schedule) WorksOn(day time.Weekday) bool {
	name := WeekdayName(day)
	for _, d := range s.WorkingDays {
		if d == name {
			return true
		}
	}
	return false
}

func WeekdayName(day time.Weekday) string {
	switch day {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

// Record is one employee's punches for one calendar date. TimeOut is only
// meaningful when TimeIn is set, BreakIn only when BreakOut is set.
type Record struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	Date         time.Time  `json:"date"`
	TimeIn       *time.Time `json:"timeIn,omitempty"`
	TimeOut      *time.Time `json:"timeOut,omitempty"`
	BreakOut     *time.Time `json:"breakOut,omitempty"`
	BreakIn      *time.Time `json:"breakIn,omitempty"`
	BreakMinutes int        `json:"breakMinutes"`
	Status       string     `json:"status"`
}

// DayMetrics is the per-day breakdown derived from a Record and the
// employee's schedule. It is recomputed on every payroll pass and never
// stored, so corrected punches always flow into the next calculation.
type DayMetrics struct {
	WorkedMinutes    int `json:"workedMinutes"`
	LateMinutes      int `json:"lateMinutes"`
	UndertimeMinutes int `json:"undertimeMinutes"`
	OvertimeMinutes  int `json:"overtimeMinutes"`
}
