package attendance

import "time"

// BreakAllowanceMinutes is the paid portion of a recorded break. Only
// break time beyond the allowance is unpaid.
const BreakAllowanceMinutes = 30

// Reduce derives the day's metric breakdown from raw punches and the
// assigned schedule. It never rewrites the persisted Status; that is set
// once at clock time. Missing punches yield all-zero metrics. Without a
// schedule for the record's weekday, late, undertime and overtime cannot
// be judged and stay zero while worked minutes still accrue.
func Reduce(rec Record, sched *Schedule) DayMetrics {
	var m DayMetrics
	if rec.TimeIn == nil || rec.TimeOut == nil {
		return m
	}

	grossMinutes := wholeMinutes(rec.TimeOut.Sub(*rec.TimeIn))
	deductibleBreak := rec.BreakMinutes - BreakAllowanceMinutes
	if deductibleBreak < 0 {
		deductibleBreak = 0
	}
	m.WorkedMinutes = clampNonNegative(grossMinutes - deductibleBreak)

	if sched == nil || !sched.WorksOn(rec.Date.Weekday()) {
		return m
	}
	scheduleStart, okIn := clockOn(rec.Date, sched.TimeIn)
	scheduleEnd, okOut := clockOn(rec.Date, sched.TimeOut)
	if !okIn || !okOut {
		return m
	}

	m.LateMinutes = wholeMinutes(rec.TimeIn.Sub(scheduleStart))
	m.OvertimeMinutes = wholeMinutes(rec.TimeOut.Sub(scheduleEnd))

	scheduleMinutes := wholeMinutes(scheduleEnd.Sub(scheduleStart))
	m.UndertimeMinutes = clampNonNegative(scheduleMinutes - grossMinutes)
	return m
}

// RecordView pairs a persisted record with its derived day metrics for
// read endpoints.
type RecordView struct {
	Record
	Metrics DayMetrics `json:"metrics"`
}

// AttachMetrics reduces each record against the schedule. Metrics are
// never stored, so listings always reflect the schedule as it stands now.
func AttachMetrics(records []Record, sched *Schedule) []RecordView {
	views := make([]RecordView, len(records))
	for i, rec := range records {
		views[i] = RecordView{Record: rec, Metrics: Reduce(rec, sched)}
	}
	return views
}

// Classify maps a reduced day onto the single stored status. Overtime
// wins over late for display, late wins over plain present.
func Classify(m DayMetrics, punched bool) string {
	switch {
	case !punched:
		return StatusAbsent
	case m.OvertimeMinutes > 0:
		return StatusOvertime
	case m.LateMinutes > 0:
		return StatusLate
	default:
		return StatusPresent
	}
}

// clockOn places an HH:MM time of day onto the given calendar date.
func clockOn(date time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), true
}

// wholeMinutes floors a duration to whole minutes, clamped at zero.
func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Minutes())
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
