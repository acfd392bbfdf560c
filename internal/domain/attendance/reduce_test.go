package attendance

import (
	"testing"
	"time"
)

var dayShift = &Schedule{
	Name:        "day",
	TimeIn:      "08:00",
	TimeOut:     "17:00",
	WorkingDays: DefaultWorkingDays,
}

func punch(t *testing.T, day string, clock string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		t.Fatalf("bad punch %s %s: %v", day, clock, err)
	}
	return &parsed
}

func record(t *testing.T, day, in, out string, breakMinutes int) Record {
	t.Helper()
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad date %s: %v", day, err)
	}
	rec := Record{EmployeeID: "e1", Date: date, BreakMinutes: breakMinutes}
	if in != "" {
		rec.TimeIn = punch(t, day, in)
	}
	if out != "" {
		rec.TimeOut = punch(t, day, out)
	}
	return rec
}

func TestReduceAbsent(t *testing.T) {
	m := Reduce(record(t, "2025-03-03", "", "", 0), dayShift)
	if m != (DayMetrics{}) {
		t.Fatalf("expected zero metrics for missing punches, got %+v", m)
	}

	m = Reduce(record(t, "2025-03-03", "08:00", "", 0), dayShift)
	if m != (DayMetrics{}) {
		t.Fatalf("expected zero metrics without time out, got %+v", m)
	}
}

func TestReduceOnTimeFullDay(t *testing.T) {
	// 2025-03-03 is a Monday.
	m := Reduce(record(t, "2025-03-03", "08:00", "17:00", 0), dayShift)
	if m.WorkedMinutes != 540 {
		t.Fatalf("expected 540 worked minutes, got %d", m.WorkedMinutes)
	}
	if m.LateMinutes != 0 || m.UndertimeMinutes != 0 || m.OvertimeMinutes != 0 {
		t.Fatalf("expected clean day, got %+v", m)
	}
}

func TestReduceLate(t *testing.T) {
	m := Reduce(record(t, "2025-03-03", "08:25", "17:00", 0), dayShift)
	if m.LateMinutes != 25 {
		t.Fatalf("expected 25 late minutes, got %d", m.LateMinutes)
	}
	// Arriving late shortens the actual span, so undertime mirrors it.
	if m.UndertimeMinutes != 25 {
		t.Fatalf("expected 25 undertime minutes, got %d", m.UndertimeMinutes)
	}
}

func TestReduceOvertime(t *testing.T) {
	m := Reduce(record(t, "2025-03-03", "08:00", "19:30", 0), dayShift)
	if m.OvertimeMinutes != 150 {
		t.Fatalf("expected 150 overtime minutes, got %d", m.OvertimeMinutes)
	}
	if m.UndertimeMinutes != 0 {
		t.Fatalf("expected no undertime, got %d", m.UndertimeMinutes)
	}
}

func TestReduceUndertimeEarlyOut(t *testing.T) {
	m := Reduce(record(t, "2025-03-03", "08:00", "15:00", 0), dayShift)
	if m.UndertimeMinutes != 120 {
		t.Fatalf("expected 120 undertime minutes, got %d", m.UndertimeMinutes)
	}
	if m.OvertimeMinutes != 0 || m.LateMinutes != 0 {
		t.Fatalf("unexpected late/overtime: %+v", m)
	}
}

func TestReduceBreakAllowance(t *testing.T) {
	// Breaks within the 30-minute allowance are fully paid.
	m := Reduce(record(t, "2025-03-03", "08:00", "17:00", 30), dayShift)
	if m.WorkedMinutes != 540 {
		t.Fatalf("expected no break penalty at allowance, got %d", m.WorkedMinutes)
	}

	m = Reduce(record(t, "2025-03-03", "08:00", "17:00", 75), dayShift)
	if m.WorkedMinutes != 540-45 {
		t.Fatalf("expected 45 deductible break minutes, got worked %d", m.WorkedMinutes)
	}
}

func TestReduceZeroDurationDay(t *testing.T) {
	m := Reduce(record(t, "2025-03-03", "08:00", "08:00", 0), dayShift)
	if m.WorkedMinutes != 0 {
		t.Fatalf("expected zero worked minutes, got %d", m.WorkedMinutes)
	}
	if m.OvertimeMinutes != 0 {
		t.Fatalf("expected zero overtime, got %d", m.OvertimeMinutes)
	}
}

func TestReduceWithoutSchedule(t *testing.T) {
	m := Reduce(record(t, "2025-03-03", "09:00", "18:00", 45), nil)
	if m.WorkedMinutes != 540-15 {
		t.Fatalf("expected gross minus deductible break, got %d", m.WorkedMinutes)
	}
	if m.LateMinutes != 0 || m.UndertimeMinutes != 0 || m.OvertimeMinutes != 0 {
		t.Fatalf("late/undertime/overtime need a schedule, got %+v", m)
	}
}

func TestReduceNonWorkingDay(t *testing.T) {
	// 2025-03-08 is a Saturday, outside the Monday-Friday shift.
	m := Reduce(record(t, "2025-03-08", "08:00", "12:00", 0), dayShift)
	if m.WorkedMinutes != 240 {
		t.Fatalf("expected 240 worked minutes, got %d", m.WorkedMinutes)
	}
	if m.LateMinutes != 0 || m.OvertimeMinutes != 0 || m.UndertimeMinutes != 0 {
		t.Fatalf("expected no schedule judgment on off days, got %+v", m)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		metrics DayMetrics
		punched bool
		want    string
	}{
		{"absent", DayMetrics{}, false, StatusAbsent},
		{"present", DayMetrics{WorkedMinutes: 480}, true, StatusPresent},
		{"late", DayMetrics{LateMinutes: 5}, true, StatusLate},
		{"overtime wins over late", DayMetrics{LateMinutes: 5, OvertimeMinutes: 60}, true, StatusOvertime},
	}
	for _, tc := range cases {
		if got := Classify(tc.metrics, tc.punched); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestAttachMetricsRecomputesPerRecord(t *testing.T) {
	records := []Record{
		record(t, "2025-03-03", "08:30", "17:00", 0), // late Monday
		record(t, "2025-03-04", "", "", 0),           // no punches
	}

	views := AttachMetrics(records, dayShift)
	if len(views) != 2 {
		t.Fatalf("expected one view per record, got %d", len(views))
	}
	if views[0].Metrics.LateMinutes != 30 || views[0].Metrics.WorkedMinutes != 510 {
		t.Fatalf("expected derived late day, got %+v", views[0].Metrics)
	}
	if views[1].Metrics != (DayMetrics{}) {
		t.Fatalf("expected zero metrics for unpunched day, got %+v", views[1].Metrics)
	}
	if views[0].EmployeeID != "e1" {
		t.Fatalf("expected record fields carried through, got %+v", views[0].Record)
	}

	// Without a schedule the same record keeps its worked minutes but
	// nothing can be judged late.
	bare := AttachMetrics(records[:1], nil)
	if bare[0].Metrics.LateMinutes != 0 || bare[0].Metrics.WorkedMinutes != 510 {
		t.Fatalf("expected schedule-free metrics, got %+v", bare[0].Metrics)
	}
}

func TestScheduleWorksOn(t *testing.T) {
	if !dayShift.WorksOn(time.Wednesday) {
		t.Fatal("expected Wednesday to be a working day")
	}
	if dayShift.WorksOn(time.Sunday) {
		t.Fatal("expected Sunday to be off")
	}
}
