package shared

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidatorRequiredAndEnum(t *testing.T) {
	v := NewValidator()
	v.Required("name", "   ")
	v.Enum("salaryType", "weekly", "monthly", "daily", "hourly")
	v.Enum("status", "", "draft", "closed")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	if got := len(v.issues); got != 2 {
		t.Fatalf("expected 2 issues, got %d", got)
	}
}

func TestValidatorDateAndOrder(t *testing.T) {
	v := NewValidator()

	start, ok := v.Date("startDate", "2025-03-01")
	if !ok {
		t.Fatal("expected startDate to parse")
	}
	if _, ok := v.Date("endDate", "not-a-date"); ok {
		t.Fatal("expected endDate to be rejected")
	}
	v.DateOrder("startDate", start, "endDate", start.AddDate(0, 0, -1))

	if got := len(v.issues); got != 2 {
		t.Fatalf("expected 2 issues, got %d", got)
	}
}

func TestValidatorClock(t *testing.T) {
	v := NewValidator()
	v.Clock("startTime", "08:00")
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %v", v.issues)
	}
	v.Clock("endTime", "25:99")
	if !v.HasIssues() {
		t.Fatal("expected endTime issue")
	}
}

func TestValidatorRejectWritesSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Add("zeta", "is required")
	v.Add("alpha", "is required")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected Reject to fire")
	}
	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if idxAlpha, idxZeta := strings.Index(body, "alpha"), strings.Index(body, "zeta"); idxAlpha < 0 || idxZeta < 0 || idxAlpha > idxZeta {
		t.Fatalf("expected sorted field order in body: %s", body)
	}
}

func TestValidatorRejectNoIssues(t *testing.T) {
	v := NewValidator()
	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("expected Reject to be a no-op without issues")
	}
}

func TestParseDateFormats(t *testing.T) {
	plain, err := ParseDate("2025-03-15")
	if err != nil {
		t.Fatalf("plain date: %v", err)
	}
	rfc, err := ParseDate("2025-03-15T08:30:00Z")
	if err != nil {
		t.Fatalf("rfc3339 date: %v", err)
	}
	if plain.Format("2006-01-02") != "2025-03-15" || rfc.Hour() != 8 {
		t.Fatalf("unexpected parses: %v %v", plain, rfc)
	}
	if zero, err := ParseDate(""); err != nil || !zero.IsZero() {
		t.Fatalf("empty input should be zero time, got %v %v", zero, err)
	}
}
