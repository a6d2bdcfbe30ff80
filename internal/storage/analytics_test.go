package storage

import (
	"testing"
	"time"
)

// TestMonthWindowExplicit verifies an explicit year/month yields that month's
// [start, end) range.
func TestMonthWindowExplicit(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	start, end := MonthWindow(2026, 2, now)
	if got := start.Format("2006-01-02"); got != "2026-02-01" {
		t.Errorf("start = %s, want 2026-02-01", got)
	}
	if got := end.Format("2006-01-02"); got != "2026-03-01" {
		t.Errorf("end = %s, want 2026-03-01", got)
	}
}

// TestMonthWindowDefaults verifies zero year/month falls back to the current
// month.
func TestMonthWindowDefaults(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	start, end := MonthWindow(0, 0, now)
	if got := start.Format("2006-01-02"); got != "2026-08-01" {
		t.Errorf("start = %s, want 2026-08-01", got)
	}
	if got := end.Format("2006-01-02"); got != "2026-09-01" {
		t.Errorf("end = %s, want 2026-09-01", got)
	}
}

// TestMonthWindowDecemberRollover verifies the end bound crosses the year
// boundary.
func TestMonthWindowDecemberRollover(t *testing.T) {
	start, end := MonthWindow(2025, 12, time.Now())
	if start.Year() != 2025 || start.Month() != time.December {
		t.Errorf("start = %v", start)
	}
	if end.Year() != 2026 || end.Month() != time.January {
		t.Errorf("end = %v, want 2026-01-01", end)
	}
}
