package availability

import (
	"testing"
	"time"
)

func TestDayWindow_UTC(t *testing.T) {
	start, end := DayWindow(Date{2026, time.March, 10}, 9, 18, time.UTC)
	if !start.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", start)
	}
	if !end.Equal(time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %s", end)
	}
}

func TestDayWindow_DSTSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// March 7 2026 is still EST (UTC-5).
	start, _ := DayWindow(Date{2026, time.March, 7}, 9, 18, loc)
	if !start.Equal(time.Date(2026, 3, 7, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 14:00Z on the EST day, got %s", start)
	}

	// March 8 2026 springs forward; 09:00 local is EDT (UTC-4).
	start, end := DayWindow(Date{2026, time.March, 8}, 9, 18, loc)
	if !start.Equal(time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 13:00Z on the EDT day, got %s", start)
	}
	if got := end.Sub(start); got != 9*time.Hour {
		t.Fatalf("expected a 9h window, got %s", got)
	}
}

func TestDayWindow_DSTTransitionDayLength(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// Full civil day on the spring-forward date is 23 hours long.
	start, end := DayWindow(Date{2026, time.March, 8}, 0, 24, loc)
	if got := end.Sub(start); got != 23*time.Hour {
		t.Fatalf("expected 23h, got %s", got)
	}
}

func TestDayWindow_Hour24(t *testing.T) {
	_, end := DayWindow(Date{2026, time.January, 31}, 0, 24, time.UTC)
	if !end.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("hour 24 should normalize to next-day midnight, got %s", end)
	}
}

func TestDayWindow_ReturnsUTC(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	start, end := DayWindow(Date{2026, time.June, 1}, 9, 18, loc)
	if start.Location() != time.UTC || end.Location() != time.UTC {
		t.Fatalf("window must be in UTC, got %s / %s", start.Location(), end.Location())
	}
}
