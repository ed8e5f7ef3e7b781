package availability

import (
	"testing"
	"time"
)

func TestGenerateSlots_Basic(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(10 * time.Hour)

	busy := []Interval{
		{Start: day.Add(9*time.Hour + 15*time.Minute), End: day.Add(9*time.Hour + 45*time.Minute)},
	}

	slots := GenerateSlots(windowStart, windowEnd, 15*time.Minute, 15*time.Minute, time.Time{}, busy)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("expected first slot 09:00, got %s", slots[0].Format(time.RFC3339))
	}
	if !slots[1].Equal(day.Add(9*time.Hour + 45*time.Minute)) {
		t.Fatalf("expected second slot 09:45, got %s", slots[1].Format(time.RFC3339))
	}
}

func TestGenerateSlots_SkipsBeforeCutoff(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(10 * time.Hour)

	cutoff := day.Add(9*time.Hour + 31*time.Minute)
	slots := GenerateSlots(windowStart, windowEnd, 15*time.Minute, 15*time.Minute, cutoff, nil)
	// 09:00, 09:15, 09:30 are before the cutoff. 09:45 still qualifies.
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Equal(day.Add(9*time.Hour + 45*time.Minute)) {
		t.Fatalf("expected slot 09:45, got %s", slots[0].Format(time.RFC3339))
	}
}

func TestGenerateSlots_NoPartialSlotAtTail(t *testing.T) {
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	windowStart := day.Add(9 * time.Hour)
	windowEnd := day.Add(18 * time.Hour)

	slots := GenerateSlots(windowStart, windowEnd, 30*time.Minute, 60*time.Minute, time.Time{}, nil)
	// 09:00 through 17:00 inclusive at 30-minute steps: 17 candidates.
	// 17:30 would end at 18:30, past the window.
	if len(slots) != 17 {
		t.Fatalf("expected 17 slots, got %d", len(slots))
	}
	if !slots[len(slots)-1].Equal(day.Add(17 * time.Hour)) {
		t.Fatalf("expected last slot 17:00, got %s", slots[len(slots)-1].Format(time.RFC3339))
	}
}

func TestGenerateSlots_StrictlyIncreasing(t *testing.T) {
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	busy := []Interval{
		{Start: day.Add(11 * time.Hour), End: day.Add(13 * time.Hour)},
	}
	slots := GenerateSlots(day.Add(9*time.Hour), day.Add(18*time.Hour), 30*time.Minute, 60*time.Minute, time.Time{}, busy)
	for i := 1; i < len(slots); i++ {
		if !slots[i].After(slots[i-1]) {
			t.Fatalf("slots not strictly increasing at index %d: %s then %s", i, slots[i-1], slots[i])
		}
	}
	for _, s := range slots {
		if s.Before(day.Add(9*time.Hour)) || s.Add(60*time.Minute).After(day.Add(18*time.Hour)) {
			t.Fatalf("slot %s not contained in window", s.Format(time.RFC3339))
		}
	}
}

func TestGenerateSlots_DurationLongerThanWindow(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	slots := GenerateSlots(day.Add(9*time.Hour), day.Add(10*time.Hour), 15*time.Minute, 2*time.Hour, time.Time{}, nil)
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestGenerateSlots_InvertedWindow(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	slots := GenerateSlots(day.Add(18*time.Hour), day.Add(9*time.Hour), 30*time.Minute, time.Hour, time.Time{}, nil)
	if slots != nil {
		t.Fatalf("expected nil, got %d slots", len(slots))
	}
}

func TestGenerateSlots_HalfOpenBoundaries(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	// Busy 10:00-11:00. A slot ending exactly at 10:00 or starting exactly
	// at 11:00 does not overlap.
	busy := []Interval{
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
	}
	slots := GenerateSlots(day.Add(9*time.Hour), day.Add(12*time.Hour), time.Hour, time.Hour, time.Time{}, busy)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Equal(day.Add(9*time.Hour)) || !slots[1].Equal(day.Add(11*time.Hour)) {
		t.Fatalf("expected 09:00 and 11:00, got %s and %s", slots[0], slots[1])
	}
}
