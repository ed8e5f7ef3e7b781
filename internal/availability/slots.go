package availability

import "time"

// GenerateSlots returns slot start times within [windowStart, windowEnd)
// where a booking of length duration would not overlap any of the busy
// intervals. Candidates are stepped from windowStart; a candidate whose end
// would pass windowEnd stops the walk, while a candidate before cutoff is
// only skipped (later candidates the same day may still qualify). A zero
// cutoff disables the floor.
//
// Results are strictly increasing; first-available-first, no other policy.
func GenerateSlots(windowStart, windowEnd time.Time, step, duration time.Duration, cutoff time.Time, busy []Interval) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	var slots []time.Time
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(step) {
		if !cutoff.IsZero() && t.Before(cutoff) {
			continue
		}
		if !overlapsAny(t, t.Add(duration), busy) {
			slots = append(slots, t)
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
