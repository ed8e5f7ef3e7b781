package availability

import "time"

// DayWindow converts a tenant-local calendar date and hour bounds into UTC
// instants. Conversion goes through the zone's offset rules for that
// specific date, so service-hour boundaries track DST transitions. An hour
// bound of 24 means midnight at the end of the day.
func DayWindow(d Date, hoursStart, hoursEnd int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(d.Year, d.Month, d.Day, hoursStart, 0, 0, 0, loc)
	end := time.Date(d.Year, d.Month, d.Day, hoursEnd, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}
