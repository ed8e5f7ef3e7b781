package availability

import (
	"time"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
)

// Interval is a span during which the crew is occupied. All jobs of a
// tenant contend for one shared crew calendar.
type Interval struct {
	Start time.Time
	End   time.Time
}

// BusyIntervals projects jobs into occupied spans. The start is the actual
// start when the crew has recorded one, else the scheduled start. The end is
// the actual end when recorded, else scheduled start plus the service
// duration (60 minutes when the service reference is missing). Every end is
// extended by the travel buffer so the crew can reach the next vehicle.
func BusyIntervals(jobs []model.Job, travelBuffer time.Duration) []Interval {
	out := make([]Interval, 0, len(jobs))
	for _, j := range jobs {
		start := j.ScheduledAt
		if j.ActualStartAt != nil {
			start = *j.ActualStartAt
		}

		durationMins := j.ServiceDurationMins
		if durationMins <= 0 {
			durationMins = DefaultDurationMins
		}
		end := j.ScheduledAt.Add(time.Duration(durationMins) * time.Minute)
		if j.ActualEndAt != nil {
			end = *j.ActualEndAt
		}

		out = append(out, Interval{Start: start, End: end.Add(travelBuffer)})
	}
	return out
}
