package availability

import (
	"context"
	"time"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
)

// OrgStore reads a tenant's raw scheduling configuration by public slug.
type OrgStore interface {
	ScheduleConfig(ctx context.Context, slug string) (model.OrgScheduleConfig, error)
}

// JobStore reads jobs whose scheduled start falls in [start, end) and whose
// status still occupies the calendar. Jobs that ran long are represented by
// their actual times even when those spill past the window.
type JobStore interface {
	ActiveJobsInWindow(ctx context.Context, orgID string, start, end time.Time) ([]model.Job, error)
}

// Engine computes the offerable booking slots for one tenant-local calendar
// day. It holds no state and performs no writes; availability it reports is
// advisory and can go stale between read and booking creation — the booking
// write path carries the real double-booking guard.
type Engine struct {
	orgs  OrgStore
	jobs  JobStore
	clock Clock
}

func NewEngine(orgs OrgStore, jobs JobStore, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{orgs: orgs, jobs: jobs, clock: clock}
}

// SlotsForDay returns the ascending UTC start instants offerable on the
// given tenant-local date for a service of durationMins (0 means the tenant
// default). Blackouts, an elapsed day, inverted hours or a fully booked
// calendar all yield an empty list, never an error; errors only come from
// the stores.
func (e *Engine) SlotsForDay(ctx context.Context, slug string, day Date, durationMins int) ([]time.Time, error) {
	raw, err := e.orgs.ScheduleConfig(ctx, slug)
	if err != nil {
		return nil, err
	}
	cfg := Normalize(raw)

	if cfg.Blackout(day) {
		return nil, nil
	}

	dayStart, dayEnd := DayWindow(day, cfg.HoursStart, cfg.HoursEnd, cfg.Location)
	now := e.clock.Now()
	if !dayEnd.After(now) {
		return nil, nil
	}

	var cutoff time.Time
	if DateOf(now.In(cfg.Location)) == day {
		cutoff = now.Add(time.Minute)
	}

	jobs, err := e.jobs.ActiveJobsInWindow(ctx, raw.OrgID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	busy := BusyIntervals(jobs, cfg.TravelBuffer)

	return GenerateSlots(dayStart, dayEnd, cfg.SlotInterval, DurationFor(durationMins), cutoff, busy), nil
}
