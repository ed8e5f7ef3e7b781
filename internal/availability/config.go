package availability

import (
	"time"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
)

// Domains and defaults for tenant scheduling parameters. Out-of-range or
// missing tenant data degrades to these instead of erroring, so a
// misconfigured tenant still gets a working booking page.
const (
	DefaultHoursStart = 9
	DefaultHoursEnd   = 18

	MinSlotIntervalMins     = 5
	MaxSlotIntervalMins     = 120
	DefaultSlotIntervalMins = 30

	MinTravelBufferMins     = 0
	MaxTravelBufferMins     = 120
	DefaultTravelBufferMins = 20

	MinDurationMins     = 15
	MaxDurationMins     = 480
	DefaultDurationMins = 60
)

// Config is a tenant's scheduling configuration after normalization. Every
// field is safe to use directly; construct it through Normalize.
type Config struct {
	Location     *time.Location
	HoursStart   int
	HoursEnd     int
	SlotInterval time.Duration
	TravelBuffer time.Duration

	blackoutDates  map[string]struct{}
	blackoutRanges [][2]string
}

// Normalize never fails: unknown timezones fall back to UTC, missing numeric
// fields take defaults, present ones are clamped into their domain. Hour
// bounds are clamped independently; an inverted start/end pair is left
// inverted and resolves to an empty day downstream.
func Normalize(raw model.OrgScheduleConfig) Config {
	loc, err := time.LoadLocation(raw.Timezone)
	if err != nil || raw.Timezone == "" {
		loc = time.UTC
	}

	cfg := Config{
		Location:     loc,
		HoursStart:   clampOrDefault(raw.ServiceHoursStart, 0, 24, DefaultHoursStart),
		HoursEnd:     clampOrDefault(raw.ServiceHoursEnd, 0, 24, DefaultHoursEnd),
		SlotInterval: time.Duration(clampOrDefault(raw.SlotIntervalMins, MinSlotIntervalMins, MaxSlotIntervalMins, DefaultSlotIntervalMins)) * time.Minute,
		TravelBuffer: time.Duration(clampOrDefault(raw.TravelBufferMins, MinTravelBufferMins, MaxTravelBufferMins, DefaultTravelBufferMins)) * time.Minute,
	}

	if len(raw.BlackoutDates) > 0 {
		cfg.blackoutDates = make(map[string]struct{}, len(raw.BlackoutDates))
		for _, d := range raw.BlackoutDates {
			cfg.blackoutDates[DateOf(d).Key()] = struct{}{}
		}
	}
	for _, r := range raw.BlackoutRanges {
		// Range bounds compare at calendar-date granularity; any time-of-day
		// on them is dropped here.
		cfg.blackoutRanges = append(cfg.blackoutRanges, [2]string{DateOf(r.Start).Key(), DateOf(r.End).Key()})
	}
	return cfg
}

// DurationFor clamps a caller-supplied service duration into its domain.
// Zero or negative means the caller did not choose one.
func DurationFor(durationMins int) time.Duration {
	if durationMins <= 0 {
		durationMins = DefaultDurationMins
	}
	if durationMins < MinDurationMins {
		durationMins = MinDurationMins
	}
	if durationMins > MaxDurationMins {
		durationMins = MaxDurationMins
	}
	return time.Duration(durationMins) * time.Minute
}

func clampOrDefault(v *int, min, max, fallback int) int {
	if v == nil {
		return fallback
	}
	n := *v
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
