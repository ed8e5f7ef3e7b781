package model

import "time"

// Organization is a tenant: one mobile detailing business with its own
// public booking page.
type Organization struct {
	ID        string
	Slug      string
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// OrgScheduleConfig is the raw per-tenant scheduling configuration as stored.
// Numeric fields are pointers because tenants may never have touched their
// scheduling settings; normalization fills the gaps.
type OrgScheduleConfig struct {
	OrgID             string
	Timezone          string
	ServiceHoursStart *int
	ServiceHoursEnd   *int
	SlotIntervalMins  *int
	TravelBufferMins  *int
	BlackoutDates     []time.Time
	BlackoutRanges    []DateRange
}

// DateRange is a closed calendar-date range. Only the date part of the
// bounds is meaningful.
type DateRange struct {
	Start time.Time
	End   time.Time
}
