package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
)

type fakeOrgStore struct {
	cfg model.OrgScheduleConfig
	err error
}

func (f fakeOrgStore) ScheduleConfig(_ context.Context, _ string) (model.OrgScheduleConfig, error) {
	return f.cfg, f.err
}

type fakeJobStore struct {
	jobs []model.Job
	err  error

	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeJobStore) ActiveJobsInWindow(_ context.Context, _ string, start, end time.Time) ([]model.Job, error) {
	f.gotStart = start
	f.gotEnd = end
	return f.jobs, f.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestEngine(cfg model.OrgScheduleConfig, jobs []model.Job, now time.Time) (*Engine, *fakeJobStore) {
	js := &fakeJobStore{jobs: jobs}
	return NewEngine(fakeOrgStore{cfg: cfg}, js, fixedClock{t: now}), js
}

func TestSlotsForDay_OpenDay(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:             "org-1",
		Timezone:          "UTC",
		ServiceHoursStart: intPtr(9),
		ServiceHoursEnd:   intPtr(18),
		SlotIntervalMins:  intPtr(30),
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, _ := newTestEngine(cfg, nil, now)

	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 60)
	require.NoError(t, err)
	// 09:00 through 17:00 at 30-minute steps.
	require.Len(t, slots, 17)
	assert.True(t, slots[0].Equal(time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)))
	assert.True(t, slots[16].Equal(time.Date(2026, 6, 10, 17, 0, 0, 0, time.UTC)))
}

func TestSlotsForDay_BusyJobWithTravelBuffer(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:             "org-1",
		Timezone:          "UTC",
		ServiceHoursStart: intPtr(9),
		ServiceHoursEnd:   intPtr(18),
		SlotIntervalMins:  intPtr(30),
		TravelBufferMins:  intPtr(20),
	}
	// One 60-minute job at 10:00 occupies 10:00-11:20 after the buffer.
	jobs := []model.Job{
		{
			ID:                  "job-1",
			ScheduledAt:         time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC),
			ServiceDurationMins: 60,
			Status:              model.JobStatusScheduled,
		},
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, _ := newTestEngine(cfg, jobs, now)

	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 60)
	require.NoError(t, err)

	have := make(map[string]bool, len(slots))
	for _, s := range slots {
		have[s.Format("15:04")] = true
	}
	assert.True(t, have["09:00"], "ends exactly when the job starts")
	assert.False(t, have["09:30"], "would run into the job")
	assert.False(t, have["10:00"])
	assert.False(t, have["10:30"])
	assert.False(t, have["11:00"], "still inside the travel buffer")
	assert.True(t, have["11:30"], "first start clear of the buffer")
	assert.True(t, have["12:00"])
}

func TestSlotsForDay_BlackoutDate(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:         "org-1",
		Timezone:      "UTC",
		BlackoutDates: []time.Time{time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)},
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, js := newTestEngine(cfg, nil, now)

	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.July, 4}, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
	// Blackout short-circuits before any job lookup.
	assert.True(t, js.gotStart.IsZero())
}

func TestSlotsForDay_BlackoutRange(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:    "org-1",
		Timezone: "UTC",
		BlackoutRanges: []model.DateRange{
			{Start: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), End: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)},
		},
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, _ := newTestEngine(cfg, nil, now)

	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.August, 12}, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSlotsForDay_TodayFloor(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:             "org-1",
		Timezone:          "UTC",
		ServiceHoursStart: intPtr(9),
		ServiceHoursEnd:   intPtr(18),
		SlotIntervalMins:  intPtr(30),
	}
	now := time.Date(2026, 6, 10, 16, 45, 0, 0, time.UTC)
	eng, _ := newTestEngine(cfg, nil, now)

	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 60)
	require.NoError(t, err)
	// Only 17:00 remains: every earlier candidate starts before 16:46.
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Equal(time.Date(2026, 6, 10, 17, 0, 0, 0, time.UTC)))
}

func TestSlotsForDay_ElapsedDay(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:    "org-1",
		Timezone: "UTC",
	}
	now := time.Date(2026, 6, 11, 8, 0, 0, 0, time.UTC)
	eng, js := newTestEngine(cfg, nil, now)

	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.True(t, js.gotStart.IsZero(), "no job lookup for an elapsed day")
}

func TestSlotsForDay_TimezoneConversion(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:             "org-1",
		Timezone:          "America/New_York",
		ServiceHoursStart: intPtr(9),
		ServiceHoursEnd:   intPtr(18),
		SlotIntervalMins:  intPtr(60),
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, js := newTestEngine(cfg, nil, now)

	// January 15 2027 is EST (UTC-5): 09:00 local is 14:00Z.
	slots, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2027, time.January, 15}, 60)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Equal(time.Date(2027, 1, 15, 14, 0, 0, 0, time.UTC)))
	assert.True(t, js.gotStart.Equal(time.Date(2027, 1, 15, 14, 0, 0, 0, time.UTC)))
	assert.True(t, js.gotEnd.Equal(time.Date(2027, 1, 15, 23, 0, 0, 0, time.UTC)))
}

func TestSlotsForDay_Deterministic(t *testing.T) {
	cfg := model.OrgScheduleConfig{
		OrgID:            "org-1",
		Timezone:         "UTC",
		SlotIntervalMins: intPtr(30),
	}
	jobs := []model.Job{
		{ScheduledAt: time.Date(2026, 6, 10, 11, 0, 0, 0, time.UTC), ServiceDurationMins: 60, Status: model.JobStatusScheduled},
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, _ := newTestEngine(cfg, jobs, now)

	first, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 60)
	require.NoError(t, err)
	second, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 60)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSlotsForDay_StoreErrors(t *testing.T) {
	orgErr := errors.New("org lookup failed")
	eng := NewEngine(fakeOrgStore{err: orgErr}, &fakeJobStore{}, fixedClock{t: time.Now()})
	_, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 0)
	assert.ErrorIs(t, err, orgErr)

	jobErr := errors.New("job lookup failed")
	eng = NewEngine(
		fakeOrgStore{cfg: model.OrgScheduleConfig{OrgID: "org-1", Timezone: "UTC"}},
		&fakeJobStore{err: jobErr},
		fixedClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)},
	)
	_, err = eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 0)
	assert.ErrorIs(t, err, jobErr)
}

func TestSlotsForDay_DefaultDuration(t *testing.T) {
	cfg := model.OrgScheduleConfig{OrgID: "org-1", Timezone: "UTC"}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	eng, _ := newTestEngine(cfg, nil, now)

	withZero, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 0)
	require.NoError(t, err)
	withSixty, err := eng.SlotsForDay(context.Background(), "sparkle-mobile", Date{2026, time.June, 10}, 60)
	require.NoError(t, err)
	assert.Equal(t, withSixty, withZero)
}
