package storage

import (
	"context"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
	"github.com/NewLegacy1/detailingcrm-sub002/libs/db"
)

type OrgRepository struct {
	pool *db.Pool
}

func NewOrgRepository(pool *db.Pool) *OrgRepository {
	return &OrgRepository{pool: pool}
}

// ScheduleConfig loads the raw scheduling configuration for the tenant
// behind a public booking slug. Numeric columns are nullable on purpose:
// tenants that never opened their scheduling settings get engine defaults.
func (r *OrgRepository) ScheduleConfig(ctx context.Context, slug string) (model.OrgScheduleConfig, error) {
	var cfg model.OrgScheduleConfig
	err := r.pool.QueryRow(ctx, `
		SELECT id::text,
			COALESCE(timezone, ''),
			service_hours_start,
			service_hours_end,
			slot_interval_minutes,
			travel_buffer_minutes,
			COALESCE(blackout_dates, '{}')
		FROM organizations
		WHERE slug = $1
	`, slug).Scan(
		&cfg.OrgID,
		&cfg.Timezone,
		&cfg.ServiceHoursStart,
		&cfg.ServiceHoursEnd,
		&cfg.SlotIntervalMins,
		&cfg.TravelBufferMins,
		&cfg.BlackoutDates,
	)
	if err != nil {
		return model.OrgScheduleConfig{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT start_date, end_date
		FROM org_blackout_ranges
		WHERE org_id = $1
	`, cfg.OrgID)
	if err != nil {
		return model.OrgScheduleConfig{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var dr model.DateRange
		if err := rows.Scan(&dr.Start, &dr.End); err != nil {
			return model.OrgScheduleConfig{}, err
		}
		cfg.BlackoutRanges = append(cfg.BlackoutRanges, dr)
	}
	if rows.Err() != nil {
		return model.OrgScheduleConfig{}, rows.Err()
	}
	return cfg, nil
}
