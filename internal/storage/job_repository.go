package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
	"github.com/NewLegacy1/detailingcrm-sub002/libs/db"
)

type JobRepository struct {
	pool *db.Pool
}

func NewJobRepository(pool *db.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const jobColumns = `
	j.id::text, j.org_id::text, COALESCE(j.service_id::text, ''),
	j.customer_name, j.customer_email, j.customer_phone, j.vehicle,
	j.status, j.scheduled_at, j.actual_start_at, j.actual_end_at,
	COALESCE(s.duration_minutes, 0),
	j.cancelled_at, COALESCE(j.cancellation_reason, ''), j.created_at`

// ActiveJobsInWindow returns jobs whose scheduled start falls in
// [start, end) and whose status still occupies the calendar. Selection is by
// scheduled start: a job that ran long is still found through its scheduled
// slot and carries its actual times.
func (r *JobRepository) ActiveJobsInWindow(ctx context.Context, orgID string, start, end time.Time) ([]model.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+jobColumns+`
		FROM jobs j
		LEFT JOIN services s ON s.id = j.service_id AND s.org_id = j.org_id
		WHERE j.org_id = $1
			AND j.scheduled_at >= $2
			AND j.scheduled_at < $3
			AND j.status IN ('scheduled', 'en_route', 'in_progress')
		ORDER BY j.scheduled_at ASC
	`, orgID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *JobRepository) Create(ctx context.Context, tx pgx.Tx, job *model.Job) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO jobs
			(id, org_id, service_id, customer_name, customer_email, customer_phone, vehicle, status, scheduled_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
	`, id, job.OrgID, job.ServiceID, job.CustomerName, job.CustomerEmail, job.CustomerPhone,
		job.VehicleDesc, string(job.Status), job.ScheduledAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *JobRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, orgID, jobID string) (model.Job, error) {
	row := tx.QueryRow(ctx, `
		SELECT`+jobColumns+`
		FROM jobs j
		LEFT JOIN services s ON s.id = j.service_id AND s.org_id = j.org_id
		WHERE j.id = $1 AND j.org_id = $2
		FOR UPDATE OF j
	`, jobID, orgID)
	return scanJob(row)
}

func (r *JobRepository) Cancel(ctx context.Context, tx pgx.Tx, orgID, jobID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE jobs
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $3
		WHERE id = $1 AND org_id = $2
		RETURNING cancelled_at
	`, jobID, orgID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *JobRepository) ListByOrg(ctx context.Context, orgID string, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+jobColumns+`
		FROM jobs j
		LEFT JOIN services s ON s.id = j.service_id AND s.org_id = j.org_id
		WHERE j.org_id = $1
		ORDER BY j.scheduled_at DESC
		LIMIT $2
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

type IdempotencyRecord struct {
	OrgID           string
	IdempotencyKey  string
	JobID           string
	StatusCode      int
	ResponsePayload []byte
}

func (r *JobRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, orgID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, orgID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (org_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (org_id, idempotency_key) DO NOTHING
	`, orgID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, orgID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *JobRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, orgID, key, jobID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET job_id = NULLIF($3, '')::uuid,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE org_id = $1 AND idempotency_key = $2
	`, orgID, key, jobID, statusCode, response)
	return err
}

func (r *JobRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, orgID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT org_id::text,
			idempotency_key,
			COALESCE(job_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE org_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, orgID, key).Scan(
		&rec.OrgID,
		&rec.IdempotencyKey,
		&rec.JobID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}

func scanJobs(rows pgx.Rows) ([]model.Job, error) {
	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (model.Job, error) {
	var j model.Job
	var status string
	err := row.Scan(
		&j.ID,
		&j.OrgID,
		&j.ServiceID,
		&j.CustomerName,
		&j.CustomerEmail,
		&j.CustomerPhone,
		&j.VehicleDesc,
		&status,
		&j.ScheduledAt,
		&j.ActualStartAt,
		&j.ActualEndAt,
		&j.ServiceDurationMins,
		&j.CancelledAt,
		&j.CancelReason,
		&j.CreatedAt,
	)
	if err != nil {
		return model.Job{}, err
	}
	j.Status = model.JobStatus(status)
	return j, nil
}

// IsConflict matches the slot-uniqueness and overlap constraints on jobs:
// 23505 from the (org_id, scheduled_at) unique index, 23P01 from the
// occupied-range exclusion constraint.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
