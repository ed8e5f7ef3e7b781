package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/availability"
	"github.com/NewLegacy1/detailingcrm-sub002/internal/model"
	"github.com/NewLegacy1/detailingcrm-sub002/internal/outbox"
	"github.com/NewLegacy1/detailingcrm-sub002/internal/storage"
)

// BookingHandler owns the booking-creation flow and the tenant-facing job
// endpoints. Availability is recomputed at booking time, but the real
// double-booking guard is the slot constraint on the jobs table.
type BookingHandler struct {
	orgs       *storage.OrgRepository
	jobs       *storage.JobRepository
	outboxRepo *outbox.Repository
	engine     *availability.Engine
	logger     *slog.Logger
	validate   *validator.Validate
}

func NewBookingHandler(orgs *storage.OrgRepository, jobs *storage.JobRepository, outboxRepo *outbox.Repository, engine *availability.Engine, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		orgs:       orgs,
		jobs:       jobs,
		outboxRepo: outboxRepo,
		engine:     engine,
		logger:     logger,
		validate:   validator.New(),
	}
}

type createBookingRequest struct {
	Org             string `json:"org" validate:"required,max=100"`
	ServiceID       string `json:"service_id" validate:"required,uuid"`
	CustomerName    string `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string `json:"customer_phone" validate:"omitempty,max=32"`
	Vehicle         string `json:"vehicle" validate:"omitempty,max=200"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
}

type createBookingResponse struct {
	JobID string `json:"job_id"`
}

type cancelBookingRequest struct {
	Org    string `json:"org" validate:"required,max=100"`
	JobID  string `json:"job_id" validate:"required,uuid"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type cancelBookingResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	CancelledAt string `json:"cancelled_at"`
}

type jobListItem struct {
	JobID           string `json:"job_id"`
	ServiceID       string `json:"service_id,omitempty"`
	CustomerName    string `json:"customer_name"`
	Vehicle         string `json:"vehicle,omitempty"`
	Status          string `json:"status"`
	ScheduledAt     string `json:"scheduled_at"`
	ActualStartAt   string `json:"actual_start_at,omitempty"`
	ActualEndAt     string `json:"actual_end_at,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	CancelledAt     string `json:"cancelled_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Org = strings.TrimSpace(req.Org)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.Vehicle = strings.TrimSpace(req.Vehicle)

	if err := h.validate.Struct(req); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}
	start = start.UTC()

	ctx := r.Context()
	rawCfg, err := h.orgs.ScheduleConfig(ctx, req.Org)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load organization", http.StatusInternalServerError)
		return
	}
	cfg := availability.Normalize(rawCfg)

	// The requested start must be one of the currently offerable slots for
	// its tenant-local day. This catches stale booking pages and off-grid
	// starts; the insert below still races under the DB constraint.
	localDay := availability.DateOf(start.In(cfg.Location))
	offered, err := h.engine.SlotsForDay(ctx, req.Org, localDay, req.DurationMinutes)
	if err != nil {
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}
	if !containsInstant(offered, start) {
		http.Error(w, "requested start is no longer available", http.StatusUnprocessableEntity)
		return
	}

	tx, err := h.jobs.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.jobs.LockIdempotencyKey(ctx, tx, rawCfg.OrgID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			if len(rec.ResponsePayload) > 0 {
				_, _ = w.Write(rec.ResponsePayload)
				return
			}
			_ = json.NewEncoder(w).Encode(createBookingResponse{JobID: rec.JobID})
			return
		}
	}

	job := &model.Job{
		OrgID:         rawCfg.OrgID,
		ServiceID:     req.ServiceID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		VehicleDesc:   req.Vehicle,
		Status:        model.JobStatusScheduled,
		ScheduledAt:   start,
	}
	id, err := h.jobs.Create(ctx, tx, job)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create job", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"job_id":           id,
		"org_id":           rawCfg.OrgID,
		"service_id":       req.ServiceID,
		"customer_email":   req.CustomerEmail,
		"customer_phone":   req.CustomerPhone,
		"scheduled_at":     start.Format(time.RFC3339),
		"duration_minutes": int(availability.DurationFor(req.DurationMinutes) / time.Minute),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "job",
		AggregateID:   id,
		EventType:     outbox.EventJobBooked,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createBookingResponse{JobID: id})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.jobs.FinalizeIdempotency(ctx, tx, rawCfg.OrgID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Org = strings.TrimSpace(req.Org)
	req.JobID = strings.TrimSpace(req.JobID)
	req.Reason = strings.TrimSpace(req.Reason)
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	rawCfg, err := h.orgs.ScheduleConfig(ctx, req.Org)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load organization", http.StatusInternalServerError)
		return
	}

	tx, err := h.jobs.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	job, err := h.jobs.GetForUpdate(ctx, tx, rawCfg.OrgID, req.JobID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}

	if job.Status == model.JobStatusCancelled && job.CancelledAt != nil {
		h.writeCancelResponse(w, job.ID, job.CancelledAt.UTC())
		return
	}
	if job.Status != model.JobStatusScheduled && job.Status != model.JobStatusEnRoute {
		http.Error(w, "job cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.jobs.Cancel(ctx, tx, rawCfg.OrgID, job.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel job", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"job_id":       job.ID,
		"org_id":       job.OrgID,
		"service_id":   job.ServiceID,
		"scheduled_at": job.ScheduledAt.UTC().Format(time.RFC3339),
		"cancelled_at": cancelledAt.UTC().Format(time.RFC3339),
		"reason":       req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "job",
		AggregateID:   job.ID,
		EventType:     outbox.EventJobCancelled,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, job.ID, cancelledAt.UTC())
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	org := strings.TrimSpace(r.URL.Query().Get("org"))
	if org == "" {
		http.Error(w, "org is required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	ctx := r.Context()
	rawCfg, err := h.orgs.ScheduleConfig(ctx, org)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load organization", http.StatusInternalServerError)
		return
	}

	jobs, err := h.jobs.ListByOrg(ctx, rawCfg.OrgID, limit)
	if err != nil {
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}

	items := make([]jobListItem, 0, len(jobs))
	for _, job := range jobs {
		item := jobListItem{
			JobID:           job.ID,
			ServiceID:       job.ServiceID,
			CustomerName:    job.CustomerName,
			Vehicle:         job.VehicleDesc,
			Status:          string(job.Status),
			ScheduledAt:     job.ScheduledAt.UTC().Format(time.RFC3339),
			DurationMinutes: job.ServiceDurationMins,
			CreatedAt:       job.CreatedAt.UTC().Format(time.RFC3339),
		}
		if job.ActualStartAt != nil {
			item.ActualStartAt = job.ActualStartAt.UTC().Format(time.RFC3339)
		}
		if job.ActualEndAt != nil {
			item.ActualEndAt = job.ActualEndAt.UTC().Format(time.RFC3339)
		}
		if job.CancelledAt != nil {
			item.CancelledAt = job.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	body, err := json.Marshal(items)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *BookingHandler) writeCancelResponse(w http.ResponseWriter, jobID string, cancelledAt time.Time) {
	resp := cancelBookingResponse{
		JobID:       jobID,
		Status:      string(model.JobStatusCancelled),
		CancelledAt: cancelledAt.Format(time.RFC3339),
	}
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func containsInstant(slots []time.Time, t time.Time) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}
