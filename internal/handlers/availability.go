package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NewLegacy1/detailingcrm-sub002/internal/availability"
	"github.com/NewLegacy1/detailingcrm-sub002/internal/storage"
)

// AvailabilityHandler serves the public read endpoint behind the booking
// page: which start times are offerable on a given tenant-local day.
type AvailabilityHandler struct {
	engine *availability.Engine
}

func NewAvailabilityHandler(engine *availability.Engine) *AvailabilityHandler {
	return &AvailabilityHandler{engine: engine}
}

// Slots handles GET /api/v1/public/slots?org=<slug>&date=YYYY-MM-DD
// [&duration_minutes=N]. The response is an ordered JSON array of RFC3339
// UTC instants; an empty array means "nothing available" and is not an
// error. Only an unknown tenant (404) or a malformed request (400) fails.
func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	org := strings.TrimSpace(r.URL.Query().Get("org"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if org == "" || dateStr == "" {
		http.Error(w, "org and date are required", http.StatusBadRequest)
		return
	}

	day, err := availability.ParseDate(dateStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	durationMins := 0
	if v := strings.TrimSpace(r.URL.Query().Get("duration_minutes")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
			return
		}
		durationMins = n
	}

	slots, err := h.engine.SlotsForDay(r.Context(), org, day, durationMins)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}

	resp := make([]string, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, s.UTC().Format(time.RFC3339))
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
