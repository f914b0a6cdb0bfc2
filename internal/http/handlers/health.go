package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/models/dto"
)

// HealthHandler answers the liveness probe used by clients to gate the UI.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(now func() time.Time) *HealthHandler {
	return &HealthHandler{now: now}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r *mux.Router) {
	r.HandleFunc("/", h.handle).Methods(http.MethodGet)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, dto.HealthStatus{
		Status:    dto.StatusOnline,
		System:    "AURA",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
