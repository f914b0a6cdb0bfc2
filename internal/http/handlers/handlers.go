package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/middleware"
)

// Middleware decorates a route handler, e.g. with bearer authentication.
type Middleware func(http.Handler) http.Handler

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// currentUserID reads the caller set by middleware.Auth. Routes registered
// without Auth never call it.
func currentUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
	}
	return uid, ok
}

