// Package home holds the dashboard state: backend health, the doctor's
// agenda and the counters derived from it.
package home

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
)

// API is the slice of the client the dashboard reads from.
type API interface {
	AuthToken() string
	HealthCheck(ctx context.Context) dto.HealthStatus
	GetAgenda(ctx context.Context) ([]models.Appointment, error)
}

// Session ends the session when the backend rejects its token. A token
// from a superseded session must be ignored.
type Session interface {
	Expire(sentToken string)
}

// Snapshot is what the dashboard renders.
type Snapshot struct {
	Generation uint64
	Loaded     bool
	Offline    bool
	LoggedOut  bool
	Health     dto.HealthStatus
	// Agenda keeps the last successfully fetched list when a later refresh
	// fails.
	Agenda    []models.Appointment
	Err       error
	UpdatedAt time.Time
}

// Stats are the dashboard counters.
type Stats struct {
	Total     int
	Completed int
}

type Screen struct {
	api     API
	session Session
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	latest  uint64
	current Snapshot
}

func New(api API, session Session, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Screen{api: api, session: session, logger: logger, now: time.Now}
}

func (s *Screen) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh checks health, then fetches the agenda. Refreshes may overlap;
// only the most recently started one is published and a superseded one
// returns the published snapshot unchanged. Without a token it does
// nothing.
func (s *Screen) Refresh(ctx context.Context) Snapshot {
	token := s.api.AuthToken()
	if token == "" {
		return s.Snapshot()
	}

	s.mu.Lock()
	s.latest++
	gen := s.latest
	next := s.current
	s.mu.Unlock()

	next.Generation = gen
	next.Loaded = true
	next.Err = nil

	next.Health = s.api.HealthCheck(ctx)
	if !next.Health.Online() {
		next.Offline = true
		return s.publish(next)
	}
	next.Offline = false

	agenda, err := s.api.GetAgenda(ctx)
	switch {
	case err == nil:
		next.Agenda = agenda
	case errors.Is(err, client.ErrUnauthenticated):
		s.logger.Info("agenda rejected, ending session", "error", err)
		s.session.Expire(token)
		next.LoggedOut = true
		next.Err = err
	default:
		s.logger.Warn("agenda fetch failed", "error", err)
		next.Offline = true
		next.Err = err
	}
	return s.publish(next)
}

func (s *Screen) publish(next Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next.Generation != s.latest {
		return s.current
	}
	next.UpdatedAt = s.now()
	s.current = next
	return next
}

// NextPatient is the first scheduled or confirmed appointment in the order
// the server returned them. Start times are not compared.
func NextPatient(agenda []models.Appointment) (models.Appointment, bool) {
	for _, a := range agenda {
		if a.Status.Pending() {
			return a, true
		}
	}
	return models.Appointment{}, false
}

func ComputeStats(agenda []models.Appointment) Stats {
	stats := Stats{Total: len(agenda)}
	for _, a := range agenda {
		if a.Status == models.StatusCompleted {
			stats.Completed++
		}
	}
	return stats
}
