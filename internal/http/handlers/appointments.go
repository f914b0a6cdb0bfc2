package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/storage"
)

// AppointmentHandler owns the /agendamentos endpoints.
type AppointmentHandler struct {
	patients     storage.PatientStore
	appointments storage.AppointmentStore
	logger       *slog.Logger
}

func NewAppointmentHandler(patients storage.PatientStore, appointments storage.AppointmentStore, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{patients: patients, appointments: appointments, logger: logger}
}

func (h *AppointmentHandler) Register(r *mux.Router, authed Middleware) {
	r.Handle("/agendamentos/", authed(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	// kept for clients that still request the older path
	r.Handle("/agendamentos/agenda", authed(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	r.Handle("/agendamentos/", authed(http.HandlerFunc(h.handleCreate))).Methods(http.MethodPost)
}

func (h *AppointmentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.CreateAppointmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" {
		respond.Error(w, http.StatusBadRequest, "type is required")
		return
	}
	if _, err := h.patients.FindPatient(r.Context(), req.PatientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "patient not found")
			return
		}
		h.logger.Error("create appointment: fetch patient", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch patient")
		return
	}
	if !req.EndTime.After(req.StartTime) {
		respond.Error(w, http.StatusBadRequest, "end time must be after start time")
		return
	}
	status := req.Status
	if status == "" {
		status = models.StatusScheduled
	}

	created, err := h.appointments.CreateAppointment(r.Context(), models.Appointment{
		PatientID:     req.PatientID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Type:          req.Type,
		Status:        status,
		ExpectedValue: req.ExpectedValue,
		Room:          req.Room,
		Notes:         req.Notes,
		OwnerID:       &uid,
	})
	if err != nil {
		h.logger.Error("create appointment", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *AppointmentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	appts, err := h.appointments.ListAppointments(r.Context())
	if err != nil {
		h.logger.Error("list appointments", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	respond.JSON(w, http.StatusOK, appts)
}
