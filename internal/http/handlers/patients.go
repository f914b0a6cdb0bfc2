package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/storage"
)

// Column widths of the pacientes table.
const (
	maxPatientName  = 120
	maxPatientPhone = 20
	maxPatientEmail = 255
)

// PatientHandler owns the /pacientes endpoints.
type PatientHandler struct {
	store  storage.PatientStore
	logger *slog.Logger
}

func NewPatientHandler(store storage.PatientStore, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{store: store, logger: logger}
}

func (h *PatientHandler) Register(r *mux.Router, authed Middleware) {
	r.Handle("/pacientes/", authed(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	r.Handle("/pacientes/", authed(http.HandlerFunc(h.handleCreate))).Methods(http.MethodPost)
	r.Handle("/pacientes/{id:[0-9]+}", authed(http.HandlerFunc(h.handleGet))).Methods(http.MethodGet)
}

func (h *PatientHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.CreatePatientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Phone == "" {
		respond.Error(w, http.StatusBadRequest, "name and phone are required")
		return
	}
	if len(req.Name) > maxPatientName || len(req.Phone) > maxPatientPhone || len(req.Email) > maxPatientEmail {
		respond.Error(w, http.StatusBadRequest, "name, phone or email is too long")
		return
	}
	taxID, ok := normalizeCPF(req.TaxID)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "CPF must have 11 digits")
		return
	}
	req.TaxID = taxID
	if req.TaxID != "" {
		if _, err := h.store.FindPatientByTaxID(r.Context(), req.TaxID); err == nil {
			respond.Error(w, http.StatusBadRequest, "CPF already registered")
			return
		}
	}

	created, err := h.store.CreatePatient(r.Context(), models.Patient{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		TaxID:   req.TaxID,
		OwnerID: &uid,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusBadRequest, "CPF already registered")
			return
		}
		h.logger.Error("create patient", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create patient")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *PatientHandler) handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	patients, err := h.store.ListPatients(r.Context(), uid)
	if err != nil {
		h.logger.Error("list patients", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list patients")
		return
	}
	respond.JSON(w, http.StatusOK, patients)
}

func (h *PatientHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Error(w, http.StatusNotFound, "patient not found")
		return
	}
	patient, err := h.store.FindPatient(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "patient not found")
			return
		}
		h.logger.Error("get patient", "id", id, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch patient")
		return
	}
	if !patient.VisibleTo(uid) {
		respond.Error(w, http.StatusForbidden, "no access to this patient")
		return
	}
	respond.JSON(w, http.StatusOK, patient)
}

// normalizeCPF strips the usual punctuation ("123.456.789-09") and
// requires exactly 11 digits. An empty CPF is valid.
func normalizeCPF(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ' || r == '/':
		default:
			return "", false
		}
	}
	cpf := b.String()
	if cpf != "" && len(cpf) != 11 {
		return "", false
	}
	return cpf, true
}
