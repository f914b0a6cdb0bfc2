package models

import "time"

// AppointmentStatus is loosely typed: the backend may return values other
// than the known constants and callers must tolerate them.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "agendado"
	StatusConfirmed AppointmentStatus = "confirmado"
	StatusCompleted AppointmentStatus = "finalizado"
	StatusCanceled  AppointmentStatus = "cancelado"
)

// Known reports whether s is one of the four statuses the backend defines.
func (s AppointmentStatus) Known() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Pending reports whether the appointment still has to happen.
func (s AppointmentStatus) Pending() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

type Appointment struct {
	ID            int64             `json:"id"`
	PatientID     int64             `json:"paciente_id"`
	StartTime     time.Time         `json:"data_hora_inicio"`
	EndTime       time.Time         `json:"data_hora_fim"`
	Type          string            `json:"tipo"`
	Status        AppointmentStatus `json:"status"`
	ExpectedValue *float64          `json:"valor_previsto,omitempty"`
	Room          *string           `json:"sala,omitempty"`
	Notes         string            `json:"observacoes,omitempty"`
	Patient       Patient           `json:"paciente"`
	OwnerID       *int64            `json:"responsavel_id,omitempty"`
}
