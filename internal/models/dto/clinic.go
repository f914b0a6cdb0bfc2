package dto

import (
	"time"

	"github.com/aura-clinic/aura/internal/models"
)

type CreatePatientRequest struct {
	Name  string `json:"nome"`
	Phone string `json:"telefone"`
	Email string `json:"email,omitempty"`
	TaxID string `json:"cpf,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID     int64                    `json:"paciente_id"`
	StartTime     time.Time                `json:"data_hora_inicio"`
	EndTime       time.Time                `json:"data_hora_fim"`
	Type          string                   `json:"tipo"`
	Status        models.AppointmentStatus `json:"status,omitempty"`
	ExpectedValue *float64                 `json:"valor_previsto,omitempty"`
	Room          *string                  `json:"sala,omitempty"`
	Notes         string                   `json:"observacoes,omitempty"`
}

type CreateTransactionRequest struct {
	Description string  `json:"descricao"`
	Value       float64 `json:"valor"`
	Kind        string  `json:"tipo"`
	Category    string  `json:"categoria"`
	Paid        bool    `json:"pago"`
}
