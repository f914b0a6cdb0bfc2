package storage

import (
	"context"
	"errors"

	"github.com/aura-clinic/aura/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByCRM(ctx context.Context, crm string) (models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// ResetTokenStore persists forgot-password codes.
type ResetTokenStore interface {
	CreateResetToken(ctx context.Context, token models.PasswordResetToken) (models.PasswordResetToken, error)
	// ActiveResetTokens returns unused tokens of the user, newest first.
	ActiveResetTokens(ctx context.Context, userID int64) ([]models.PasswordResetToken, error)
	// InvalidateResetTokens marks every unused token of the user as used.
	InvalidateResetTokens(ctx context.Context, userID int64) error
}

type PatientStore interface {
	CreatePatient(ctx context.Context, patient models.Patient) (models.Patient, error)
	FindPatient(ctx context.Context, id int64) (models.Patient, error)
	FindPatientByTaxID(ctx context.Context, taxID string) (models.Patient, error)
	// ListPatients returns patients owned by ownerID or unowned, by name.
	ListPatients(ctx context.Context, ownerID int64) ([]models.Patient, error)
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error)
	// ListAppointments returns every appointment with its patient, by start time.
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	// ListTransactions returns transactions owned by ownerID or unowned,
	// newest competency date first.
	ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error)
}

// Store is everything the HTTP handlers need.
type Store interface {
	UserStore
	ResetTokenStore
	PatientStore
	AppointmentStore
	TransactionStore
}
