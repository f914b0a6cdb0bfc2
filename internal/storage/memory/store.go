// Package memory is an in-process storage.Store used by tests and by
// aura-server when STORAGE=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu           sync.Mutex
	nextID       int64
	users        []models.User
	resetTokens  []models.PasswordResetToken
	patients     []models.Patient
	appointments []models.Appointment
	transactions []models.Transaction
	now          func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) || (user.CRM != "" && u.CRM == user.CRM) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.now().UTC()
	s.users = append(s.users, user)
	return user, nil
}

func (s *Store) FindUserByID(_ context.Context, id int64) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) FindUserByCRM(_ context.Context, crm string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.CRM != "" && u.CRM == crm })
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) CreateResetToken(_ context.Context, token models.PasswordResetToken) (models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = s.id()
	token.CreatedAt = s.now().UTC()
	s.resetTokens = append(s.resetTokens, token)
	return token, nil
}

func (s *Store) ActiveResetTokens(_ context.Context, userID int64) ([]models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PasswordResetToken
	// appended in creation order, so walk backwards for newest first
	for i := len(s.resetTokens) - 1; i >= 0; i-- {
		t := s.resetTokens[i]
		if t.UserID == userID && !t.Used {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) InvalidateResetTokens(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.resetTokens {
		if s.resetTokens[i].UserID == userID {
			s.resetTokens[i].Used = true
		}
	}
	return nil
}

func (s *Store) CreatePatient(_ context.Context, patient models.Patient) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patient.TaxID != "" {
		for _, p := range s.patients {
			if p.TaxID == patient.TaxID {
				return models.Patient{}, storage.ErrAlreadyExists
			}
		}
	}
	patient.ID = s.id()
	patient.RegistrationDate = s.now().UTC()
	s.patients = append(s.patients, patient)
	return patient, nil
}

func (s *Store) FindPatient(_ context.Context, id int64) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientLocked(id)
}

func (s *Store) patientLocked(id int64) (models.Patient, error) {
	for _, p := range s.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Patient{}, storage.ErrNotFound
}

func (s *Store) FindPatientByTaxID(_ context.Context, taxID string) (models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if p.TaxID != "" && p.TaxID == taxID {
			return p, nil
		}
	}
	return models.Patient{}, storage.ErrNotFound
}

func (s *Store) ListPatients(_ context.Context, ownerID int64) ([]models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Patient{}
	for _, p := range s.patients {
		if p.VisibleTo(ownerID) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateAppointment(_ context.Context, appt models.Appointment) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.patientLocked(appt.PatientID); err != nil {
		return models.Appointment{}, err
	}
	appt.ID = s.id()
	s.appointments = append(s.appointments, appt)
	return s.withPatientLocked(appt), nil
}

func (s *Store) ListAppointments(_ context.Context) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, s.withPatientLocked(a))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) withPatientLocked(a models.Appointment) models.Appointment {
	if p, err := s.patientLocked(a.PatientID); err == nil {
		a.Patient = p
	}
	return a
}

func (s *Store) CreateTransaction(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.id()
	tx.CompetencyDate = s.now().UTC()
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID int64) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range s.transactions {
		if t.OwnerID == nil || *t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompetencyDate.After(out[j].CompetencyDate) })
	return out, nil
}
