package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
)

// Login exchanges credentials for a session. On success the returned token
// becomes the client's bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	var auth dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &auth); err != nil {
		return dto.AuthResponse{}, err
	}
	c.SetAuthToken(auth.AccessToken)
	return auth, nil
}

func (c *Client) GetProfile(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/auth/register", req, &user)
	return user, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (dto.ForgotPasswordResponse, error) {
	var resp dto.ForgotPasswordResponse
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", dto.ForgotPasswordRequest{Email: email}, &resp)
	return resp, err
}

func (c *Client) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (dto.MessageResponse, error) {
	var resp dto.MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/reset-password", req, &resp)
	return resp, err
}

func (c *Client) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (dto.MessageResponse, error) {
	var resp dto.MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/change-password", req, &resp)
	return resp, err
}

func (c *Client) GetPatients(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := c.do(ctx, http.MethodGet, "/pacientes/", nil, &patients)
	return patients, err
}

func (c *Client) GetPatient(ctx context.Context, id int64) (models.Patient, error) {
	var patient models.Patient
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/pacientes/%d", id), nil, &patient)
	return patient, err
}

func (c *Client) CreatePatient(ctx context.Context, req dto.CreatePatientRequest) (models.Patient, error) {
	var patient models.Patient
	err := c.do(ctx, http.MethodPost, "/pacientes/", req, &patient)
	return patient, err
}

// GetAgenda returns appointments in the order the backend sent them.
func (c *Client) GetAgenda(ctx context.Context) ([]models.Appointment, error) {
	var agenda []models.Appointment
	err := c.do(ctx, http.MethodGet, "/agendamentos/", nil, &agenda)
	return agenda, err
}

func (c *Client) CreateAppointment(ctx context.Context, req dto.CreateAppointmentRequest) (models.Appointment, error) {
	var appt models.Appointment
	err := c.do(ctx, http.MethodPost, "/agendamentos/", req, &appt)
	return appt, err
}

func (c *Client) GetFinance(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := c.do(ctx, http.MethodGet, "/financeiro/", nil, &txs)
	return txs, err
}

func (c *Client) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (models.Transaction, error) {
	var tx models.Transaction
	err := c.do(ctx, http.MethodPost, "/financeiro/transacoes/", req, &tx)
	return tx, err
}

// HealthCheck probes the backend. It never fails: any error, including a
// non-2xx answer, yields the offline status. A success body that does not
// look like a status object still counts as online.
func (c *Client) HealthCheck(ctx context.Context) dto.HealthStatus {
	body, err := c.send(ctx, http.MethodGet, "/", nil)
	if err != nil {
		c.logger.Info("health check failed", "error", err)
		return dto.HealthStatus{Status: dto.StatusOffline}
	}
	var health dto.HealthStatus
	_ = json.Unmarshal(body, &health)
	if health.Status == "" {
		health.Status = dto.StatusOnline
	}
	return health
}
