package dto

import (
	"time"

	"github.com/aura-clinic/aura/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"telefone,omitempty"`
	CRM      string `json:"crm,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse carries the plain reset token outside production
// so that it can be relayed to the user manually.
type ForgotPasswordResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token,omitempty"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// HealthStatus is the body of the liveness probe. The client substitutes
// StatusOffline when the probe fails.
type HealthStatus struct {
	Status    string `json:"status"`
	System    string `json:"system,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Online reports whether the probe reached the backend.
func (h HealthStatus) Online() bool {
	return h.Status != StatusOffline
}
