// Package login holds the state of the login screen: the password form,
// the biometric unlock, the forgot-password wizard and the account
// creation form.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/models/dto"
)

// MinPasswordLength matches the backend's password rule.
const MinPasswordLength = 6

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrCodeRequired     = errors.New("reset code is required")
	ErrNameRequired     = errors.New("name is required")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordMismatch = errors.New("passwords do not match")

	ErrBiometricsUnavailable = errors.New("biometrics unavailable")
	ErrBiometricRejected     = errors.New("biometric check failed")
	ErrPasswordLoginFirst    = errors.New("no password login to reuse")
)

var messages = []struct {
	err  error
	text string
}{
	{ErrEmailRequired, "Enter your email."},
	{ErrCodeRequired, "Enter the code you received."},
	{ErrNameRequired, "Enter your full name."},
	{ErrPasswordTooShort, "The password must have at least 6 characters."},
	{ErrPasswordMismatch, "The passwords do not match."},
	{ErrCurrentPasswordRequired, "Enter your current password."},
	{ErrBiometricsUnavailable, "Biometrics unavailable on this device."},
	{ErrBiometricRejected, "Authentication canceled or failed."},
	{ErrPasswordLoginFirst, "Sign in with your password once before using biometrics."},
}

// Authenticator starts a session. It is satisfied by *session.Router.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (dto.AuthResponse, error)
}

// Form is the email/password form. Both fields start empty.
type Form struct {
	Email    string
	Password string
	Error    string
}

// Submit logs in with the form's credentials. On failure Error holds the
// text to show and the underlying error is returned.
func (f *Form) Submit(ctx context.Context, auth Authenticator) (dto.AuthResponse, error) {
	f.Error = ""
	resp, err := auth.Login(ctx, strings.TrimSpace(f.Email), f.Password)
	if err != nil {
		f.Error = client.UserMessage(err)
		return dto.AuthResponse{}, err
	}
	return resp, nil
}

func validatePassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// describe turns err into user-facing text. Local validation errors and
// server details are shown as is.
func describe(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" && apiErr.StatusCode < 500 {
		return apiErr.Detail
	}
	return client.UserMessage(err)
}
