package login

import (
	"context"
	"errors"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/session"
)

// Biometrics is a local identity check such as a fingerprint reader.
type Biometrics interface {
	Available(ctx context.Context) bool
	Authenticate(ctx context.Context, prompt string) (bool, error)
}

// NoBiometrics is used where no biometric hardware exists.
type NoBiometrics struct{}

func (NoBiometrics) Available(context.Context) bool { return false }

func (NoBiometrics) Authenticate(context.Context, string) (bool, error) {
	return false, ErrBiometricsUnavailable
}

const BiometricPrompt = "Authenticate with biometrics"

// BiometricLogin verifies the user locally, then logs in with the
// credentials of the last successful password login. What is typed in the
// form is never used. Credentials the backend no longer accepts are
// forgotten, so the next attempt asks for a password login.
func BiometricLogin(ctx context.Context, bio Biometrics, vault *session.Vault, auth Authenticator) (dto.AuthResponse, error) {
	if bio == nil || !bio.Available(ctx) {
		return dto.AuthResponse{}, ErrBiometricsUnavailable
	}
	creds, err := vault.Credentials()
	if err != nil {
		return dto.AuthResponse{}, ErrPasswordLoginFirst
	}
	ok, err := bio.Authenticate(ctx, BiometricPrompt)
	if err != nil {
		return dto.AuthResponse{}, errors.Join(ErrBiometricRejected, err)
	}
	if !ok {
		return dto.AuthResponse{}, ErrBiometricRejected
	}
	resp, err := auth.Login(ctx, creds.Email, creds.Password)
	if errors.Is(err, client.ErrUnauthenticated) {
		vault.Forget()
	}
	return resp, err
}

// BiometricMessage is the text shown after a biometric attempt.
func BiometricMessage(err error) string {
	if err == nil {
		return "Biometrics verified, signing in..."
	}
	return describe(err)
}
