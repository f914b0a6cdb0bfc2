package login

import (
	"context"
	"strings"

	"github.com/aura-clinic/aura/internal/models/dto"
)

type Step int

const (
	StepEmail Step = iota
	StepCode
	StepNewPassword
	StepDone
)

// RecoveryAPI is the part of the client the recovery wizard calls.
type RecoveryAPI interface {
	ForgotPassword(ctx context.Context, email string) (dto.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (dto.MessageResponse, error)
}

// ForgotPasswordWizard walks through email, code, and new password.
type ForgotPasswordWizard struct {
	api RecoveryAPI

	Step     Step
	Email    string
	Code     string
	Password string
	Confirm  string

	// IssuedCode is the code returned by a non-production backend.
	IssuedCode string
	Message    string
	Error      string
}

func NewForgotPasswordWizard(api RecoveryAPI) *ForgotPasswordWizard {
	return &ForgotPasswordWizard{api: api}
}

// RequestCode asks the backend to issue a reset code for Email.
func (w *ForgotPasswordWizard) RequestCode(ctx context.Context) error {
	w.Error = ""
	email := strings.TrimSpace(w.Email)
	if email == "" {
		return w.fail(ErrEmailRequired)
	}
	resp, err := w.api.ForgotPassword(ctx, email)
	if err != nil {
		return w.fail(err)
	}
	w.Email = email
	w.IssuedCode = resp.Token
	w.Message = resp.Message
	w.Step = StepCode
	return nil
}

// AcceptCode moves on once a code was typed. The backend checks it on
// reset.
func (w *ForgotPasswordWizard) AcceptCode() error {
	w.Error = ""
	w.Code = strings.TrimSpace(w.Code)
	if w.Code == "" {
		return w.fail(ErrCodeRequired)
	}
	w.Step = StepNewPassword
	return nil
}

func (w *ForgotPasswordWizard) Reset(ctx context.Context) error {
	w.Error = ""
	if err := validatePassword(w.Password, w.Confirm); err != nil {
		return w.fail(err)
	}
	resp, err := w.api.ResetPassword(ctx, dto.ResetPasswordRequest{
		Email:       w.Email,
		Token:       w.Code,
		NewPassword: w.Password,
	})
	if err != nil {
		return w.fail(err)
	}
	w.Password, w.Confirm = "", ""
	w.Message = resp.Message
	w.Step = StepDone
	return nil
}

// Cancel clears every field and returns to the first step.
func (w *ForgotPasswordWizard) Cancel() {
	*w = ForgotPasswordWizard{api: w.api}
}

func (w *ForgotPasswordWizard) fail(err error) error {
	w.Error = describe(err)
	return err
}
