package login

import (
	"context"
	"strings"

	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
)

type RegistrationAPI interface {
	Register(ctx context.Context, req dto.RegisterRequest) (models.User, error)
}

// CreateAccountWizard is the single-step sign-up form. Document holds the
// doctor's CRM.
type CreateAccountWizard struct {
	api RegistrationAPI

	Document string
	Name     string
	Email    string
	Phone    string
	Password string
	Confirm  string

	Created *models.User
	Error   string
}

func NewCreateAccountWizard(api RegistrationAPI) *CreateAccountWizard {
	return &CreateAccountWizard{api: api}
}

// Submit registers the account. On success the form is cleared and
// Created holds the new user.
func (w *CreateAccountWizard) Submit(ctx context.Context) (models.User, error) {
	w.Error = ""
	req := dto.RegisterRequest{
		Name:     strings.TrimSpace(w.Name),
		Email:    strings.TrimSpace(w.Email),
		Password: w.Password,
		Phone:    strings.TrimSpace(w.Phone),
		CRM:      strings.TrimSpace(w.Document),
	}
	switch {
	case req.Name == "":
		return models.User{}, w.fail(ErrNameRequired)
	case req.Email == "":
		return models.User{}, w.fail(ErrEmailRequired)
	}
	if err := validatePassword(w.Password, w.Confirm); err != nil {
		return models.User{}, w.fail(err)
	}

	user, err := w.api.Register(ctx, req)
	if err != nil {
		return models.User{}, w.fail(err)
	}
	w.Cancel()
	w.Created = &user
	return user, nil
}

func (w *CreateAccountWizard) Cancel() {
	*w = CreateAccountWizard{api: w.api}
}

func (w *CreateAccountWizard) fail(err error) error {
	w.Error = describe(err)
	return err
}
