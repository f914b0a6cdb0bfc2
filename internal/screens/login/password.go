package login

import (
	"context"
	"errors"

	"github.com/aura-clinic/aura/internal/models/dto"
)

var ErrCurrentPasswordRequired = errors.New("current password is required")

// PasswordChanger is satisfied by *session.Router.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, current, next string) (dto.MessageResponse, error)
}

// ChangePasswordForm changes the password of the signed-in user.
type ChangePasswordForm struct {
	Current  string
	Password string
	Confirm  string

	Message string
	Error   string
}

// Submit validates the form and changes the password. On success the
// password fields are cleared and Message holds the server's answer.
func (f *ChangePasswordForm) Submit(ctx context.Context, api PasswordChanger) error {
	f.Error, f.Message = "", ""
	if f.Current == "" {
		f.Error = describe(ErrCurrentPasswordRequired)
		return ErrCurrentPasswordRequired
	}
	if err := validatePassword(f.Password, f.Confirm); err != nil {
		f.Error = describe(err)
		return err
	}
	resp, err := api.ChangePassword(ctx, f.Current, f.Password)
	if err != nil {
		f.Error = describe(err)
		return err
	}
	*f = ChangePasswordForm{Message: resp.Message}
	return nil
}
