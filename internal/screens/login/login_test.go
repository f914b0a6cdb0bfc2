package login

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/server/servertest"
	"github.com/aura-clinic/aura/internal/session"
)

type harness struct {
	api    *client.Client
	router *session.Router
	token  *session.Token
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ts := servertest.New(t, nil)
	token := &session.Token{}
	api := client.New(ts.URL, token)
	router := session.NewRouter(api, nil, nil)
	t.Cleanup(router.Close)
	return harness{api: api, router: router, token: token}
}

func TestFormStartsEmpty(t *testing.T) {
	var f Form
	assert.Empty(t, f.Email)
	assert.Empty(t, f.Password)
}

func TestFormSubmit(t *testing.T) {
	h := newHarness(t)
	f := Form{Email: "  " + servertest.AdminEmail + " ", Password: servertest.AdminPassword}

	auth, err := f.Submit(context.Background(), h.router)
	require.NoError(t, err)
	assert.Empty(t, f.Error)
	assert.Equal(t, auth.AccessToken, h.token.Get())
	assert.Equal(t, session.Authenticated, h.router.State())
}

func TestFormSubmitErrors(t *testing.T) {
	h := newHarness(t)
	f := Form{Email: servertest.AdminEmail, Password: "wrong"}
	_, err := f.Submit(context.Background(), h.router)
	require.Error(t, err)
	assert.Equal(t, client.MessageRejected, f.Error)

	h.api.SetBaseURL("http://127.0.0.1:1")
	_, err = f.Submit(context.Background(), h.router)
	require.Error(t, err)
	assert.Equal(t, client.MessageNoConnection, f.Error)
	assert.Equal(t, session.Unauthenticated, h.router.State())
}

func TestForgotPasswordWizard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := NewForgotPasswordWizard(h.api)

	require.ErrorIs(t, w.RequestCode(ctx), ErrEmailRequired)
	assert.Equal(t, StepEmail, w.Step)
	assert.Equal(t, "Enter your email.", w.Error)

	w.Email = servertest.AdminEmail
	require.NoError(t, w.RequestCode(ctx))
	assert.Equal(t, StepCode, w.Step)
	require.Len(t, w.IssuedCode, 6)

	require.ErrorIs(t, w.AcceptCode(), ErrCodeRequired)
	w.Code = w.IssuedCode
	require.NoError(t, w.AcceptCode())
	assert.Equal(t, StepNewPassword, w.Step)

	w.Password, w.Confirm = "abc", "abc"
	require.ErrorIs(t, w.Reset(ctx), ErrPasswordTooShort)
	w.Password, w.Confirm = "nova-senha", "outra-senha"
	require.ErrorIs(t, w.Reset(ctx), ErrPasswordMismatch)
	assert.Equal(t, StepNewPassword, w.Step)

	w.Confirm = "nova-senha"
	require.NoError(t, w.Reset(ctx))
	assert.Equal(t, StepDone, w.Step)
	assert.Empty(t, w.Password)

	_, err := h.router.Login(ctx, servertest.AdminEmail, "nova-senha")
	require.NoError(t, err)
}

func TestForgotPasswordWrongCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := NewForgotPasswordWizard(h.api)
	w.Email = servertest.AdminEmail
	require.NoError(t, w.RequestCode(ctx))

	w.Code = "000000"
	if w.IssuedCode == w.Code {
		w.Code = "111111"
	}
	require.NoError(t, w.AcceptCode())
	w.Password, w.Confirm = "nova-senha", "nova-senha"
	require.Error(t, w.Reset(ctx))
	assert.Equal(t, StepNewPassword, w.Step)
	assert.NotEmpty(t, w.Error)
}

func TestForgotPasswordCancel(t *testing.T) {
	w := NewForgotPasswordWizard(nil)
	w.Step = StepNewPassword
	w.Email, w.Code, w.Password, w.Confirm = "a@b.c", "123456", "x", "y"
	w.Error = "boom"

	w.Cancel()
	assert.Equal(t, StepEmail, w.Step)
	assert.Empty(t, w.Email)
	assert.Empty(t, w.Code)
	assert.Empty(t, w.Password)
	assert.Empty(t, w.Confirm)
	assert.Empty(t, w.Error)
}

func TestCreateAccountWizard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w := NewCreateAccountWizard(h.api)

	_, err := w.Submit(ctx)
	require.ErrorIs(t, err, ErrNameRequired)

	w.Document, w.Name, w.Email, w.Phone = "CRM-SP 12345", "Dra. Ana", "ana@aura.app", "11988887777"
	w.Password, w.Confirm = "segura1", "segura2"
	_, err = w.Submit(ctx)
	require.ErrorIs(t, err, ErrPasswordMismatch)

	w.Confirm = "segura1"
	user, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dra. Ana", user.Name)
	assert.Equal(t, "CRM-SP 12345", user.CRM)
	require.NotNil(t, w.Created)
	assert.Empty(t, w.Name)
	assert.Empty(t, w.Password)

	w.Name, w.Email, w.Password, w.Confirm = "Outra", "ana@aura.app", "segura1", "segura1"
	_, err = w.Submit(ctx)
	require.Error(t, err)
	assert.NotEmpty(t, w.Error)
	assert.Equal(t, "Outra", w.Name)

	_, err = h.router.Login(ctx, "ana@aura.app", "segura1")
	require.NoError(t, err)
}

type fakeBiometrics struct {
	available bool
	ok        bool
	err       error
	prompts   int
}

func (f *fakeBiometrics) Available(context.Context) bool { return f.available }

func (f *fakeBiometrics) Authenticate(context.Context, string) (bool, error) {
	f.prompts++
	return f.ok, f.err
}

func TestBiometricLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable", func(t *testing.T) {
		h := newHarness(t)
		_, err := BiometricLogin(ctx, NoBiometrics{}, h.router.Vault(), h.router)
		require.ErrorIs(t, err, ErrBiometricsUnavailable)
		assert.Equal(t, "Biometrics unavailable on this device.", BiometricMessage(err))
	})

	t.Run("no stored credentials", func(t *testing.T) {
		h := newHarness(t)
		bio := &fakeBiometrics{available: true, ok: true}
		_, err := BiometricLogin(ctx, bio, h.router.Vault(), h.router)
		require.ErrorIs(t, err, ErrPasswordLoginFirst)
		assert.Zero(t, bio.prompts)
	})

	t.Run("rejected", func(t *testing.T) {
		h := newHarness(t)
		h.router.Vault().Remember(session.Credentials{Email: servertest.AdminEmail, Password: servertest.AdminPassword})
		_, err := BiometricLogin(ctx, &fakeBiometrics{available: true}, h.router.Vault(), h.router)
		require.ErrorIs(t, err, ErrBiometricRejected)

		_, err = BiometricLogin(ctx, &fakeBiometrics{available: true, err: errors.New("sensor")}, h.router.Vault(), h.router)
		require.ErrorIs(t, err, ErrBiometricRejected)
		assert.Equal(t, session.Unauthenticated, h.router.State())
	})

	t.Run("stale credentials are forgotten", func(t *testing.T) {
		h := newHarness(t)
		h.router.Vault().Remember(session.Credentials{Email: servertest.AdminEmail, Password: "old-password"})
		bio := &fakeBiometrics{available: true, ok: true}

		_, err := BiometricLogin(ctx, bio, h.router.Vault(), h.router)
		require.ErrorIs(t, err, client.ErrUnauthenticated)
		_, err = h.router.Vault().Credentials()
		require.ErrorIs(t, err, session.ErrNoCredentials)

		_, err = BiometricLogin(ctx, bio, h.router.Vault(), h.router)
		require.ErrorIs(t, err, ErrPasswordLoginFirst)
		assert.Equal(t, 1, bio.prompts)
	})

	t.Run("uses stored credentials", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.router.Login(ctx, servertest.AdminEmail, servertest.AdminPassword)
		require.NoError(t, err)
		h.router.Logout()

		auth, err := BiometricLogin(ctx, &fakeBiometrics{available: true, ok: true}, h.router.Vault(), h.router)
		require.NoError(t, err)
		assert.Equal(t, servertest.AdminEmail, auth.User.Email)
		assert.Equal(t, session.Authenticated, h.router.State())
		assert.Equal(t, auth.AccessToken, h.token.Get())
	})
}

func TestChangePasswordForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.router.Login(ctx, servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)

	var f ChangePasswordForm
	require.ErrorIs(t, f.Submit(ctx, h.router), ErrCurrentPasswordRequired)
	assert.Equal(t, "Enter your current password.", f.Error)

	f.Current, f.Password, f.Confirm = servertest.AdminPassword, "nova-senha", "nova"
	require.ErrorIs(t, f.Submit(ctx, h.router), ErrPasswordMismatch)

	f.Current, f.Confirm = "wrong", "nova-senha"
	require.Error(t, f.Submit(ctx, h.router))
	assert.Equal(t, "current password is incorrect", f.Error)
	assert.Equal(t, session.Authenticated, h.router.State())

	f.Current = servertest.AdminPassword
	require.NoError(t, f.Submit(ctx, h.router))
	assert.Empty(t, f.Error)
	assert.Empty(t, f.Current)
	assert.Empty(t, f.Password)
	assert.NotEmpty(t, f.Message)

	h.router.Logout()
	_, err = h.router.Login(ctx, servertest.AdminEmail, "nova-senha")
	require.NoError(t, err)
}
