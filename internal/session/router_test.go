package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/server/servertest"
)

func newRouter(t *testing.T) (*Router, *client.Client, *Token) {
	t.Helper()
	ts := servertest.New(t, nil)
	token := &Token{}
	api := client.New(ts.URL, token)
	r := NewRouter(api, nil, nil)
	t.Cleanup(r.Close)
	return r, api, token
}

func TestRouterStartsUnauthenticated(t *testing.T) {
	r, _, token := newRouter(t)
	assert.Equal(t, Unauthenticated, r.State())
	_, ok := r.Auth()
	assert.False(t, ok)
	assert.Empty(t, token.Get())
}

func TestLoginForwardsToken(t *testing.T) {
	r, _, token := newRouter(t)
	var states []State
	r.Subscribe(func(s State) { states = append(states, s) })

	auth, err := r.Login(context.Background(), servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)

	assert.Equal(t, Authenticated, r.State())
	assert.Equal(t, auth.AccessToken, token.Get())
	kept, ok := r.Auth()
	require.True(t, ok)
	assert.Equal(t, servertest.AdminName, kept.User.Name)
	assert.Equal(t, []State{Authenticated}, states)

	creds, err := r.Vault().Credentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{Email: servertest.AdminEmail, Password: servertest.AdminPassword}, creds)
}

func TestFailedLoginKeepsState(t *testing.T) {
	r, _, token := newRouter(t)

	_, err := r.Login(context.Background(), servertest.AdminEmail, "wrong")
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, r.State())
	assert.Empty(t, token.Get())
	_, err = r.Vault().Credentials()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestLogoutClearsToken(t *testing.T) {
	r, _, token := newRouter(t)
	_, err := r.Login(context.Background(), servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)

	r.Logout()
	assert.Equal(t, Unauthenticated, r.State())
	assert.Empty(t, token.Get())
	_, ok := r.Auth()
	assert.False(t, ok)
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	r, api, token := newRouter(t)
	_, err := r.Login(context.Background(), servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)

	var states []State
	r.Subscribe(func(s State) { states = append(states, s) })

	api.SetBaseURL(servertest.Rotated(t).URL)
	_, err = api.GetAgenda(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthenticated)

	assert.Equal(t, Unauthenticated, r.State())
	assert.Empty(t, token.Get())
	assert.Equal(t, []State{Unauthenticated}, states)
}

func TestRejectedOldTokenKeepsNewerSession(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.AuthResponse{
			AccessToken: "new-token",
			TokenType:   "bearer",
			User:        models.User{ID: 1, Email: "ana@aura.app", Name: "Dra. Ana"},
		})
	})
	mux.HandleFunc("/agendamentos/", func(w http.ResponseWriter, _ *http.Request) {
		close(arrived)
		<-release
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Token inválido ou expirado"}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	token := &Token{}
	api := client.New(ts.URL, token)
	r := NewRouter(api, nil, nil)
	t.Cleanup(r.Close)

	api.SetAuthToken("old-token")
	done := make(chan error, 1)
	go func() {
		_, err := api.GetAgenda(context.Background())
		done <- err
	}()
	<-arrived

	_, err := r.Login(context.Background(), "ana@aura.app", "segredo")
	require.NoError(t, err)
	close(release)

	select {
	case err := <-done:
		require.ErrorIs(t, err, client.ErrUnauthenticated)
	case <-time.After(5 * time.Second):
		t.Fatal("agenda request did not return")
	}
	assert.Equal(t, Authenticated, r.State())
	assert.Equal(t, "new-token", token.Get())
}

func TestExpireMatchesSessionToken(t *testing.T) {
	r, _, token := newRouter(t)
	auth, err := r.Login(context.Background(), servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)

	r.Expire("")
	r.Expire("some-earlier-token")
	assert.Equal(t, Authenticated, r.State())
	assert.Equal(t, auth.AccessToken, token.Get())

	r.Expire(auth.AccessToken)
	assert.Equal(t, Unauthenticated, r.State())
	assert.Empty(t, token.Get())
}

func TestChangePasswordFollowsVault(t *testing.T) {
	r, _, _ := newRouter(t)
	ctx := context.Background()
	_, err := r.Login(ctx, servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)

	_, err = r.ChangePassword(ctx, "wrong", "nova-senha")
	require.Error(t, err)
	assert.Equal(t, Authenticated, r.State())
	creds, err := r.Vault().Credentials()
	require.NoError(t, err)
	assert.Equal(t, servertest.AdminPassword, creds.Password)

	resp, err := r.ChangePassword(ctx, servertest.AdminPassword, "nova-senha")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
	creds, err = r.Vault().Credentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{Email: servertest.AdminEmail, Password: "nova-senha"}, creds)

	r.Logout()
	_, err = r.Login(ctx, servertest.AdminEmail, "nova-senha")
	require.NoError(t, err)
}

func TestUnsubscribe(t *testing.T) {
	r, _, _ := newRouter(t)
	calls := 0
	unsubscribe := r.Subscribe(func(State) { calls++ })
	unsubscribe()

	_, err := r.Login(context.Background(), servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestVaultForget(t *testing.T) {
	var v Vault
	v.Remember(Credentials{Email: "a@b.c", Password: "secret"})
	v.Forget()
	_, err := v.Credentials()
	assert.ErrorIs(t, err, ErrNoCredentials)
}
