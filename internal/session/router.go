// Package session owns the authentication state of the client and decides
// which screen is shown.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/aura-clinic/aura/internal/models/dto"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Authenticator is the part of the API client the router drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (dto.AuthResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (dto.MessageResponse, error)
	ClearAuthToken()
	OnUnauthenticated(fn func(sentToken string)) (unsubscribe func())
}

// Router switches between the login and home screens. It starts
// Unauthenticated on every process start.
type Router struct {
	api    Authenticator
	vault  *Vault
	logger *slog.Logger

	mu    sync.Mutex
	state State
	auth  dto.AuthResponse

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)

	unsubscribe func()
}

// NewRouter wires the router to api. A 401 on a request that carried the
// current session token forces a logout.
func NewRouter(api Authenticator, vault *Vault, logger *slog.Logger) *Router {
	if vault == nil {
		vault = &Vault{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Router{
		api:    api,
		vault:  vault,
		logger: logger,
		subs:   make(map[int]func(State)),
	}
	r.unsubscribe = api.OnUnauthenticated(r.Expire)
	return r
}

// Close detaches the router from the client.
func (r *Router) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *Router) Vault() *Vault { return r.vault }

func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Auth returns the login response of the current session and whether one
// exists.
func (r *Router) Auth() (dto.AuthResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.auth, r.state == Authenticated
}

// Login authenticates with the backend. The client stores the token; the
// router keeps the response, remembers the credentials for biometric unlock
// and switches to Authenticated.
func (r *Router) Login(ctx context.Context, email, password string) (dto.AuthResponse, error) {
	auth, err := r.api.Login(ctx, email, password)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	r.vault.Remember(Credentials{Email: email, Password: password})

	r.mu.Lock()
	r.auth = auth
	r.state = Authenticated
	r.mu.Unlock()

	r.logger.Info("session started", "user_id", auth.User.ID)
	r.publish(Authenticated)
	return auth, nil
}

// Logout clears the token and discards the session.
func (r *Router) Logout() {
	r.api.ClearAuthToken()

	r.mu.Lock()
	was := r.state
	r.auth = dto.AuthResponse{}
	r.state = Unauthenticated
	r.mu.Unlock()

	if was == Authenticated {
		r.logger.Info("session ended")
		r.publish(Unauthenticated)
	}
}

// Expire ends the session when sentToken is its token. A rejection of a
// token from an earlier session is ignored.
func (r *Router) Expire(sentToken string) {
	r.mu.Lock()
	current := r.state == Authenticated && sentToken != "" && sentToken == r.auth.AccessToken
	r.mu.Unlock()
	if !current {
		r.logger.Debug("ignoring rejection of a superseded token")
		return
	}
	r.logger.Warn("session rejected by server")
	r.Logout()
}

// ChangePassword changes the password of the signed-in user. Credentials
// kept for biometric unlock follow the new password.
func (r *Router) ChangePassword(ctx context.Context, current, next string) (dto.MessageResponse, error) {
	resp, err := r.api.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return dto.MessageResponse{}, err
	}
	if creds, err := r.vault.Credentials(); err == nil {
		auth, _ := r.Auth()
		if strings.EqualFold(creds.Email, auth.User.Email) {
			r.vault.Remember(Credentials{Email: creds.Email, Password: next})
		}
	}
	r.logger.Info("password changed")
	return resp, nil
}

// Subscribe registers fn for state transitions. fn runs outside the
// router's lock.
func (r *Router) Subscribe(fn func(State)) (unsubscribe func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Router) publish(s State) {
	r.subMu.Lock()
	fns := make([]func(State), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
