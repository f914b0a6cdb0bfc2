package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/aura-clinic/aura/internal/auth"
	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/storage"
)

const (
	// ResetTokenTTL bounds how long a forgot-password code stays valid.
	ResetTokenTTL = 30 * time.Minute

	minPasswordLength = 6
)

// AccountStore is the persistence the auth endpoints need.
type AccountStore interface {
	storage.UserStore
	storage.ResetTokenStore
}

// AuthHandler owns the /auth endpoints.
type AuthHandler struct {
	store      AccountStore
	tokens     *auth.TokenManager
	logger     *slog.Logger
	exposeCode bool
	now        func() time.Time
}

// NewAuthHandler constructs the handler. When exposeResetCode is set the
// forgot-password response includes the plain code, which is only
// acceptable outside production.
func NewAuthHandler(store AccountStore, tokens *auth.TokenManager, logger *slog.Logger, exposeResetCode bool) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, logger: logger, exposeCode: exposeResetCode, now: time.Now}
}

// Register attaches auth routes. authed guards routes needing a session and
// limit throttles credential-guessing endpoints.
func (h *AuthHandler) Register(r *mux.Router, authed, limit Middleware) {
	r.Handle("/auth/login", limit(http.HandlerFunc(h.handleLogin))).Methods(http.MethodPost)
	r.Handle("/auth/register", limit(http.HandlerFunc(h.handleRegister))).Methods(http.MethodPost)
	r.Handle("/auth/forgot-password", limit(http.HandlerFunc(h.handleForgotPassword))).Methods(http.MethodPost)
	r.Handle("/auth/reset-password", limit(http.HandlerFunc(h.handleResetPassword))).Methods(http.MethodPost)
	r.Handle("/auth/me", authed(http.HandlerFunc(h.handleMe))).Methods(http.MethodGet)
	r.Handle("/auth/change-password", authed(http.HandlerFunc(h.handleChangePassword))).Methods(http.MethodPost)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.store.FindUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Error("login: fetch user", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
			return
		}
		respond.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !user.Active {
		respond.Error(w, http.StatusForbidden, "inactive user")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		h.logger.Error("login: generate token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	user, err := h.store.FindUserByID(r.Context(), uid)
	if err != nil {
		// a valid token for a deleted user is still a failed authentication
		respond.Error(w, http.StatusUnauthorized, "invalid credentials or expired token")
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.CRM = strings.TrimSpace(req.CRM)
	if req.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respond.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		respond.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if _, err := h.store.FindUserByEmail(r.Context(), req.Email); err == nil {
		respond.Error(w, http.StatusBadRequest, "email already registered")
		return
	}
	if req.CRM != "" {
		if _, err := h.store.FindUserByCRM(r.Context(), req.CRM); err == nil {
			respond.Error(w, http.StatusBadRequest, "CRM already registered")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	created, err := h.store.CreateUser(r.Context(), models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         models.RoleDoctor,
		Phone:        strings.TrimSpace(req.Phone),
		CRM:          req.CRM,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusBadRequest, "user already exists")
		default:
			h.logger.Error("register: create user", "error", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.store.FindUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	hash, err := auth.HashPassword(code)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash token")
		return
	}
	expiresAt := h.now().UTC().Add(ResetTokenTTL)
	if _, err := h.store.CreateResetToken(r.Context(), models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
	}); err != nil {
		h.logger.Error("forgot-password: store token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to store token")
		return
	}

	resp := dto.ForgotPasswordResponse{
		Message:   "Recovery token generated. Send it to the user.",
		ExpiresAt: expiresAt,
	}
	if h.exposeCode {
		resp.Token = code
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respond.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	user, err := h.store.FindUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	tokens, err := h.store.ActiveResetTokens(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("reset-password: list tokens", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to read tokens")
		return
	}
	if len(tokens) == 0 {
		respond.Error(w, http.StatusBadRequest, "no active token found")
		return
	}

	now := h.now()
	valid := false
	for _, t := range tokens {
		if !t.ExpiresAt.Before(now) && auth.CheckPassword(t.TokenHash, strings.TrimSpace(req.Token)) {
			valid = true
			break
		}
	}
	if !valid {
		respond.Error(w, http.StatusBadRequest, "invalid or expired token")
		return
	}

	if !h.setPassword(w, r, user.ID, req.NewPassword) {
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "password reset successfully"})
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.store.FindUserByID(r.Context(), uid)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials or expired token")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		respond.Error(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respond.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if !h.setPassword(w, r, user.ID, req.NewPassword) {
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "password changed successfully"})
}

// setPassword stores a new hash and burns every outstanding reset code.
func (h *AuthHandler) setPassword(w http.ResponseWriter, r *http.Request, userID int64, password string) bool {
	hash, err := auth.HashPassword(password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return false
	}
	if err := h.store.UpdatePassword(r.Context(), userID, hash); err != nil {
		h.logger.Error("update password", "user_id", userID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to update password")
		return false
	}
	if err := h.store.InvalidateResetTokens(r.Context(), userID); err != nil {
		h.logger.Error("invalidate reset tokens", "user_id", userID, "error", err)
	}
	return true
}
