package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aura-clinic/aura/internal/auth"
	"github.com/aura-clinic/aura/internal/config"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/storage"
)

// EnsureDefaultAdmin creates the bootstrap account on first start so that a
// fresh deployment can be logged into.
func EnsureDefaultAdmin(ctx context.Context, cfg config.Config, store storage.UserStore, logger *slog.Logger) error {
	_, err := store.FindUserByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("look up default admin: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}
	_, err = store.CreateUser(ctx, models.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Role:         models.RoleDoctor,
		Active:       true,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// another replica won the race
		return nil
	}
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	logger.Info("default admin created", "email", cfg.AdminEmail)
	return nil
}
