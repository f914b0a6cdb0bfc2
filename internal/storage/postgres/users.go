package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aura-clinic/aura/internal/models"
)

const userColumns = `id, nome, email, role, telefone, crm, is_active, hashed_password, created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (nome, email, role, telefone, crm, is_active, hashed_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Name, user.Email, user.Role, user.Phone, nullable(user.CRM), user.Active, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, uniqueViolation(err)
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindUserByEmail fetches a user by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// FindUserByCRM fetches a user by medical registration number.
func (s *Store) FindUserByCRM(ctx context.Context, crm string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE crm = $1`, crm)
	return scanUser(row)
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET hashed_password = $1 WHERE id = $2`, passwordHash, userID)
	return err
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var crm *string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Phone, &crm, &user.Active, &user.PasswordHash, &user.CreatedAt); err != nil {
		return models.User{}, notFound(err)
	}
	user.CRM = deref(crm)
	return user, nil
}

func (s *Store) CreateResetToken(ctx context.Context, token models.PasswordResetToken) (models.PasswordResetToken, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		token.UserID, token.TokenHash, token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
	return token, err
}

func (s *Store) ActiveResetTokens(ctx context.Context, userID int64) ([]models.PasswordResetToken, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, token_hash, expires_at, is_used, created_at
		 FROM password_reset_tokens
		 WHERE user_id = $1 AND is_used = FALSE
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PasswordResetToken
	for rows.Next() {
		var t models.PasswordResetToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) InvalidateResetTokens(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE password_reset_tokens SET is_used = TRUE WHERE user_id = $1 AND is_used = FALSE`, userID)
	return err
}
