package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-clinic/aura/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the clinic.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			nome TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			role TEXT NOT NULL DEFAULT 'doctor',
			telefone TEXT NOT NULL DEFAULT '',
			crm TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			hashed_password TEXT NOT NULL,
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_crm_unique_idx ON users (crm) WHERE crm IS NOT NULL;`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			is_used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS pacientes (
			id BIGSERIAL PRIMARY KEY,
			nome VARCHAR(120) NOT NULL,
			telefone VARCHAR(20) NOT NULL,
			email VARCHAR(255),
			cpf VARCHAR(11) UNIQUE,
			data_cadastro TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			responsavel_id BIGINT REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS pacientes_nome_idx ON pacientes (nome);`,
		`CREATE TABLE IF NOT EXISTS agendamentos (
			id BIGSERIAL PRIMARY KEY,
			paciente_id BIGINT NOT NULL REFERENCES pacientes(id) ON DELETE CASCADE,
			data_hora_inicio TIMESTAMPTZ NOT NULL,
			data_hora_fim TIMESTAMPTZ NOT NULL,
			tipo VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'agendado',
			valor_previsto NUMERIC(12,2),
			sala TEXT,
			observacoes TEXT,
			responsavel_id BIGINT REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS agendamentos_inicio_idx ON agendamentos (data_hora_inicio);`,
		`CREATE TABLE IF NOT EXISTS transacoes (
			id BIGSERIAL PRIMARY KEY,
			descricao VARCHAR(255) NOT NULL,
			valor NUMERIC(12,2) NOT NULL,
			tipo VARCHAR(20) NOT NULL,
			categoria VARCHAR(50) NOT NULL,
			data_competencia TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			pago BOOLEAN NOT NULL DEFAULT FALSE,
			responsavel_id BIGINT REFERENCES users(id)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// uniqueViolation maps Postgres unique constraint failures to ErrAlreadyExists.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// nullable turns an empty string into SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
