package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsletter/internal/domain"
)

// UserRepository define el contrato de persistencia para operadores.
type UserRepository interface {
	GetCredentials(ctx context.Context, username string) (domain.StoredCredential, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Operator, error)
	Create(ctx context.Context, username, passwordHash string) (uuid.UUID, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetCredentials(ctx context.Context, username string) (domain.StoredCredential, error) {
	const query = `
		SELECT user_id, username, password_hash
		FROM users
		WHERE username = $1
	`
	var c domain.StoredCredential
	err := r.pool.QueryRow(ctx, query, username).Scan(&c.UserID, &c.Username, &c.PasswordHash)
	if err != nil {
		return domain.StoredCredential{}, err
	}
	return c, nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Operator, error) {
	const query = `
		SELECT user_id, username
		FROM users
		WHERE user_id = $1
	`
	var o domain.Operator
	if err := r.pool.QueryRow(ctx, query, id).Scan(&o.ID, &o.Username); err != nil {
		return domain.Operator{}, err
	}
	return o, nil
}

func (r *PgUserRepository) Create(ctx context.Context, username, passwordHash string) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (user_id, username, password_hash)
		VALUES ($1, $2, $3)
	`
	id := uuid.New()
	if _, err := r.pool.Exec(ctx, query, id, username, passwordHash); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
