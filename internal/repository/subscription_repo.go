package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsletter/internal/db"
	"newsletter/internal/domain"
)

// SubscriptionRepository define el contrato de persistencia para suscripciones.
type SubscriptionRepository interface {
	// WithTx ejecuta fn dentro de una transaccion: commit si fn devuelve nil, rollback si no.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx SubscriptionTx) error) error
	SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, error)
	// ConfirmSubscriber devuelve true solo si la fila paso de pending_confirmation a confirmed.
	ConfirmSubscriber(ctx context.Context, id uuid.UUID) (bool, error)
	ListConfirmed(ctx context.Context) ([]domain.Subscriber, error)
}

// SubscriptionTx agrupa las escrituras que deben ser atomicas.
type SubscriptionTx interface {
	InsertSubscriber(ctx context.Context, sub domain.NewSubscriber, subscribedAt time.Time) (uuid.UUID, error)
	StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error
}

// PgSubscriptionRepository implementa SubscriptionRepository usando pgxpool.
type PgSubscriptionRepository struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

func NewPgSubscriptionRepository(pool *pgxpool.Pool, acquireTimeout time.Duration) *PgSubscriptionRepository {
	return &PgSubscriptionRepository{pool: pool, acquireTimeout: acquireTimeout}
}

func (r *PgSubscriptionRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx SubscriptionTx) error) error {
	return db.WithTx(ctx, r.pool, r.acquireTimeout, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgSubscriptionTx{tx: tx})
	})
}

func (r *PgSubscriptionRepository) SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, error) {
	const query = `
		SELECT subscriber_id
		FROM subscription_tokens
		WHERE subscription_token = $1
	`
	conn, err := r.acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer conn.Release()

	var id uuid.UUID
	if err := conn.QueryRow(ctx, query, token).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *PgSubscriptionRepository) ConfirmSubscriber(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		UPDATE subscriptions
		SET status = 'confirmed'
		WHERE id = $1 AND status = 'pending_confirmation'
	`
	conn, err := r.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// acquire toma una conexion del pool acotando solo la espera con acquireTimeout,
// igual que db.WithTx; la consulta sigue usando ctx.
func (r *PgSubscriptionRepository) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if r.acquireTimeout <= 0 {
		return r.pool.Acquire(ctx)
	}
	acquireCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	defer cancel()
	conn, err := r.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

func (r *PgSubscriptionRepository) ListConfirmed(ctx context.Context) ([]domain.Subscriber, error) {
	const query = `
		SELECT id, email, name, subscribed_at, status
		FROM subscriptions
		WHERE status = 'confirmed'
		ORDER BY subscribed_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Subscriber, error) {
		var s domain.Subscriber
		var status string
		err := row.Scan(&s.ID, &s.Email, &s.Name, &s.SubscribedAt, &status)
		s.Status = domain.SubscriptionStatus(status)
		return s, err
	})
}

type pgSubscriptionTx struct {
	tx pgx.Tx
}

// InsertSubscriber asigna un UUID nuevo; el llamador nunca lo elige.
func (t *pgSubscriptionTx) InsertSubscriber(ctx context.Context, sub domain.NewSubscriber, subscribedAt time.Time) (uuid.UUID, error) {
	const query = `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, 'pending_confirmation')
	`
	id := uuid.New()
	if _, err := t.tx.Exec(ctx, query, id, sub.Email.String(), sub.Name.String(), subscribedAt); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (t *pgSubscriptionTx) StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error {
	const query = `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`
	_, err := t.tx.Exec(ctx, query, token, subscriberID)
	return err
}
