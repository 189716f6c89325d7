package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"newsletter/internal/domain"
	"newsletter/internal/repository"
)

type mockSubscriptionRepo struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]domain.Subscriber
	tokens      map[string]uuid.UUID
	beginErr    error
	listErr     error
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{
		subscribers: make(map[uuid.UUID]domain.Subscriber),
		tokens:      make(map[string]uuid.UUID),
	}
}

func (m *mockSubscriptionRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.SubscriptionTx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	tx := &mockSubscriptionTx{
		subscribers: make(map[uuid.UUID]domain.Subscriber),
		tokens:      make(map[string]uuid.UUID),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range tx.subscribers {
		m.subscribers[id] = s
	}
	for tok, id := range tx.tokens {
		m.tokens[tok] = id
	}
	return nil
}

func (m *mockSubscriptionRepo) SubscriberIDByToken(_ context.Context, token string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	return id, nil
}

func (m *mockSubscriptionRepo) ConfirmSubscriber(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subscribers[id]
	if !ok || s.Status == domain.StatusConfirmed {
		return false, nil
	}
	s.Status = domain.StatusConfirmed
	m.subscribers[id] = s
	return true, nil
}

func (m *mockSubscriptionRepo) ListConfirmed(_ context.Context) ([]domain.Subscriber, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscriber
	for _, s := range m.subscribers {
		if s.Status == domain.StatusConfirmed {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubscriptionRepo) byEmail(email string) []domain.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Subscriber
	for _, s := range m.subscribers {
		if s.Email == email {
			out = append(out, s)
		}
	}
	return out
}

type mockSubscriptionTx struct {
	subscribers map[uuid.UUID]domain.Subscriber
	tokens      map[string]uuid.UUID
}

func (t *mockSubscriptionTx) InsertSubscriber(_ context.Context, sub domain.NewSubscriber, subscribedAt time.Time) (uuid.UUID, error) {
	id := uuid.New()
	t.subscribers[id] = domain.Subscriber{
		ID:           id,
		Name:         sub.Name.String(),
		Email:        sub.Email.String(),
		SubscribedAt: subscribedAt,
		Status:       domain.StatusPendingConfirmation,
	}
	return id, nil
}

func (t *mockSubscriptionTx) StoreToken(_ context.Context, subscriberID uuid.UUID, token string) error {
	t.tokens[token] = subscriberID
	return nil
}

type sentEmail struct {
	to   string
	html string
	text string
}

type mockEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *mockEmailSender) Send(_ context.Context, to domain.SubscriberEmail, _, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to.String(), html: htmlBody, text: textBody})
	return nil
}

type mockUserRepo struct {
	byName map[string]domain.StoredCredential
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byName: make(map[string]domain.StoredCredential)}
}

func (m *mockUserRepo) GetCredentials(_ context.Context, username string) (domain.StoredCredential, error) {
	c, ok := m.byName[username]
	if !ok {
		return domain.StoredCredential{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Operator, error) {
	for _, c := range m.byName {
		if c.UserID == id {
			return domain.Operator{ID: c.UserID, Username: c.Username}, nil
		}
	}
	return domain.Operator{}, pgx.ErrNoRows
}

func (m *mockUserRepo) Create(_ context.Context, username, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	m.byName[username] = domain.StoredCredential{UserID: id, Username: username, PasswordHash: passwordHash}
	return id, nil
}
