package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"newsletter/internal/domain"
	"newsletter/internal/email"
	"newsletter/internal/events"
	"newsletter/internal/repository"
)

var (
	ErrValidation          = domain.ErrValidation
	ErrStorage             = errors.New("storage error")
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
	ErrUnknownToken        = errors.New("unknown subscription token")
)

// SubscriptionService registra suscriptores y confirma sus tokens.
type SubscriptionService struct {
	logger       *zap.Logger
	repo         repository.SubscriptionRepository
	sender       email.Sender
	templates    *email.Templates
	publisher    events.Publisher
	baseURL      string
	emailTimeout time.Duration

	now      func() time.Time
	newToken func() (string, error)
}

func NewSubscriptionService(
	logger *zap.Logger,
	repo repository.SubscriptionRepository,
	sender email.Sender,
	templates *email.Templates,
	publisher events.Publisher,
	baseURL string,
	emailTimeout time.Duration,
) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if emailTimeout <= 0 {
		emailTimeout = 10 * time.Second
	}
	return &SubscriptionService{
		logger:       logger,
		repo:         repo,
		sender:       sender,
		templates:    templates,
		publisher:    publisher,
		baseURL:      strings.TrimRight(baseURL, "/"),
		emailTimeout: emailTimeout,
		now:          time.Now,
		newToken:     GenerateSubscriptionToken,
	}
}

// Subscribe valida el formulario y delega en Register.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, emailAddr string) error {
	sub, err := domain.ParseNewSubscriber(name, emailAddr)
	if err != nil {
		return err
	}
	return s.Register(ctx, sub)
}

// Register inserta suscriptor y token en una sola transaccion y, tras el commit,
// envia el correo de confirmacion. Un fallo del envio no deshace la fila.
func (s *SubscriptionService) Register(ctx context.Context, sub domain.NewSubscriber) error {
	var token string
	// una vez iniciada, la escritura no depende de que el cliente siga conectado.
	txCtx := context.WithoutCancel(ctx)
	err := s.repo.WithTx(txCtx, func(ctx context.Context, tx repository.SubscriptionTx) error {
		id, err := tx.InsertSubscriber(ctx, sub, s.now().UTC())
		if err != nil {
			return fmt.Errorf("insert subscriber: %w", err)
		}
		token, err = s.newToken()
		if err != nil {
			return fmt.Errorf("generate subscription token: %w", err)
		}
		if err := tx.StoreToken(ctx, id, token); err != nil {
			return fmt.Errorf("store subscription token: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("register subscriber failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := s.sendConfirmation(ctx, sub.Email, token); err != nil {
		s.logger.Warn("send confirmation email failed",
			zap.Error(err),
			zap.String("email", sub.Email.String()),
		)
		return fmt.Errorf("%w: %w", ErrEmailDeliveryFailed, err)
	}
	return nil
}

func (s *SubscriptionService) sendConfirmation(ctx context.Context, to domain.SubscriberEmail, token string) error {
	if s.sender == nil || s.templates == nil {
		return errors.New("email sender not configured")
	}
	html, text, err := s.templates.Confirmation(s.ConfirmationLink(token))
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.emailTimeout)
	defer cancel()
	return s.sender.Send(sendCtx, to, email.ConfirmationSubject, html, text)
}

// ConfirmationLink arma {base}/subscriptions/confirm?subscription_token={token}.
func (s *SubscriptionService) ConfirmationLink(token string) string {
	return s.baseURL + "/subscriptions/confirm?subscription_token=" + token
}

// Confirm marca como confirmado al suscriptor del token. Repetirlo es idempotente
// y solo la transicion real publica el evento.
func (s *SubscriptionService) Confirm(ctx context.Context, token string) error {
	if !IsSubscriptionToken(token) {
		return ErrUnknownToken
	}
	id, err := s.repo.SubscriberIDByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnknownToken
		}
		s.logger.Error("lookup subscription token failed", zap.Error(err))
		return fmt.Errorf("%w: lookup subscription token: %w", ErrStorage, err)
	}

	changed, err := s.repo.ConfirmSubscriber(ctx, id)
	if err != nil {
		s.logger.Error("confirm subscriber failed", zap.Error(err), zap.String("subscriber_id", id.String()))
		return fmt.Errorf("%w: confirm subscriber: %w", ErrStorage, err)
	}
	if !changed {
		return nil
	}

	event := events.SubscriptionConfirmedEvent{
		SubscriberID: id,
		ConfirmedAt:  s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, events.QueueSubscriptionConfirmed, event); err != nil {
		s.logger.Warn("publish subscription confirmed failed", zap.Error(err), zap.String("subscriber_id", id.String()))
	}
	return nil
}
