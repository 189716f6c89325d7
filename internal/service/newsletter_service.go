package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"newsletter/internal/domain"
	"newsletter/internal/email"
	"newsletter/internal/events"
	"newsletter/internal/repository"
)

// PublishReport resume el resultado de enviar una edicion.
type PublishReport struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// NewsletterService envia ediciones a los suscriptores confirmados.
type NewsletterService struct {
	logger       *zap.Logger
	repo         repository.SubscriptionRepository
	sender       email.Sender
	templates    *email.Templates
	publisher    events.Publisher
	emailTimeout time.Duration
}

func NewNewsletterService(
	logger *zap.Logger,
	repo repository.SubscriptionRepository,
	sender email.Sender,
	templates *email.Templates,
	publisher events.Publisher,
	emailTimeout time.Duration,
) *NewsletterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if emailTimeout <= 0 {
		emailTimeout = 10 * time.Second
	}
	return &NewsletterService{
		logger:       logger,
		repo:         repo,
		sender:       sender,
		templates:    templates,
		publisher:    publisher,
		emailTimeout: emailTimeout,
	}
}

// Publish envia la edicion una vez por suscriptor confirmado. Los fallos
// individuales se cuentan y se registran; no hay reintentos.
func (s *NewsletterService) Publish(ctx context.Context, issue domain.Issue) (PublishReport, error) {
	if strings.TrimSpace(issue.Title) == "" || strings.TrimSpace(issue.HTMLContent) == "" || strings.TrimSpace(issue.TextContent) == "" {
		return PublishReport{}, fmt.Errorf("%w: title, html_content and text_content are required", ErrValidation)
	}
	compiled, err := s.templates.CompileIssue(issue)
	if err != nil {
		return PublishReport{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	subscribers, err := s.repo.ListConfirmed(ctx)
	if err != nil {
		s.logger.Error("list confirmed subscribers failed", zap.Error(err))
		return PublishReport{}, fmt.Errorf("%w: list confirmed subscribers: %w", ErrStorage, err)
	}

	var report PublishReport
	for _, sub := range subscribers {
		to, err := domain.ParseSubscriberEmail(sub.Email)
		if err != nil {
			// la fila es anterior a las reglas de validacion actuales.
			s.logger.Warn("skipping confirmed subscriber with invalid email",
				zap.String("subscriber_id", sub.ID.String()),
				zap.Error(err),
			)
			report.Skipped++
			continue
		}
		if err := s.deliver(ctx, compiled, sub, to); err != nil {
			s.logger.Warn("deliver newsletter issue failed",
				zap.String("subscriber_id", sub.ID.String()),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		report.Delivered++
	}

	s.logger.Info("newsletter issue published",
		zap.String("title", issue.Title),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	event := events.NewsletterPublishedEvent{
		Title:       issue.Title,
		Delivered:   report.Delivered,
		Failed:      report.Failed,
		Skipped:     report.Skipped,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, events.QueueNewsletterPublished, event); err != nil {
		s.logger.Warn("publish newsletter event failed", zap.Error(err))
	}
	return report, nil
}

func (s *NewsletterService) deliver(ctx context.Context, issue *email.CompiledIssue, sub domain.Subscriber, to domain.SubscriberEmail) error {
	html, text, err := issue.Render(sub.Name, to.String())
	if err != nil {
		return fmt.Errorf("render issue: %w", err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.emailTimeout)
	defer cancel()
	return s.sender.Send(sendCtx, to, issue.Subject, html, text)
}
