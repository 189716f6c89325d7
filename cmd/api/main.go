package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"newsletter/internal/config"
	"newsletter/internal/db"
	"newsletter/internal/email"
	"newsletter/internal/events"
	apihttp "newsletter/internal/http"
	"newsletter/internal/redirect"
	"newsletter/internal/repository"
	"newsletter/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	newLogger := zap.NewProduction
	if cfg.Environment == config.EnvironmentLocal {
		newLogger = zap.NewDevelopment
	}
	logger, _ := newLogger()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.MigratePool(ctx, pool); err != nil {
			logger.Fatal("db migrations", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	codec, err := redirect.NewCodec([]byte(cfg.HMACSecret))
	if err != nil {
		logger.Fatal("redirect codec", zap.Error(err))
	}
	templates, err := email.NewTemplates()
	if err != nil {
		logger.Fatal("email templates", zap.Error(err))
	}

	emailSender := newEmailSender(ctx, cfg, logger)
	publisher := events.NewNopPublisher()
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL)
	}

	var sessionStore service.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient)
		}
		cancel()
	}
	sessions := service.NewSessionService(cfg.SessionSecret, cfg.SessionTTL, sessionStore)

	subscriptionRepo := repository.NewPgSubscriptionRepository(pool, cfg.DBAcquireTimeout)
	userRepo := repository.NewPgUserRepository(pool)

	subscriptionSvc := service.NewSubscriptionService(logger, subscriptionRepo, emailSender, templates, publisher, cfg.BaseURL, cfg.EmailTimeout)
	authSvc := service.NewAuthService(logger, userRepo)
	newsletterSvc := service.NewNewsletterService(logger, subscriptionRepo, emailSender, templates, publisher, cfg.EmailTimeout)

	router := apihttp.NewRouter(
		logger,
		apihttp.NewHealthHandler(logger, func(ctx context.Context) error { return db.Ping(ctx, pool) }),
		apihttp.NewSubscriptionHandler(logger, subscriptionSvc),
		apihttp.NewLoginHandler(logger, authSvc, sessions, codec, cfg.SecureCookies),
		apihttp.NewAdminHandler(logger, authSvc, newsletterSvc),
		sessions,
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("addr", cfg.Addr()),
		zap.String("environment", string(cfg.Environment)),
		zap.String("email_provider", cfg.EmailProvider),
		zap.Int32("db_max_conns", pool.Config().MaxConns),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newEmailSender elige el transporte segun EMAIL_PROVIDER; si falla, los envios devuelven error.
func newEmailSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.EmailProvider == config.EmailProviderDisabled {
		return email.NewDisabledSender("email sender not configured")
	}
	from, err := cfg.Sender()
	if err != nil {
		logger.Warn("invalid sender email", zap.Error(err))
		return email.NewDisabledSender("invalid sender email")
	}

	switch cfg.EmailProvider {
	case config.EmailProviderSMTP:
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, from, cfg.SenderName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
			return email.NewDisabledSender("smtp sender init failed")
		}
		return sender
	case config.EmailProviderSES:
		sender, err := email.NewSESSender(ctx, cfg.SESRegion, cfg.SESAccessKey, cfg.SESSecretKey, from, cfg.SenderName)
		if err != nil {
			logger.Warn("ses sender init failed", zap.Error(err))
			return email.NewDisabledSender("ses sender init failed")
		}
		return sender
	default:
		return email.NewDisabledSender("unknown email provider")
	}
}
