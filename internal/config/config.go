package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"newsletter/internal/domain"
)

// Environment identifica el entorno de ejecucion (selecciona el yaml a superponer).
type Environment string

const (
	EnvironmentLocal      Environment = "local"
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment acepta "local" o "production" sin distinguir mayusculas; vacio equivale a local.
func ParseEnvironment(raw string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(EnvironmentLocal):
		return EnvironmentLocal, nil
	case string(EnvironmentProduction):
		return EnvironmentProduction, nil
	default:
		return "", fmt.Errorf("%s is not a supported environment", raw)
	}
}

// Email providers soportados.
const (
	EmailProviderSMTP     = "smtp"
	EmailProviderSES      = "ses"
	EmailProviderDisabled = "disabled"
)

// Config centraliza la configuración del servicio.
type Config struct {
	Environment Environment `yaml:"-"`

	HTTPHost string `yaml:"http_host" env:"HTTP_HOST"`
	HTTPPort string `yaml:"http_port" env:"HTTP_PORT"`
	BaseURL  string `yaml:"base_url" env:"APP_BASE_URL"`

	DatabaseURL      string        `yaml:"database_url" env:"DATABASE_URL"`
	DBMaxConns       int           `yaml:"db_max_conns" env:"DB_MAX_CONNS"`
	DBMinConns       int           `yaml:"db_min_conns" env:"DB_MIN_CONNS"`
	DBAcquireTimeout time.Duration `yaml:"db_acquire_timeout" env:"DB_ACQUIRE_TIMEOUT"`
	DBRequireSSL     bool          `yaml:"db_require_ssl" env:"DB_REQUIRE_SSL"`
	RunMigrations    bool          `yaml:"run_migrations" env:"RUN_MIGRATIONS"`

	HMACSecret    string        `yaml:"hmac_secret" env:"HMAC_SECRET"`
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`
	SecureCookies bool          `yaml:"secure_cookies" env:"SECURE_COOKIES"`

	EmailProvider string        `yaml:"email_provider" env:"EMAIL_PROVIDER"`
	SenderEmail   string        `yaml:"sender_email" env:"SENDER_EMAIL"`
	SenderName    string        `yaml:"sender_name" env:"SENDER_NAME"`
	EmailTimeout  time.Duration `yaml:"email_timeout" env:"EMAIL_TIMEOUT"`

	SMTPHost   string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort   int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser   string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass   string `yaml:"smtp_pass" env:"SMTP_PASS"`
	SMTPUseTLS bool   `yaml:"smtp_use_tls" env:"SMTP_USE_TLS"`

	SESRegion    string `yaml:"ses_region" env:"SES_REGION"`
	SESAccessKey string `yaml:"ses_access_key" env:"SES_ACCESS_KEY"`
	SESSecretKey string `yaml:"ses_secret_key" env:"SES_SECRET_KEY"`

	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`

	AMQPURL string `yaml:"amqp_url" env:"AMQP_URL"`
}

// Defaults devuelve la configuración base antes de aplicar yaml y variables de entorno.
func Defaults() Config {
	return Config{
		Environment:      EnvironmentLocal,
		HTTPHost:         "0.0.0.0",
		HTTPPort:         "8000",
		BaseURL:          "http://127.0.0.1:8000",
		DBMaxConns:       10,
		DBMinConns:       1,
		DBAcquireTimeout: 2 * time.Second,
		SessionTTL:       12 * time.Hour,
		EmailProvider:    EmailProviderDisabled,
		EmailTimeout:     10 * time.Second,
		SMTPPort:         587,
	}
}

// LoadConfig carga la configuración en capas: defaults, configuration/base.yaml,
// configuration/<APP_ENVIRONMENT>.yaml y por ultimo variables de entorno.
func LoadConfig() (*Config, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configuration"
	}
	return LoadConfigFrom(dir)
}

// LoadConfigFrom es LoadConfig con un directorio de yaml explicito.
func LoadConfigFrom(dir string) (*Config, error) {
	environment, err := ParseEnvironment(os.Getenv("APP_ENVIRONMENT"))
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := mergeYAML(&cfg, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, err
	}
	if err := mergeYAML(&cfg, filepath.Join(dir, string(environment)+".yaml")); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.Environment = environment
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cfg.HMACSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa los campos obligatorios una vez aplicadas todas las capas.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("APP_BASE_URL is required"))
	}
	if len(c.HMACSecret) < 32 {
		errs = append(errs, errors.New("HMAC_SECRET must be at least 32 bytes"))
	}
	switch c.EmailProvider {
	case EmailProviderDisabled:
	case EmailProviderSMTP, EmailProviderSES:
		if _, err := domain.ParseSubscriberEmail(c.SenderEmail); err != nil {
			errs = append(errs, fmt.Errorf("SENDER_EMAIL: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}
	return errors.Join(errs...)
}

// Sender devuelve el remitente validado.
func (c *Config) Sender() (domain.SubscriberEmail, error) {
	return domain.ParseSubscriberEmail(c.SenderEmail)
}

// Addr devuelve host:port para el servidor HTTP.
func (c *Config) Addr() string {
	return c.HTTPHost + ":" + c.HTTPPort
}

func mergeYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
