package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"newsletter/internal/auth"
	"newsletter/internal/domain"
	"newsletter/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthUnexpected     = errors.New("unexpected authentication error")
)

// AuthService valida credenciales de operadores.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	params auth.Params
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{logger: logger, users: users, params: auth.DefaultParams}
}

// ValidateCredentials devuelve el id del operador. Un usuario inexistente tambien
// paga una verificacion argon2 contra auth.DummyHash y recibe el mismo error que
// una contraseña incorrecta.
func (s *AuthService) ValidateCredentials(ctx context.Context, username string, password auth.Password) (uuid.UUID, error) {
	userID := uuid.Nil
	expectedHash := auth.DummyHash

	cred, err := s.users.GetCredentials(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		userID = cred.UserID
		expectedHash = cred.PasswordHash
	case errors.Is(err, pgx.ErrNoRows):
	default:
		s.logger.Error("load credentials failed", zap.Error(err))
		return uuid.Nil, fmt.Errorf("%w: load credentials: %w", ErrAuthUnexpected, err)
	}

	if err := auth.VerifyPassword(password, expectedHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return uuid.Nil, ErrInvalidCredentials
		}
		s.logger.Error("verify password failed", zap.Error(err), zap.String("username", username))
		return uuid.Nil, fmt.Errorf("%w: %w", ErrAuthUnexpected, err)
	}
	if userID == uuid.Nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return userID, nil
}

// CreateOperator hashea la contraseña con los parametros vigentes y guarda el usuario.
func (s *AuthService) CreateOperator(ctx context.Context, username string, password auth.Password) (domain.Operator, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Operator{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	hash, err := auth.HashPassword(password, s.params)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.Create(ctx, username, hash)
	if err != nil {
		return domain.Operator{}, fmt.Errorf("%w: create operator: %w", ErrStorage, err)
	}
	return domain.Operator{ID: id, Username: username}, nil
}

// Operator carga el operador de una sesion valida.
func (s *AuthService) Operator(ctx context.Context, id uuid.UUID) (domain.Operator, error) {
	op, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Operator{}, ErrInvalidCredentials
		}
		return domain.Operator{}, fmt.Errorf("%w: load operator: %w", ErrStorage, err)
	}
	return op, nil
}
