package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionService emite y valida la cookie de sesion de los operadores.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  SessionStore
}

type SessionClaims struct {
	OperatorID string `json:"oid"`
	jwt.RegisteredClaims
}

// Session es un token recien emitido.
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

func NewSessionService(secret string, ttl time.Duration, store SessionStore) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "newsletter",
		store:  store,
	}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Issue(operatorID uuid.UUID) (Session, error) {
	if len(s.secret) == 0 || operatorID == uuid.Nil {
		return Session{}, ErrSessionInvalid
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	jti := uuid.NewString()
	claims := SessionClaims{
		OperatorID: operatorID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   operatorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.Store(jti, operatorID, s.ttl); err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// Validate comprueba firma, emisor y que el jti no haya sido revocado.
func (s *SessionService) Validate(token string) (uuid.UUID, error) {
	claims, err := s.parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return uuid.Nil, ErrSessionInvalid
	}
	id, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		return uuid.Nil, ErrSessionInvalid
	}
	return id, nil
}

func (s *SessionService) Revoke(token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

func (s *SessionService) parse(token string) (SessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return SessionClaims{}, ErrSessionInvalid
	}
	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionExpired
		}
		return SessionClaims{}, ErrSessionInvalid
	}
	if !s.isValidClaims(claims) {
		return SessionClaims{}, ErrSessionInvalid
	}
	return claims, nil
}

func (s *SessionService) isValidClaims(claims SessionClaims) bool {
	if strings.TrimSpace(claims.OperatorID) == "" || strings.TrimSpace(claims.ID) == "" {
		return false
	}
	if claims.Subject != claims.OperatorID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
