package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// MaxSubscriberNameLength es el limite de graphemes para un nombre.
const MaxSubscriberNameLength = 256

const forbiddenNameCharacters = `/()"<>\{}`

var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidSubscriberName  = fmt.Errorf("%w: invalid subscriber name", ErrValidation)
	ErrInvalidSubscriberEmail = fmt.Errorf("%w: invalid subscriber email", ErrValidation)
)

var emailValidator = validator.New()

// SubscriberName es un nombre ya validado. Solo se construye via ParseSubscriberName.
type SubscriberName struct {
	value string
}

// ParseSubscriberName rechaza vacios, nombres de mas de 256 graphemes,
// caracteres de control y el conjunto / ( ) " < > \ { }.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, fmt.Errorf("%w: name is empty", ErrInvalidSubscriberName)
	}
	if uniseg.GraphemeClusterCount(raw) > MaxSubscriberNameLength {
		return SubscriberName{}, fmt.Errorf("%w: name is longer than %d characters", ErrInvalidSubscriberName, MaxSubscriberNameLength)
	}
	for _, r := range raw {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenNameCharacters, r) {
			return SubscriberName{}, fmt.Errorf("%w: name contains forbidden character %q", ErrInvalidSubscriberName, r)
		}
	}
	return SubscriberName{value: raw}, nil
}

func (n SubscriberName) String() string {
	return n.value
}

// SubscriberEmail es una direccion ya validada. Solo se construye via ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail valida la gramatica local@dominio y exige un punto en el dominio.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberEmail{}, fmt.Errorf("%w: email is empty", ErrInvalidSubscriberEmail)
	}
	if err := emailValidator.Var(raw, "required,email"); err != nil {
		return SubscriberEmail{}, fmt.Errorf("%w: %q is not a valid email", ErrInvalidSubscriberEmail, raw)
	}
	at := strings.LastIndexByte(raw, '@')
	host := raw[at+1:]
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return SubscriberEmail{}, fmt.Errorf("%w: %q has no valid domain", ErrInvalidSubscriberEmail, raw)
	}
	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}

// NewSubscriber es la unica forma en que un suscriptor entra al flujo de escritura.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// ParseNewSubscriber valida los campos crudos del formulario.
func ParseNewSubscriber(name, email string) (NewSubscriber, error) {
	parsedName, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	parsedEmail, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: parsedName, Email: parsedEmail}, nil
}

type SubscriptionStatus string

const (
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"
	StatusConfirmed           SubscriptionStatus = "confirmed"
)

// Subscriber es la fila persistida en subscriptions.
type Subscriber struct {
	ID           uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	SubscribedAt time.Time          `json:"subscribed_at"`
	Status       SubscriptionStatus `json:"status"`
}

// SubscriptionToken asocia un token de confirmacion con su suscriptor.
type SubscriptionToken struct {
	Token        string    `json:"-"`
	SubscriberID uuid.UUID `json:"subscriber_id"`
}
