// Package auth contiene la verificacion de credenciales del operador:
// el envoltorio Password que nunca se imprime y el hashing argon2id.
package auth

import (
	"fmt"
	"io"
)

const redacted = "[REDACTED]"

// Password envuelve el secreto recibido en el login. Solo puede compararse
// contra un hash (VerifyPassword) o hashearse (HashPassword); cualquier
// serializacion produce "[REDACTED]".
type Password struct {
	secret []byte
}

func NewPassword(raw string) Password {
	return Password{secret: []byte(raw)}
}

func (Password) String() string {
	return redacted
}

func (Password) GoString() string {
	return redacted
}

// Format cubre todos los verbos de fmt (%x, %q, %#v...).
func (Password) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

func (Password) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func (Password) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
