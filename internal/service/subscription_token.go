package service

import (
	"crypto/rand"
)

const (
	SubscriptionTokenLength = 25
	tokenAlphabet           = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// mayor multiplo de 62 que cabe en un byte; los bytes >= 248 se descartan para no sesgar.
	tokenRejectThreshold = 248
)

// GenerateSubscriptionToken devuelve 25 caracteres alfanumericos uniformes leidos de crypto/rand.
func GenerateSubscriptionToken() (string, error) {
	out := make([]byte, 0, SubscriptionTokenLength)
	buf := make([]byte, SubscriptionTokenLength*2)
	for len(out) < SubscriptionTokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= tokenRejectThreshold {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == SubscriptionTokenLength {
				break
			}
		}
	}
	return string(out), nil
}

// IsSubscriptionToken indica si s tiene el formato de un token emitido.
func IsSubscriptionToken(s string) bool {
	if len(s) != SubscriptionTokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
