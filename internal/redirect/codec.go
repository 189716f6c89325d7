// Package redirect firma mensajes de error que viajan en la query de un redirect,
// para que el cliente no pueda falsificarlos ni reusarlos con otro texto.
package redirect

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
)

const (
	ErrorParam = "error"
	TagParam   = "tag"
)

var (
	ErrTampered = errors.New("redirect query tampered")
	ErrEmptyKey = errors.New("redirect signing key is empty")
)

// Codec guarda la clave HMAC del proceso; se crea una vez al arrancar.
type Codec struct {
	key []byte
}

func NewCodec(key []byte) (*Codec, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Codec{key: k}, nil
}

// Signed es la query firmada: Query es "error=<mensaje urlencoded>" y Tag el HMAC-SHA256 en hex.
type Signed struct {
	Query string
	Tag   string
}

// Location arma "<path>?error=...&tag=...".
func (s Signed) Location(path string) string {
	return path + "?" + s.Query + "&" + TagParam + "=" + s.Tag
}

// Encode firma exactamente la query que se envia al cliente.
func (c *Codec) Encode(message string) Signed {
	query := ErrorParam + "=" + url.QueryEscape(message)
	return Signed{Query: query, Tag: c.sign(query)}
}

// DecodeAndVerify recalcula el tag sobre la query recibida y devuelve el mensaje.
// Cualquier diferencia devuelve ErrTampered y el mensaje se descarta.
func (c *Codec) DecodeAndVerify(query, tag string) (string, error) {
	expected := c.sign(query)
	if !hmac.Equal([]byte(expected), []byte(tag)) {
		return "", ErrTampered
	}
	values, err := url.ParseQuery(query)
	if err != nil || !values.Has(ErrorParam) {
		return "", ErrTampered
	}
	return values.Get(ErrorParam), nil
}

func (c *Codec) sign(query string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
