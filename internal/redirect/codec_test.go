package redirect

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("super-long-and-secret-random-key-needed-to-verify-message-integrity"))
	require.NoError(t, err)
	return c
}

func flip(s string, i int) string {
	replacement := byte('a')
	if s[i] == 'a' {
		replacement = 'b'
	}
	return s[:i] + string(replacement) + s[i+1:]
}

func TestCodecRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	for _, msg := range []string{"Authentication failed", "Something went wrong", "", "a&b=c?d#é"} {
		signed := c.Encode(msg)
		got, err := c.DecodeAndVerify(signed.Query, signed.Tag)
		require.NoError(t, err, msg)
		assert.Equal(t, msg, got)
	}
}

func TestCodecRejectsAnySingleCharacterChange(t *testing.T) {
	c := newTestCodec(t)
	signed := c.Encode("Authentication failed")

	for i := range signed.Query {
		_, err := c.DecodeAndVerify(flip(signed.Query, i), signed.Tag)
		assert.ErrorIs(t, err, ErrTampered, "query position %d", i)
	}
	for i := range signed.Tag {
		_, err := c.DecodeAndVerify(signed.Query, flip(signed.Tag, i))
		assert.ErrorIs(t, err, ErrTampered, "tag position %d", i)
	}
}

func TestCodecRejectsTamperingVariants(t *testing.T) {
	c := newTestCodec(t)
	signed := c.Encode("Authentication failed")

	cases := map[string][2]string{
		"truncated query":     {signed.Query[:len(signed.Query)-3], signed.Tag},
		"substituted message": {"error=" + url.QueryEscape("Click evil.example"), signed.Tag},
		"empty tag":           {signed.Query, ""},
		"truncated tag":       {signed.Query, signed.Tag[:10]},
		"uppercase tag":       {signed.Query, strings.ToUpper(signed.Tag)},
	}
	for name, tc := range cases {
		_, err := c.DecodeAndVerify(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrTampered, name)
	}
}

func TestCodecRejectsTagFromAnotherKey(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec([]byte("another-key"))
	require.NoError(t, err)

	signed := other.Encode("Authentication failed")
	_, err = c.DecodeAndVerify(signed.Query, signed.Tag)
	assert.ErrorIs(t, err, ErrTampered)
}

func TestSignedLocation(t *testing.T) {
	c := newTestCodec(t)
	signed := c.Encode("Authentication failed")

	location, err := url.Parse(signed.Location("/login"))
	require.NoError(t, err)
	assert.Equal(t, "/login", location.Path)
	assert.Equal(t, signed.Tag, location.Query().Get(TagParam))

	sep := "&" + TagParam + "="
	i := strings.LastIndex(location.RawQuery, sep)
	require.Greater(t, i, 0)
	msg, err := c.DecodeAndVerify(location.RawQuery[:i], location.RawQuery[i+len(sep):])
	require.NoError(t, err)
	assert.Equal(t, "Authentication failed", msg)
}

func TestNewCodecRequiresKey(t *testing.T) {
	_, err := NewCodec(nil)
	assert.ErrorIs(t, err, ErrEmptyKey)
}
