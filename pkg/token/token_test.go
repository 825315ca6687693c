package token_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarks/gradebook/pkg/token"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("generates tokens of the configured size", func(t *testing.T) {
		t.Parallel()

		tok, err := token.New()
		require.NoError(t, err)
		assert.Len(t, []byte(tok), token.Size)
	})

	t.Run("successive tokens differ", func(t *testing.T) {
		t.Parallel()

		a, err := token.New()
		require.NoError(t, err)
		b, err := token.New()
		require.NoError(t, err)
		assert.False(t, a.Equal(b))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("round-trips through the wire form", func(t *testing.T) {
		t.Parallel()

		tok, err := token.New()
		require.NoError(t, err)

		parsed, err := token.Parse(tok.String())
		require.NoError(t, err)
		assert.True(t, tok.Equal(parsed))
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		t.Parallel()

		_, err := token.Parse("not base64!!!")
		assert.Error(t, err)
	})
}

func TestEqual(t *testing.T) {
	t.Parallel()

	raw := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))
	a, err := token.Parse(raw)
	require.NoError(t, err)
	b, err := token.Parse(raw)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(a[:8]))
	assert.True(t, token.Token(nil).IsZero())
	assert.False(t, a.IsZero())
}
