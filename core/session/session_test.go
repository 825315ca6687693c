package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/pkg/token"
)

func TestNew(t *testing.T) {
	t.Parallel()

	now := time.Now()
	userUUID := uuid.New()

	sess, err := session.New(userUUID, false, 24*time.Hour, now)
	require.NoError(t, err)

	assert.Len(t, []byte(sess.Token), token.Size)
	assert.Len(t, []byte(sess.CSRFSecret), token.Size)
	assert.False(t, sess.Token.Equal(sess.CSRFSecret))
	assert.Equal(t, userUUID, sess.UserUUID)
	assert.Equal(t, now.Add(24*time.Hour), sess.Expires)
	assert.False(t, sess.Persistent)
	assert.True(t, sess.Rotation.IsFresh())
}

func TestExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sess, err := session.New(uuid.New(), false, time.Hour, now)
	require.NoError(t, err)

	assert.False(t, sess.Expired(now))
	assert.False(t, sess.Expired(now.Add(59*time.Minute)))
	assert.True(t, sess.Expired(now.Add(time.Hour)), "expiry instant counts as expired")
	assert.True(t, sess.Expired(now.Add(2*time.Hour)))
}

func TestRotationStates(t *testing.T) {
	t.Parallel()

	tok, err := token.New()
	require.NoError(t, err)

	t.Run("fresh has no links", func(t *testing.T) {
		t.Parallel()
		r := session.Fresh()
		assert.True(t, r.IsFresh())
		_, ok := r.Predecessor()
		assert.False(t, ok)
		_, ok = r.Successor()
		assert.False(t, ok)
	})

	t.Run("rotated-from exposes only the predecessor", func(t *testing.T) {
		t.Parallel()
		r := session.RotatedFrom(tok)
		assert.False(t, r.IsFresh())
		pred, ok := r.Predecessor()
		require.True(t, ok)
		assert.True(t, tok.Equal(pred))
		_, ok = r.Successor()
		assert.False(t, ok)
	})

	t.Run("rotating-to exposes only the successor", func(t *testing.T) {
		t.Parallel()
		r := session.RotatingTo(tok)
		assert.False(t, r.IsFresh())
		succ, ok := r.Successor()
		require.True(t, ok)
		assert.True(t, tok.Equal(succ))
		_, ok = r.Predecessor()
		assert.False(t, ok)
	})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := session.DefaultConfig()

	assert.Equal(t, 24*time.Hour, cfg.Lifetime(false))
	assert.Equal(t, 365*24*time.Hour, cfg.Lifetime(true))
	assert.Equal(t, 12*time.Hour, cfg.RenewWithin(false))
	assert.Equal(t, 24*time.Hour, cfg.RenewWithin(true))
	assert.Equal(t, 20, cfg.MaxPerUser)
}
