package sessiontransport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/core/sessiontransport"
)

func TestName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "session", sessiontransport.NewCodec(false).Name())
	assert.Equal(t, "__Secure-session", sessiontransport.NewCodec(true).Name())
}

func TestConfig(t *testing.T) {
	t.Parallel()

	assert.False(t, sessiontransport.Config{Environment: "development"}.IsProduction())
	assert.True(t, sessiontransport.Config{Environment: "production"}.IsProduction())
}

func TestRender(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	newUpdate := func(t *testing.T, persistent bool) session.CookieUpdate {
		t.Helper()
		sess, err := session.New(uuid.New(), persistent, 24*time.Hour, now)
		require.NoError(t, err)
		return session.SetCookie(sess)
	}

	t.Run("transient set-cookie", func(t *testing.T) {
		t.Parallel()
		codec := sessiontransport.NewCodec(false)
		update := newUpdate(t, false)

		cookie := codec.Render(update)
		assert.Equal(t, "session", cookie.Name)
		assert.Equal(t, update.Token.String(), cookie.Value)
		assert.Equal(t, "/", cookie.Path)
		assert.True(t, cookie.HttpOnly)
		assert.False(t, cookie.Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.True(t, cookie.Expires.IsZero(), "transient cookies carry no Expires")
	})

	t.Run("persistent set-cookie carries Expires", func(t *testing.T) {
		t.Parallel()
		codec := sessiontransport.NewCodec(false)
		update := newUpdate(t, true)

		cookie := codec.Render(update)
		assert.Equal(t, now.Add(24*time.Hour), cookie.Expires)
	})

	t.Run("production set-cookie is secure-prefixed", func(t *testing.T) {
		t.Parallel()
		codec := sessiontransport.NewCodec(true)

		cookie := codec.Render(newUpdate(t, false))
		assert.Equal(t, "__Secure-session", cookie.Name)
		assert.True(t, cookie.Secure)
	})

	t.Run("clear directive", func(t *testing.T) {
		t.Parallel()
		codec := sessiontransport.NewCodec(false)

		cookie := codec.Render(session.ClearCookie())
		assert.Equal(t, "session", cookie.Name)
		assert.Equal(t, time.Unix(0, 0).UTC(), cookie.Expires.UTC())
		assert.Equal(t, -1, cookie.MaxAge)
		assert.True(t, cookie.HttpOnly)
	})
}

func TestReadWrite(t *testing.T) {
	t.Parallel()

	codec := sessiontransport.NewCodec(false)
	now := time.Now()

	sess, err := session.New(uuid.New(), false, time.Hour, now)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	codec.Write(w, []session.CookieUpdate{session.SetCookie(sess)})

	resp := w.Result()
	require.Len(t, resp.Cookies(), 1)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(resp.Cookies()[0])
	assert.Equal(t, sess.Token.String(), codec.Read(r))

	t.Run("absent cookie reads as empty", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/", nil)
		assert.Empty(t, codec.Read(r))
	})
}
