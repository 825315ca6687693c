package csrf_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarks/gradebook/core/csrf"
	"github.com/openmarks/gradebook/pkg/token"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	secret, err := token.New()
	require.NoError(t, err)

	t.Run("accepts matching header on mutating request", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("POST", "/api/class", nil)
		r.Header.Set(csrf.Header, secret.String())
		assert.NoError(t, csrf.Check(r, secret))
	})

	t.Run("rejects missing header on mutating request", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("POST", "/api/class", nil)
		assert.ErrorIs(t, csrf.Check(r, secret), csrf.ErrMissing)
	})

	t.Run("rejects mismatched header on mutating request", func(t *testing.T) {
		t.Parallel()
		other, err := token.New()
		require.NoError(t, err)

		r := httptest.NewRequest("PUT", "/api/class", nil)
		r.Header.Set(csrf.Header, other.String())
		assert.ErrorIs(t, csrf.Check(r, secret), csrf.ErrMissing)
	})

	t.Run("never rejects read-only requests", func(t *testing.T) {
		t.Parallel()
		for _, method := range []string{"GET", "HEAD"} {
			r := httptest.NewRequest(method, "/api/class", nil)
			assert.NoError(t, csrf.Check(r, secret), method)

			r.Header.Set(csrf.Header, "garbage")
			assert.NoError(t, csrf.Check(r, secret), method)
		}
	})
}

func TestCheckLogin(t *testing.T) {
	t.Parallel()

	t.Run("accepts the login literal", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("POST", "/api/login", nil)
		r.Header.Set(csrf.Header, csrf.LoginValue)
		assert.NoError(t, csrf.CheckLogin(r))
	})

	t.Run("rejects anything else", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("POST", "/api/login", nil)
		assert.ErrorIs(t, csrf.CheckLogin(r), csrf.ErrMissing)

		r.Header.Set(csrf.Header, "Login")
		assert.ErrorIs(t, csrf.CheckLogin(r), csrf.ErrMissing)
	})

	t.Run("read-only requests are exempt", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest("GET", "/api/login", nil)
		assert.NoError(t, csrf.CheckLogin(r))
	})
}
