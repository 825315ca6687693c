package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarks/gradebook/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestUserID(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	attr := logger.UserID(id)
	require.Equal(t, "user_id", attr.Key)
	assert.Equal(t, id.String(), attr.Value.String())

	empty := logger.UserID(uuid.Nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestDuration(t *testing.T) {
	t.Parallel()
	attr := logger.Duration(2 * time.Second)
	require.Equal(t, "duration", attr.Key)
	assert.Equal(t, 2*time.Second, attr.Value.Duration())
}

func TestHTTPAttrs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "method", logger.Method("GET").Key)
	assert.Equal(t, "path", logger.Path("/api/login").Key)
	assert.Equal(t, int64(403), logger.StatusCode(403).Value.Int64())
}
