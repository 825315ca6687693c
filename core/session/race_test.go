package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarks/gradebook/core/session"
)

// TestRotationHerd verifies that N concurrent resolutions inside the renewal
// window initiate exactly one rotation. Each resolution runs in its own
// transaction, matching how the coordinator drives the resolver in
// production.
func TestRotationHerd(t *testing.T) {
	t.Parallel()

	f := newResolverFixture(t)
	sess := f.seed(t, false, 11*time.Hour)

	const racers = 64

	var wg sync.WaitGroup
	wg.Add(racers)
	cookies := make([]session.CookieUpdate, racers)
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		i := i
		go func() {
			defer wg.Done()
			errs[i] = f.sessions.WithinTx(context.Background(), func(ctx context.Context) error {
				identity, updates, err := f.resolver.Resolve(ctx, sess.Token.String())
				if err != nil {
					return err
				}
				if len(updates) > 0 {
					cookies[i] = updates[0]
				}
				_ = identity
				return nil
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "racer %d", i)
	}

	// Exactly one successor row exists: the old row plus one new row.
	assert.Equal(t, 2, f.sessions.Len())

	current, err := f.sessions.Find(context.Background(), sess.Token)
	require.NoError(t, err)
	succTok, ok := current.Rotation.Successor()
	require.True(t, ok)

	// Every racer was steered at the same winner.
	for i, cookie := range cookies {
		require.False(t, cookie.Clear, "racer %d", i)
		require.False(t, cookie.Token.IsZero(), "racer %d saw no cookie directive", i)
		assert.True(t, succTok.Equal(cookie.Token), "racer %d diverged", i)
	}
}
