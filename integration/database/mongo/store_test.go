package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/openmarks/gradebook/core/credentials"
	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/integration/database/mongo"
)

// testDatabase connects to the instance named by MONGODB_TEST_URL and hands
// each test an isolated database that is dropped on cleanup.
func testDatabase(t *testing.T) *mongodrv.Database {
	t.Helper()

	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set, skipping mongo integration tests")
	}

	ctx := context.Background()
	cfg := mongo.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
		RetryAttempts:  1,
	}
	db, err := mongo.NewWithDatabase(ctx, cfg, "gradebook_test_"+uuid.NewString()[:8])
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})

	require.NoError(t, mongo.EnsureIndexes(ctx, db))
	return db
}

func TestSessionStore(t *testing.T) {
	db := testDatabase(t)
	store := mongo.NewSessionStore(db)
	ctx := context.Background()

	userUUID := uuid.New()
	now := time.Now().Truncate(time.Millisecond).UTC()

	t.Run("insert and find round-trip", func(t *testing.T) {
		sess, err := session.New(userUUID, true, 24*time.Hour, now)
		require.NoError(t, err)
		require.NoError(t, store.Insert(ctx, sess))

		found, err := store.Find(ctx, sess.Token)
		require.NoError(t, err)
		assert.True(t, sess.Token.Equal(found.Token))
		assert.Equal(t, userUUID, found.UserUUID)
		assert.True(t, found.Persistent)
		assert.True(t, found.Rotation.IsFresh())
		assert.Equal(t, sess.Expires.UTC(), found.Expires.UTC())
	})

	t.Run("duplicate token insert fails", func(t *testing.T) {
		sess, err := session.New(userUUID, false, time.Hour, now)
		require.NoError(t, err)
		require.NoError(t, store.Insert(ctx, sess))
		assert.ErrorIs(t, store.Insert(ctx, sess), session.ErrDuplicateToken)
	})

	t.Run("rotation links survive the codec", func(t *testing.T) {
		old, err := session.New(userUUID, false, time.Hour, now)
		require.NoError(t, err)
		next, err := session.New(userUUID, false, 24*time.Hour, now)
		require.NoError(t, err)
		next.Rotation = session.RotatedFrom(old.Token)
		old.Rotation = session.RotatingTo(next.Token)

		require.NoError(t, store.Insert(ctx, old))
		require.NoError(t, store.Insert(ctx, next))

		foundOld, err := store.Find(ctx, old.Token)
		require.NoError(t, err)
		succ, ok := foundOld.Rotation.Successor()
		require.True(t, ok)
		assert.True(t, next.Token.Equal(succ))

		foundNext, err := store.Find(ctx, next.Token)
		require.NoError(t, err)
		pred, ok := foundNext.Rotation.Predecessor()
		require.True(t, ok)
		assert.True(t, old.Token.Equal(pred))
	})

	t.Run("replace clears links", func(t *testing.T) {
		sess, err := session.New(userUUID, false, time.Hour, now)
		require.NoError(t, err)
		other, err := session.New(userUUID, false, time.Hour, now)
		require.NoError(t, err)
		sess.Rotation = session.RotatedFrom(other.Token)
		require.NoError(t, store.Insert(ctx, sess))

		sess.Rotation = session.Fresh()
		require.NoError(t, store.Replace(ctx, sess))

		found, err := store.Find(ctx, sess.Token)
		require.NoError(t, err)
		assert.True(t, found.Rotation.IsFresh())
	})

	t.Run("list orders by expires descending and respects the limit", func(t *testing.T) {
		listUser := uuid.New()
		for i := 0; i < 5; i++ {
			sess, err := session.New(listUser, false, time.Duration(i+1)*time.Hour, now)
			require.NoError(t, err)
			require.NoError(t, store.Insert(ctx, sess))
		}

		listed, err := store.ListByUser(ctx, listUser, false, 3)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.True(t, listed[0].Expires.After(listed[1].Expires))
		assert.True(t, listed[1].Expires.After(listed[2].Expires))
	})

	t.Run("delete expiring before cutoff", func(t *testing.T) {
		sweepUser := uuid.New()
		for i := 0; i < 4; i++ {
			sess, err := session.New(sweepUser, false, time.Duration(i+1)*time.Hour, now)
			require.NoError(t, err)
			require.NoError(t, store.Insert(ctx, sess))
		}

		deleted, err := store.DeleteExpiringBefore(ctx, sweepUser, false, now.Add(3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})

	t.Run("delete by user", func(t *testing.T) {
		sweepUser := uuid.New()
		for _, persistent := range []bool{false, true} {
			sess, err := session.New(sweepUser, persistent, time.Hour, now)
			require.NoError(t, err)
			require.NoError(t, store.Insert(ctx, sess))
		}

		deleted, err := store.DeleteByUser(ctx, sweepUser)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
	})
}

func TestUserStore(t *testing.T) {
	db := testDatabase(t)
	store := mongo.NewUserStore(db)
	svc := credentials.NewService(store)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "mongo_user", "Mon Go", "password1", credentials.RoleInstructor)
	require.NoError(t, err)

	t.Run("unique index maps to ErrDuplicateLogin", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "mongo_user", "Other", "password2", credentials.RoleLearner)
		assert.ErrorIs(t, err, credentials.ErrDuplicateLogin)
	})

	t.Run("find by login and uuid", func(t *testing.T) {
		byLogin, err := store.FindByLogin(ctx, "mongo_user")
		require.NoError(t, err)
		assert.Equal(t, user.UUID, byLogin.UUID)
		assert.NotEmpty(t, byLogin.PasswordHash)

		byUUID, err := store.FindByUUID(ctx, user.UUID)
		require.NoError(t, err)
		assert.Equal(t, "Mon Go", byUUID.Name)
	})

	t.Run("profile lookup excludes credentials", func(t *testing.T) {
		profile, err := store.FindProfile(ctx, user.UUID)
		require.NoError(t, err)
		assert.Equal(t, user.UUID, profile.UUID)
		assert.Equal(t, credentials.RoleInstructor, profile.Role)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user, "rotated pass"))

		updated, err := store.FindByUUID(ctx, user.UUID)
		require.NoError(t, err)
		ok, err := svc.ValidatePassword(updated, "rotated pass")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing user maps to ErrUserNotFound", func(t *testing.T) {
		_, err := store.FindByUUID(ctx, uuid.New())
		assert.ErrorIs(t, err, credentials.ErrUserNotFound)
		_, err = store.FindProfile(ctx, uuid.New())
		assert.ErrorIs(t, err, credentials.ErrUserNotFound)
	})
}
