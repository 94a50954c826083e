package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/apperror"
)

func newTestRepository(t *testing.T) SessionRepository {
	t.Helper()

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionRepository(client)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a session", func(t *testing.T) {
		repo := newTestRepository(t)

		// When: a session is stored and read back
		err := repo.CreateOrUpdate(ctx, &Session{ID: "abc", Name: "alice"})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, "abc")

		require.NoError(t, err)
		assert.Equal(t, "abc", got.ID)
		assert.Equal(t, "alice", got.Name)
	})

	t.Run("updates overwrite in place", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateOrUpdate(ctx, &Session{ID: "abc"}))

		// When: the same session is written again with a name
		require.NoError(t, repo.CreateOrUpdate(ctx, &Session{ID: "abc", Name: "bob"}))

		got, err := repo.GetByID(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Name)
	})

	t.Run("missing id is a typed error", func(t *testing.T) {
		repo := newTestRepository(t)

		_, err := repo.GetByID(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("delete removes the session", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateOrUpdate(ctx, &Session{ID: "abc", Name: "alice"}))

		require.NoError(t, repo.DeleteByID(ctx, "abc"))

		_, err := repo.GetByID(ctx, "abc")
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
