package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fivecrowns-backend/internal/apperror"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/entity"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/game"
	"github.com/rocketscienceinc/fivecrowns-backend/internal/repository"
)

func newTestManager(t *testing.T) *GameManager {
	t.Helper()

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := repository.NewSessionRepository(client)

	return NewGameManager(logger, sessions, 0)
}

func TestGetOrCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("mints an id for a new connection", func(t *testing.T) {
		manager := newTestManager(t)

		// When: a client connects with no session
		session, err := manager.GetOrCreateSession(ctx, "")

		// Then: it gets a fresh persisted identity
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)

		// Then: reconnecting with that id finds the same session
		again, err := manager.GetOrCreateSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, again.ID)
	})

	t.Run("unknown id is a typed error", func(t *testing.T) {
		manager := newTestManager(t)

		_, err := manager.GetOrCreateSession(ctx, "ghost")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("seats the player and keeps the session name", func(t *testing.T) {
		manager := newTestManager(t)

		require.NoError(t, manager.Join(ctx, "a", "alice"))

		assert.Equal(t, []string{"a"}, manager.PlayerIDs())
		session, err := manager.GetOrCreateSession(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "alice", session.Name)
	})

	t.Run("duplicate names are refused", func(t *testing.T) {
		manager := newTestManager(t)
		require.NoError(t, manager.Join(ctx, "a", "alice"))

		err := manager.Join(ctx, "b", "alice")

		require.ErrorIs(t, err, apperror.ErrNameTaken)
	})
}

func TestSubmitActionAndViews(t *testing.T) {
	ctx := context.Background()

	manager := newTestManager(t)
	require.NoError(t, manager.Join(ctx, "a", "alice"))
	require.NoError(t, manager.Join(ctx, "b", "bob"))

	// When: the game starts
	require.NoError(t, manager.SubmitAction(ctx, "a", game.Command{Kind: entity.ActionStart}))

	// Then: each player sees only their own hand
	aliceView := manager.ViewFor("a")
	bobView := manager.ViewFor("b")
	assert.Equal(t, game.StatusInProgress, aliceView.Status)
	assert.Len(t, aliceView.Hand, 3)
	assert.Len(t, bobView.Hand, 3)
	assert.Equal(t, []string{"alice", "bob"}, aliceView.PlayerNames)
	assert.NotNil(t, aliceView.TopDiscard)

	// Then: a spectator gets the public table without a hand
	publicView := manager.ViewFor("ghost")
	assert.Empty(t, publicView.Hand)
	assert.Equal(t, aliceView.Turn, publicView.Turn)

	// When: someone submits an unknown action
	err := manager.SubmitAction(ctx, "a", game.Command{Kind: entity.ActionKind("banana")})

	// Then: the typed error survives the wrapping
	require.ErrorIs(t, err, apperror.ErrUnknownAction)
}

func TestScoreCard(t *testing.T) {
	ctx := context.Background()

	manager := newTestManager(t)
	require.NoError(t, manager.Join(ctx, "a", "alice"))
	require.NoError(t, manager.Join(ctx, "b", "bob"))

	// Given: no rounds have finished yet
	card := manager.ScoreCard()

	assert.Equal(t, []string{"alice", "bob"}, card.PlayerNames)
	assert.Equal(t, []int{0, 0}, card.Totals)
	assert.Empty(t, card.Rounds)
}

func TestReset(t *testing.T) {
	ctx := context.Background()

	manager := newTestManager(t)
	require.NoError(t, manager.Join(ctx, "a", "alice"))
	require.NoError(t, manager.Join(ctx, "b", "bob"))
	require.NoError(t, manager.SubmitAction(ctx, "a", game.Command{Kind: entity.ActionStart}))

	// When: the table is reset
	manager.Reset(ctx)

	// Then: all seats and game state are gone
	assert.Empty(t, manager.PlayerIDs())
	view := manager.ViewFor("a")
	assert.Equal(t, game.StatusWaiting, view.Status)
	assert.Empty(t, view.Hand)
}
