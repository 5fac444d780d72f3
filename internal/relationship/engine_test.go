package relationship

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/campusgraph/campusgraph/api/schemas"
	"github.com/campusgraph/campusgraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testLogger *zap.Logger

func TestMain(m *testing.M) {
	testLogger, _ = zap.NewDevelopment()

	exitCode := m.Run()

	_ = testLogger.Sync()
	os.Exit(exitCode)
}

// newTestEngine wires the engine against a fresh in-memory store with
// three registered people and a deterministic clock.
func newTestEngine(t *testing.T) (*Engine, *graph.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	store := graph.NewMemoryStore(testLogger)
	require.NoError(t, store.CreateDepartment(ctx, schemas.Department{ID: "cse", Name: "Computer Science"}))
	for _, p := range []schemas.Identity{
		{Name: "Asha", Email: "asha@campus.edu", Kind: schemas.KindStudent},
		{Name: "Bala", Email: "bala@campus.edu", Kind: schemas.KindStudent},
		{Name: "Chitra", Email: "chitra@campus.edu", Kind: schemas.KindAlumni},
	} {
		require.NoError(t, store.CreateIdentity(ctx, p, "cse", "B.Tech", "CSE"))
	}

	engine := NewEngine(store, testLogger)

	// Deterministic, strictly increasing clock.
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return engine, store
}

func TestSendRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a pending request", func(t *testing.T) {
		t.Parallel()
		engine, store := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

		pending, err := store.RequestExists(ctx, "asha@campus.edu", "bala@campus.edu")
		require.NoError(t, err)
		assert.True(t, pending)
	})

	t.Run("rejects a duplicate outstanding request", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

		err := engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrRequestAlreadySent)
	})

	t.Run("rejects a request between friends", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))
		require.NoError(t, engine.AcceptRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

		// Either direction is refused once the friendship exists.
		assert.ErrorIs(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"), schemas.ErrAlreadyFriends)
		assert.ErrorIs(t, engine.SendRequest(ctx, "bala@campus.edu", "asha@campus.edu"), schemas.ErrAlreadyFriends)
	})

	t.Run("rejects an unknown receiver", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		err := engine.SendRequest(ctx, "asha@campus.edu", "ghost@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrIdentityNotFound)
	})

	t.Run("rejects a self request", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		assert.Error(t, engine.SendRequest(ctx, "asha@campus.edu", "asha@campus.edu"))
	})
}

func TestAcceptRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("both sides list each other afterwards", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))
		require.NoError(t, engine.AcceptRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

		ashaFriends, err := engine.ListFriends(ctx, "asha@campus.edu")
		require.NoError(t, err)
		require.Len(t, ashaFriends, 1)
		assert.Equal(t, "bala@campus.edu", ashaFriends[0].Email)

		balaFriends, err := engine.ListFriends(ctx, "bala@campus.edu")
		require.NoError(t, err)
		require.Len(t, balaFriends, 1)
		assert.Equal(t, "asha@campus.edu", balaFriends[0].Email)

		// Both directions carry the same since timestamp.
		assert.Equal(t, ashaFriends[0].Since, balaFriends[0].Since)

		// No residual pending request on either side.
		received, err := engine.ListPendingReceived(ctx, "bala@campus.edu")
		require.NoError(t, err)
		assert.Empty(t, received)
	})

	t.Run("fails without a pending request", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		err := engine.AcceptRequest(ctx, "asha@campus.edu", "bala@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrRequestNotFound)
	})
}

func TestRejectRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	engine, _ := newTestEngine(t)
	require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))
	require.NoError(t, engine.RejectRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

	// No friendship was formed and the request is gone.
	friends, err := engine.ListFriends(ctx, "bala@campus.edu")
	require.NoError(t, err)
	assert.Empty(t, friends)

	assert.ErrorIs(t, engine.RejectRequest(ctx, "asha@campus.edu", "bala@campus.edu"), schemas.ErrRequestNotFound)
}

func TestUnfriend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("dissolves the friendship symmetrically", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))
		require.NoError(t, engine.AcceptRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

		require.NoError(t, engine.Unfriend(ctx, "bala@campus.edu", "asha@campus.edu"))

		for _, email := range []string{"asha@campus.edu", "bala@campus.edu"} {
			friends, err := engine.ListFriends(ctx, email)
			require.NoError(t, err)
			assert.Empty(t, friends)
		}
	})

	t.Run("second unfriend fails", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))
		require.NoError(t, engine.AcceptRequest(ctx, "asha@campus.edu", "bala@campus.edu"))
		require.NoError(t, engine.Unfriend(ctx, "asha@campus.edu", "bala@campus.edu"))

		err := engine.Unfriend(ctx, "asha@campus.edu", "bala@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrFriendshipNotFound)
	})
}

func TestListOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("friends come back name ascending", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		// Befriend Chitra first, then Bala; names must still sort.
		require.NoError(t, engine.SendRequest(ctx, "chitra@campus.edu", "asha@campus.edu"))
		require.NoError(t, engine.AcceptRequest(ctx, "chitra@campus.edu", "asha@campus.edu"))
		require.NoError(t, engine.SendRequest(ctx, "bala@campus.edu", "asha@campus.edu"))
		require.NoError(t, engine.AcceptRequest(ctx, "bala@campus.edu", "asha@campus.edu"))

		friends, err := engine.ListFriends(ctx, "asha@campus.edu")
		require.NoError(t, err)
		require.Len(t, friends, 2)
		assert.Equal(t, "Bala", friends[0].Name)
		assert.Equal(t, "Chitra", friends[1].Name)
	})

	t.Run("pending requests come back newest first", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		require.NoError(t, engine.SendRequest(ctx, "bala@campus.edu", "asha@campus.edu"))
		require.NoError(t, engine.SendRequest(ctx, "chitra@campus.edu", "asha@campus.edu"))

		received, err := engine.ListPendingReceived(ctx, "asha@campus.edu")
		require.NoError(t, err)
		require.Len(t, received, 2)
		assert.Equal(t, "chitra@campus.edu", received[0].Email, "latest request first")
		assert.True(t, received[0].SentAt.After(received[1].SentAt))
	})
}
