package graph

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/campusgraph/campusgraph/api/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Test Fixture Setup --

type graphTestFixture struct {
	Logger *zap.Logger
}

var globalFixture *graphTestFixture

func TestMain(m *testing.M) {
	logger, _ := zap.NewDevelopment()
	globalFixture = &graphTestFixture{
		Logger: logger,
	}

	exitCode := m.Run()

	_ = globalFixture.Logger.Sync()
	os.Exit(exitCode)
}

// -- Test Helper Functions --

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// getTestStore returns a MemoryStore pre-populated with a small campus:
// one department, four people, and one service.
func getTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()

	store := NewMemoryStore(globalFixture.Logger)

	require.NoError(t, store.CreateDepartment(ctx, schemas.Department{
		ID: "cse", Name: "Computer Science", Branches: []string{"CSE", "AI"},
	}))
	require.NoError(t, store.CreateDepartment(ctx, schemas.Department{
		ID: "mech", Name: "Mechanical Engineering",
	}))

	people := []struct {
		identity schemas.Identity
		dept     string
	}{
		{schemas.Identity{Name: "Asha", Email: "asha@campus.edu", Kind: schemas.KindStudent}, "cse"},
		{schemas.Identity{Name: "Bala", Email: "bala@campus.edu", Kind: schemas.KindStudent}, "cse"},
		{schemas.Identity{Name: "Chitra", Email: "chitra@campus.edu", Kind: schemas.KindAlumni}, "mech"},
		{schemas.Identity{Name: "Devan", Email: "devan@campus.edu", Kind: schemas.KindFaculty}, "cse"},
	}
	for _, p := range people {
		require.NoError(t, store.CreateIdentity(ctx, p.identity, p.dept, "B.Tech", "CSE"))
	}

	require.NoError(t, store.CreateService(ctx, "asha@campus.edu", schemas.Service{
		Name: "guitar-lessons", Description: "Weekly guitar lessons", Price: 300,
	}, baseTime))

	return store
}

// befriend runs the full request/accept cycle between two emails.
func befriend(t *testing.T, store *MemoryStore, from, to string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateFriendRequest(ctx, from, to, baseTime))
	require.NoError(t, store.AcceptFriendRequest(ctx, from, to, baseTime))
}

// -- Directory --

func TestMemoryStoreDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("resolves a registered identity", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		id, err := store.ResolveIdentity(ctx, "asha@campus.edu")
		require.NoError(t, err)
		assert.Equal(t, "Asha", id.Name)
		assert.Equal(t, schemas.KindStudent, id.Kind)
	})

	t.Run("unknown email yields ErrIdentityNotFound", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		_, err := store.ResolveIdentity(ctx, "ghost@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrIdentityNotFound)
	})

	t.Run("identity requires an existing department", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		err := store.CreateIdentity(ctx, schemas.Identity{
			Name: "Eesha", Email: "eesha@campus.edu", Kind: schemas.KindStudent,
		}, "no-such-dept", "", "")
		assert.ErrorIs(t, err, schemas.ErrDepartmentNotFound)
	})

	t.Run("lists departments", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		depts, err := store.Departments(ctx)
		require.NoError(t, err)
		assert.Len(t, depts, 2)
	})
}

// -- Relationship lifecycle --

func TestMemoryStoreFriendRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("request then accept creates a symmetric friendship", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		befriend(t, store, "asha@campus.edu", "bala@campus.edu")

		for _, pair := range [][2]string{
			{"asha@campus.edu", "bala@campus.edu"},
			{"bala@campus.edu", "asha@campus.edu"},
		} {
			ok, err := store.FriendshipExists(ctx, pair[0], pair[1])
			require.NoError(t, err)
			assert.True(t, ok)
		}

		// The pending request must be gone.
		pending, err := store.RequestExists(ctx, "asha@campus.edu", "bala@campus.edu")
		require.NoError(t, err)
		assert.False(t, pending)
	})

	t.Run("accept without a pending request fails", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		err := store.AcceptFriendRequest(ctx, "asha@campus.edu", "bala@campus.edu", baseTime)
		assert.ErrorIs(t, err, schemas.ErrRequestNotFound)
	})

	t.Run("request to unknown identity fails", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		err := store.CreateFriendRequest(ctx, "asha@campus.edu", "ghost@campus.edu", baseTime)
		assert.ErrorIs(t, err, schemas.ErrIdentityNotFound)
	})

	t.Run("reject deletes the pending edge only", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		require.NoError(t, store.CreateFriendRequest(ctx, "asha@campus.edu", "bala@campus.edu", baseTime))
		require.NoError(t, store.DeleteFriendRequest(ctx, "asha@campus.edu", "bala@campus.edu"))

		ok, err := store.FriendshipExists(ctx, "asha@campus.edu", "bala@campus.edu")
		require.NoError(t, err)
		assert.False(t, ok)

		err = store.DeleteFriendRequest(ctx, "asha@campus.edu", "bala@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrRequestNotFound)
	})

	t.Run("sent and received views mirror each other", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		require.NoError(t, store.CreateFriendRequest(ctx, "asha@campus.edu", "bala@campus.edu", baseTime))

		sent, err := store.RequestsSent(ctx, "asha@campus.edu")
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, "bala@campus.edu", sent[0].Email)

		received, err := store.RequestsReceived(ctx, "bala@campus.edu")
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, "asha@campus.edu", received[0].Email)
	})
}

func TestMemoryStoreUnfriend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes both directions regardless of argument order", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		befriend(t, store, "asha@campus.edu", "bala@campus.edu")

		require.NoError(t, store.DeleteFriendship(ctx, "bala@campus.edu", "asha@campus.edu"))

		ok, err := store.FriendshipExists(ctx, "asha@campus.edu", "bala@campus.edu")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no friendship yields ErrFriendshipNotFound", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		err := store.DeleteFriendship(ctx, "asha@campus.edu", "chitra@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrFriendshipNotFound)
	})
}

// -- Recommendation queries --

func TestMemoryStoreSuggestionCandidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("excludes self, friends, and pending requests", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		befriend(t, store, "asha@campus.edu", "bala@campus.edu")
		require.NoError(t, store.CreateFriendRequest(ctx, "chitra@campus.edu", "asha@campus.edu", baseTime))

		candidates, err := store.SuggestionCandidates(ctx, "asha@campus.edu")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "devan@campus.edu", candidates[0].Email)
	})

	t.Run("counts mutual friends and flags shared department", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		// Asha and Devan share Bala as a mutual friend.
		befriend(t, store, "asha@campus.edu", "bala@campus.edu")
		befriend(t, store, "devan@campus.edu", "bala@campus.edu")

		candidates, err := store.SuggestionCandidates(ctx, "asha@campus.edu")
		require.NoError(t, err)

		byEmail := make(map[string]schemas.Suggestion, len(candidates))
		for _, c := range candidates {
			byEmail[c.Email] = c
		}

		devan, ok := byEmail["devan@campus.edu"]
		require.True(t, ok)
		assert.Equal(t, 1, devan.MutualCount)
		assert.True(t, devan.SameDepartment, "both are in cse")

		chitra, ok := byEmail["chitra@campus.edu"]
		require.True(t, ok)
		assert.Equal(t, 0, chitra.MutualCount)
		assert.False(t, chitra.SameDepartment)
	})

	t.Run("unknown target yields ErrIdentityNotFound", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		_, err := store.SuggestionCandidates(ctx, "ghost@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrIdentityNotFound)
	})
}

func TestMemoryStoreReachableNetwork(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Chain: asha - bala - chitra - devan
	buildChain := func(t *testing.T) *MemoryStore {
		store := getTestStore(t)
		befriend(t, store, "asha@campus.edu", "bala@campus.edu")
		befriend(t, store, "bala@campus.edu", "chitra@campus.edu")
		befriend(t, store, "chitra@campus.edu", "devan@campus.edu")
		return store
	}

	memberEmails := func(members []schemas.NetworkMember) []string {
		emails := make([]string, 0, len(members))
		for _, m := range members {
			emails = append(emails, m.Person.Email)
		}
		return emails
	}

	t.Run("depth one returns direct friends only", func(t *testing.T) {
		t.Parallel()
		store := buildChain(t)
		members, err := store.ReachableNetwork(ctx, "asha@campus.edu", 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bala@campus.edu"}, memberEmails(members))
	})

	t.Run("greater depth reaches transitive friends without duplicates", func(t *testing.T) {
		t.Parallel()
		store := buildChain(t)
		members, err := store.ReachableNetwork(ctx, "asha@campus.edu", 3)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"bala@campus.edu", "chitra@campus.edu", "devan@campus.edu"},
			memberEmails(members))
	})

	t.Run("each member carries their direct connections", func(t *testing.T) {
		t.Parallel()
		store := buildChain(t)
		members, err := store.ReachableNetwork(ctx, "asha@campus.edu", 2)
		require.NoError(t, err)

		for _, m := range members {
			if m.Person.Email != "bala@campus.edu" {
				continue
			}
			conns := make([]string, 0, len(m.Connections))
			for _, c := range m.Connections {
				conns = append(conns, c.Email)
			}
			assert.ElementsMatch(t, []string{"asha@campus.edu", "chitra@campus.edu"}, conns)
		}
	})

	t.Run("never contains the traversal root", func(t *testing.T) {
		t.Parallel()
		store := buildChain(t)
		members, err := store.ReachableNetwork(ctx, "asha@campus.edu", 5)
		require.NoError(t, err)
		assert.NotContains(t, memberEmails(members), "asha@campus.edu")
	})
}

// -- Marketplace --

func TestMemoryStoreServices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("duplicate service name is rejected", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		err := store.CreateService(ctx, "bala@campus.edu", schemas.Service{Name: "guitar-lessons"}, baseTime)
		assert.ErrorIs(t, err, schemas.ErrServiceExists)
	})

	t.Run("used services drop out of the availability feed", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)

		listings, err := store.AvailableServices(ctx)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, "guitar-lessons", listings[0].Name)

		require.NoError(t, store.RegisterUsed(ctx, "bala@campus.edu", "guitar-lessons", baseTime))

		listings, err = store.AvailableServices(ctx)
		require.NoError(t, err)
		assert.Empty(t, listings)
	})

	t.Run("posted view includes used state and buyers", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		require.NoError(t, store.RegisterUsed(ctx, "bala@campus.edu", "guitar-lessons", baseTime))

		posted, err := store.PostedServices(ctx, "asha@campus.edu")
		require.NoError(t, err)
		require.Len(t, posted, 1)
		assert.True(t, posted[0].IsUsed)
		require.Len(t, posted[0].UsedBy, 1)
		assert.Equal(t, "bala@campus.edu", posted[0].UsedBy[0].Email)
		assert.Equal(t, "Bala", posted[0].UsedBy[0].Name)
	})

	t.Run("used view carries the provider", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		require.NoError(t, store.RegisterUsed(ctx, "bala@campus.edu", "guitar-lessons", baseTime))

		used, err := store.UsedServices(ctx, "bala@campus.edu")
		require.NoError(t, err)
		require.Len(t, used, 1)
		assert.Equal(t, "guitar-lessons", used[0].Name)
		assert.Equal(t, "asha@campus.edu", used[0].Provider.Email)
	})

	t.Run("delete removes the service and its edges", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		require.NoError(t, store.DeleteService(ctx, "guitar-lessons"))

		_, err := store.ServiceDetail(ctx, "guitar-lessons")
		assert.ErrorIs(t, err, schemas.ErrServiceNotFound)

		err = store.DeleteService(ctx, "guitar-lessons")
		assert.ErrorIs(t, err, schemas.ErrServiceNotFound)
	})
}

func TestMemoryStoreLikes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("toggle flips between liked and unliked", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)

		liked, err := store.ToggleLike(ctx, "bala@campus.edu", "guitar-lessons", baseTime)
		require.NoError(t, err)
		assert.True(t, liked)

		detail, err := store.ServiceDetail(ctx, "guitar-lessons")
		require.NoError(t, err)
		assert.Equal(t, 1, detail.LikeCount)

		liked, err = store.ToggleLike(ctx, "bala@campus.edu", "guitar-lessons", baseTime)
		require.NoError(t, err)
		assert.False(t, liked)

		detail, err = store.ServiceDetail(ctx, "guitar-lessons")
		require.NoError(t, err)
		assert.Equal(t, 0, detail.LikeCount)
	})

	t.Run("like on an unknown service fails", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		_, err := store.ToggleLike(ctx, "bala@campus.edu", "no-such-service", baseTime)
		assert.ErrorIs(t, err, schemas.ErrServiceNotFound)
	})
}

func TestMemoryStoreComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	attach := func(t *testing.T, store *MemoryStore, id, author string) schemas.Comment {
		t.Helper()
		comment, err := store.AttachComment(ctx, "guitar-lessons", schemas.Comment{
			ID:          id,
			Text:        "great lessons",
			AuthorEmail: author,
			CreatedAt:   baseTime,
		})
		require.NoError(t, err)
		return comment
	}

	t.Run("attach resolves the author display name", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		comment := attach(t, store, "c-1", "bala@campus.edu")
		assert.Equal(t, "Bala", comment.AuthorName)

		got, err := store.GetComment(ctx, "guitar-lessons", "c-1")
		require.NoError(t, err)
		assert.Equal(t, "great lessons", got.Text)
	})

	t.Run("delete requires a matching author", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		attach(t, store, "c-1", "bala@campus.edu")

		err := store.DeleteComment(ctx, "guitar-lessons", "c-1", "chitra@campus.edu")
		assert.ErrorIs(t, err, schemas.ErrCommentNotFound)

		// The comment is untouched after the refused delete.
		_, err = store.GetComment(ctx, "guitar-lessons", "c-1")
		require.NoError(t, err)

		require.NoError(t, store.DeleteComment(ctx, "guitar-lessons", "c-1", "bala@campus.edu"))
		_, err = store.GetComment(ctx, "guitar-lessons", "c-1")
		assert.ErrorIs(t, err, schemas.ErrCommentNotFound)
	})

	t.Run("comment on an unknown service fails", func(t *testing.T) {
		t.Parallel()
		store := getTestStore(t)
		_, err := store.AttachComment(ctx, "no-such-service", schemas.Comment{
			ID: "c-9", AuthorEmail: "bala@campus.edu",
		})
		assert.True(t, errors.Is(err, schemas.ErrServiceNotFound))
	})
}
