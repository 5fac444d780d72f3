// Package relationship implements the friend request and friendship
// lifecycle: request, accept, reject, unfriend, and the list views.
//
// The engine is stateless; every durable fact lives in the store. It
// owns precondition checks, sentinel error mapping, and result
// ordering. The compound transitions themselves (accept, conditional
// deletes) are atomic inside the store.
package relationship

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/campusgraph/campusgraph/api/schemas"
	"go.uber.org/zap"
)

// Engine drives the friend request state machine over a
// RelationshipStore.
type Engine struct {
	store schemas.RelationshipStore
	log   *zap.Logger
	now   func() time.Time
}

// NewEngine creates a relationship engine over the given store.
func NewEngine(store schemas.RelationshipStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store: store,
		log:   logger.Named("RelationshipEngine"),
		now:   time.Now,
	}
}

// SendRequest creates a pending friend request from -> to.
//
// Precondition order is fixed: an existing friendship wins over a
// duplicate request, and both win over identity resolution.
func (e *Engine) SendRequest(ctx context.Context, from, to string) error {
	if from == to {
		return fmt.Errorf("cannot send a friend request to yourself")
	}

	friends, err := e.store.FriendshipExists(ctx, from, to)
	if err != nil {
		return err
	}
	if friends {
		return schemas.ErrAlreadyFriends
	}

	pending, err := e.store.RequestExists(ctx, from, to)
	if err != nil {
		return err
	}
	if pending {
		return schemas.ErrRequestAlreadySent
	}

	if err := e.store.CreateFriendRequest(ctx, from, to, e.now().UTC()); err != nil {
		return err
	}
	e.log.Info("Friend request sent", zap.String("from", from), zap.String("to", to))
	return nil
}

// AcceptRequest turns the pending request from -> to into a friendship.
// Both friendship directions are created with an identical since
// timestamp; the request delete and the edge creation are one atomic
// unit in the store.
func (e *Engine) AcceptRequest(ctx context.Context, from, to string) error {
	if err := e.store.AcceptFriendRequest(ctx, from, to, e.now().UTC()); err != nil {
		return err
	}
	e.log.Info("Friend request accepted", zap.String("from", from), zap.String("to", to))
	return nil
}

// RejectRequest discards the pending request from -> to without any
// other side effect.
func (e *Engine) RejectRequest(ctx context.Context, from, to string) error {
	if err := e.store.DeleteFriendRequest(ctx, from, to); err != nil {
		return err
	}
	e.log.Info("Friend request rejected", zap.String("from", from), zap.String("to", to))
	return nil
}

// Unfriend dissolves the friendship between the pair, removing both
// directions. Argument order does not matter.
func (e *Engine) Unfriend(ctx context.Context, a, b string) error {
	if err := e.store.DeleteFriendship(ctx, a, b); err != nil {
		return err
	}
	e.log.Info("Friendship removed", zap.String("a", a), zap.String("b", b))
	return nil
}

// ListFriends returns the friends of email, name ascending.
func (e *Engine) ListFriends(ctx context.Context, email string) ([]schemas.Friend, error) {
	friends, err := e.store.Friends(ctx, email)
	if err != nil {
		return nil, err
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Name < friends[j].Name })
	return friends, nil
}

// ListPendingReceived returns the requests waiting on email's decision,
// newest first.
func (e *Engine) ListPendingReceived(ctx context.Context, email string) ([]schemas.PendingRequest, error) {
	requests, err := e.store.RequestsReceived(ctx, email)
	if err != nil {
		return nil, err
	}
	sortRequestsNewestFirst(requests)
	return requests, nil
}

// ListPendingSent returns the requests email is waiting on, newest
// first.
func (e *Engine) ListPendingSent(ctx context.Context, email string) ([]schemas.PendingRequest, error) {
	requests, err := e.store.RequestsSent(ctx, email)
	if err != nil {
		return nil, err
	}
	sortRequestsNewestFirst(requests)
	return requests, nil
}

func sortRequestsNewestFirst(requests []schemas.PendingRequest) {
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].SentAt.After(requests[j].SentAt)
	})
}
