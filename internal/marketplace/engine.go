// Package marketplace implements the campus service marketplace:
// posting services, the availability feed, single-use registration,
// toggleable likes, and author-scoped comments.
//
// The engine is stateless. It owns identifier generation, server
// timestamps, ownership checks, and result ordering; the store applies
// each compound mutation atomically.
package marketplace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/campusgraph/campusgraph/api/schemas"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine drives the marketplace over a MarketplaceStore.
type Engine struct {
	store schemas.MarketplaceStore
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewEngine creates a marketplace engine over the given store.
func NewEngine(store schemas.MarketplaceStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store: store,
		log:   logger.Named("MarketplaceEngine"),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// AddService posts a new service under the provider. Service names are
// the marketplace key, so a taken name is refused with
// ErrServiceExists.
func (e *Engine) AddService(ctx context.Context, providerEmail, name, description string, price float64) (schemas.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return schemas.Service{}, fmt.Errorf("service name must not be empty")
	}
	svc := schemas.Service{Name: name, Description: description, Price: price}
	if err := e.store.CreateService(ctx, providerEmail, svc, e.now().UTC()); err != nil {
		return schemas.Service{}, err
	}
	e.log.Info("Service posted",
		zap.String("name", name),
		zap.String("provider", providerEmail),
	)
	return svc, nil
}

// ListAvailable returns the feed of services nobody has registered as
// used, name ascending, comments newest first.
func (e *Engine) ListAvailable(ctx context.Context) ([]schemas.ServiceListing, error) {
	listings, err := e.store.AvailableServices(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Name < listings[j].Name })
	for i := range listings {
		sortCommentsNewestFirst(listings[i].Comments)
	}
	return listings, nil
}

// ListPosted returns every service the provider offers, used or not,
// name ascending.
func (e *Engine) ListPosted(ctx context.Context, providerEmail string) ([]schemas.PostedService, error) {
	posted, err := e.store.PostedServices(ctx, providerEmail)
	if err != nil {
		return nil, err
	}
	sort.Slice(posted, func(i, j int) bool { return posted[i].Name < posted[j].Name })
	for i := range posted {
		usages := posted[i].UsedBy
		sort.Slice(usages, func(a, b int) bool { return usages[a].UsedAt.After(usages[b].UsedAt) })
	}
	return posted, nil
}

// ListMine returns the services the buyer registered as used, most
// recent registration first.
func (e *Engine) ListMine(ctx context.Context, buyerEmail string) ([]schemas.UsedService, error) {
	used, err := e.store.UsedServices(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}
	sort.Slice(used, func(i, j int) bool { return used[i].UsedAt.After(used[j].UsedAt) })
	return used, nil
}

// GetService returns the full view of one service, comments newest
// first.
func (e *Engine) GetService(ctx context.Context, name string) (schemas.ServiceDetail, error) {
	detail, err := e.store.ServiceDetail(ctx, name)
	if err != nil {
		return schemas.ServiceDetail{}, err
	}
	sortCommentsNewestFirst(detail.Comments)
	return detail, nil
}

// RegisterUsed marks the service as used by the buyer. Re-registration
// by the same buyer collapses onto the existing edge, refreshing its
// timestamp.
func (e *Engine) RegisterUsed(ctx context.Context, buyerEmail, name string) error {
	if err := e.store.RegisterUsed(ctx, buyerEmail, name, e.now().UTC()); err != nil {
		return err
	}
	e.log.Info("Service registered as used",
		zap.String("name", name),
		zap.String("buyer", buyerEmail),
	)
	return nil
}

// ToggleLike flips the user's like on the service and returns the
// resulting state: true when the call created the like, false when it
// removed one.
func (e *Engine) ToggleLike(ctx context.Context, userEmail, name string) (bool, error) {
	liked, err := e.store.ToggleLike(ctx, userEmail, name, e.now().UTC())
	if err != nil {
		return false, err
	}
	e.log.Debug("Like toggled",
		zap.String("name", name),
		zap.String("user", userEmail),
		zap.Bool("liked", liked),
	)
	return liked, nil
}

// AddComment attaches a comment to the service. The id and timestamp
// are generated here; two comments with identical text stay distinct.
func (e *Engine) AddComment(ctx context.Context, userEmail, name, text string) (schemas.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return schemas.Comment{}, fmt.Errorf("comment text must not be empty")
	}
	comment := schemas.Comment{
		ID:          e.newID(),
		Text:        text,
		AuthorEmail: userEmail,
		CreatedAt:   e.now().UTC(),
	}
	stored, err := e.store.AttachComment(ctx, name, comment)
	if err != nil {
		return schemas.Comment{}, err
	}
	e.log.Info("Comment added",
		zap.String("name", name),
		zap.String("author", userEmail),
		zap.String("comment_id", stored.ID),
	)
	return stored, nil
}

// DeleteComment removes the comment when the requester authored it. A
// comment that exists under another author is refused with
// ErrUnauthorized; the store-side delete stays author-conditional, so
// a racing requester can never remove someone else's comment.
func (e *Engine) DeleteComment(ctx context.Context, requesterEmail, name, commentID string) error {
	comment, err := e.store.GetComment(ctx, name, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorEmail != requesterEmail {
		return schemas.ErrUnauthorized
	}
	// The store delete stays author-conditional; if the comment
	// vanished between the read and the delete this surfaces
	// ErrCommentNotFound.
	if err := e.store.DeleteComment(ctx, name, commentID, requesterEmail); err != nil {
		return err
	}
	e.log.Info("Comment deleted",
		zap.String("name", name),
		zap.String("comment_id", commentID),
	)
	return nil
}

// DeleteService removes the service with its comments and edges. Only
// an identity holding a PROVIDES edge on the service may delete it.
func (e *Engine) DeleteService(ctx context.Context, requesterEmail, name string) error {
	detail, err := e.store.ServiceDetail(ctx, name)
	if err != nil {
		return err
	}
	provider := false
	for _, p := range detail.Providers {
		if p.Email == requesterEmail {
			provider = true
			break
		}
	}
	if !provider {
		return schemas.ErrUnauthorized
	}
	if err := e.store.DeleteService(ctx, name); err != nil {
		return err
	}
	e.log.Info("Service deleted",
		zap.String("name", name),
		zap.String("requester", requesterEmail),
	)
	return nil
}

func sortCommentsNewestFirst(comments []schemas.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}
