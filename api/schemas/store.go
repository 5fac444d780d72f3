package schemas

import (
	"context"
	"time"
)

// The store interfaces below are the only surface the engines touch.
// Implementations live in internal/graph: a Neo4j-backed store for
// real deployments and a mutex-guarded in-memory store for tests and
// ephemeral runs.
//
// Contract notes shared by all implementations:
//   - Collections are returned UNORDERED; engines own result ordering.
//   - Methods that combine a precondition with a mutation (accept,
//     toggle, conditional deletes, idempotent merges) apply both as a
//     single atomic unit; a failed precondition leaves the store
//     unmodified.
//   - Absent entities surface as the sentinel errors in errors.go;
//     anything else is a store fault.

// DirectoryStore covers identity and department registration/lookup.
// The core engines consume ResolveIdentity only; the rest backs the
// directory collaborator.
type DirectoryStore interface {
	// CreateDepartment creates or updates a department node by id.
	CreateDepartment(ctx context.Context, dept Department) error

	// CreateIdentity creates an identity node and its academic or
	// employment edge to the given department. Returns
	// ErrDepartmentNotFound when the department does not exist.
	CreateIdentity(ctx context.Context, id Identity, departmentID, branch, course string) error

	// ResolveIdentity looks an identity up by email across all kinds.
	ResolveIdentity(ctx context.Context, email string) (Identity, error)

	// Departments returns all registered departments.
	Departments(ctx context.Context) ([]Department, error)
}

// RelationshipStore covers the friend request/friendship edges.
type RelationshipStore interface {
	// FriendshipExists reports a FRIENDS_WITH edge between the pair in
	// either direction.
	FriendshipExists(ctx context.Context, a, b string) (bool, error)

	// RequestExists reports a pending FRIEND_REQUEST edge from -> to.
	RequestExists(ctx context.Context, from, to string) (bool, error)

	// CreateFriendRequest creates the pending request edge. Returns
	// ErrIdentityNotFound when either email resolves to nothing.
	CreateFriendRequest(ctx context.Context, from, to string, sentAt time.Time) error

	// AcceptFriendRequest deletes the pending request and creates both
	// directions of the friendship with an identical since timestamp,
	// as one atomic unit. Returns ErrRequestNotFound when no pending
	// request from -> to exists.
	AcceptFriendRequest(ctx context.Context, from, to string, since time.Time) error

	// DeleteFriendRequest removes the pending request from -> to.
	// Returns ErrRequestNotFound when none exists.
	DeleteFriendRequest(ctx context.Context, from, to string) error

	// DeleteFriendship removes both directions of the friendship
	// between the unordered pair. Returns ErrFriendshipNotFound when
	// neither direction exists. Never leaves one direction dangling.
	DeleteFriendship(ctx context.Context, a, b string) error

	// Friends returns the identities one outbound FRIENDS_WITH hop
	// from email, annotated with since.
	Friends(ctx context.Context, email string) ([]Friend, error)

	// RequestsReceived returns the senders of pending requests
	// pointing at email.
	RequestsReceived(ctx context.Context, email string) ([]PendingRequest, error)

	// RequestsSent returns the receivers of pending requests
	// originating from email.
	RequestsSent(ctx context.Context, email string) ([]PendingRequest, error)
}

// RecommendationStore covers the traversal queries behind friend
// suggestions and network expansion.
type RecommendationStore interface {
	// SuggestionCandidates returns every identity that is not the
	// target, not a friend of the target, and has no pending request
	// with the target in either direction, each carrying its mutual
	// count and same-department signal. Unranked and untruncated.
	SuggestionCandidates(ctx context.Context, email string) ([]Suggestion, error)

	// ReachableNetwork returns the distinct identities reachable
	// within 1..depth undirected FRIENDS_WITH hops from email
	// (excluding email itself), each with their direct friends.
	// Depth must already be clamped by the caller.
	ReachableNetwork(ctx context.Context, email string, depth int) ([]NetworkMember, error)
}

// MarketplaceStore covers service nodes and their engagement edges.
type MarketplaceStore interface {
	// CreateService creates the service node and its PROVIDES edge.
	// Returns ErrIdentityNotFound when the provider is unknown and
	// ErrServiceExists when the name is already taken.
	CreateService(ctx context.Context, providerEmail string, svc Service, at time.Time) error

	// AvailableServices returns services with zero USED_SERVICE edges,
	// with providers, like aggregates, and comments.
	AvailableServices(ctx context.Context) ([]ServiceListing, error)

	// PostedServices returns everything the provider offers,
	// regardless of used state.
	PostedServices(ctx context.Context, providerEmail string) ([]PostedService, error)

	// UsedServices returns the services the buyer registered as used.
	UsedServices(ctx context.Context, buyerEmail string) ([]UsedService, error)

	// ServiceDetail returns the full view of one service, or
	// ErrServiceNotFound.
	ServiceDetail(ctx context.Context, name string) (ServiceDetail, error)

	// RegisterUsed merges the USED_SERVICE edge idempotently,
	// refreshing used_at on re-registration.
	RegisterUsed(ctx context.Context, buyerEmail, name string, at time.Time) error

	// ToggleLike flips the LIKES edge as one atomic unit and reports
	// the final liked state.
	ToggleLike(ctx context.Context, userEmail, name string, at time.Time) (bool, error)

	// AttachComment stores the comment node under the service and
	// returns it with the author display name resolved.
	AttachComment(ctx context.Context, name string, comment Comment) (Comment, error)

	// GetComment fetches one comment under the service, or
	// ErrCommentNotFound.
	GetComment(ctx context.Context, name, commentID string) (Comment, error)

	// DeleteComment removes the comment only when its author matches
	// authorEmail; the condition and the delete are one atomic unit.
	// Returns ErrCommentNotFound when nothing matched.
	DeleteComment(ctx context.Context, name, commentID, authorEmail string) error

	// DeleteService detaches and deletes the service node, its
	// comments, and all incident edges. Returns ErrServiceNotFound
	// when the service does not exist. Ownership is enforced by the
	// engine, not here.
	DeleteService(ctx context.Context, name string) error
}

// SocialGraph is the full store contract, implemented by both backends.
type SocialGraph interface {
	DirectoryStore
	RelationshipStore
	RecommendationStore
	MarketplaceStore
}
