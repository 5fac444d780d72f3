package schemas

import "errors"

// Semantic failure kinds surfaced by the engines. Callers match these
// with errors.Is; anything else reaching them is a store/transport
// fault and carries no partial side effects.
var (
	// ErrIdentityNotFound means an email resolved to no identity node.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrDepartmentNotFound means a department id resolved to nothing.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrServiceNotFound means a service name resolved to nothing.
	ErrServiceNotFound = errors.New("service not found")

	// ErrCommentNotFound means no comment with the given id exists
	// under the given service.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrRequestNotFound means no pending friend request exists for the
	// ordered (sender, receiver) pair.
	ErrRequestNotFound = errors.New("friend request not found")

	// ErrFriendshipNotFound means no friendship exists between the pair
	// in either direction.
	ErrFriendshipNotFound = errors.New("friendship not found")

	// ErrAlreadyFriends rejects a friend request between identities that
	// are already friends.
	ErrAlreadyFriends = errors.New("already friends")

	// ErrRequestAlreadySent rejects a duplicate outstanding request for
	// the same ordered pair.
	ErrRequestAlreadySent = errors.New("friend request already sent")

	// ErrServiceExists rejects a service whose name is already taken.
	// Service names are the marketplace lookup key.
	ErrServiceExists = errors.New("service name already exists")

	// ErrUnauthorized rejects a destructive operation by an identity
	// that does not own the target (comment author, service provider).
	ErrUnauthorized = errors.New("not authorized")
)
