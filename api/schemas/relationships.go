package schemas

// Relationship Types
const (
	// RelFriendsWith links two identities that are friends. Friendships
	// are stored as a pair of directed edges, one in each direction,
	// both carrying the same `since` timestamp.
	RelFriendsWith = "FRIENDS_WITH"

	// RelFriendRequest is a pending friend request from sender to
	// receiver. At most one outstanding edge per ordered pair.
	RelFriendRequest = "FRIEND_REQUEST"

	// RelProvides links a provider identity to a service it offers.
	RelProvides = "PROVIDES"

	// RelUsedService records that an identity registered a service as
	// used. At most one edge per (buyer, service) pair.
	RelUsedService = "USED_SERVICE"

	// RelLikes is the binary like marker between an identity and a
	// service. Presence is the "liked" boolean.
	RelLikes = "LIKES"

	// RelHasComment attaches a comment node to its service.
	RelHasComment = "HAS_COMMENT"

	// RelStudiesIn links a student to their department.
	RelStudiesIn = "STUDIES_IN"

	// RelStudiedIn links an alumnus to the department they graduated from.
	RelStudiedIn = "STUDIED_IN"

	// RelWorksIn links a faculty member to their department.
	RelWorksIn = "WORKS_IN"
)

// RequestStatusPending is the only status a FRIEND_REQUEST edge
// currently carries. Acceptance and rejection delete the edge rather
// than transitioning it.
const RequestStatusPending = "pending"
