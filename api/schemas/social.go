package schemas

import "time"

// -- Relationship lifecycle projections --

// Friend is an identity on the far side of a FRIENDS_WITH edge,
// annotated with when the friendship was formed.
type Friend struct {
	Identity
	Since time.Time `json:"since"`
}

// PendingRequest is the counterparty of an outstanding FRIEND_REQUEST
// edge: the sender for received requests, the receiver for sent ones.
type PendingRequest struct {
	Identity
	SentAt time.Time `json:"sent_at"`
}

// -- Recommendation projections --

// Suggestion is a friend-recommendation candidate with its ranking
// signals. MutualCount is the number of distinct identities befriending
// both sides; SameDepartment is set when both share a department node.
type Suggestion struct {
	Identity
	MutualCount    int  `json:"mutual_count"`
	SameDepartment bool `json:"same_department"`
}

// SuggestionCandidate is the raw, unranked form a store returns for a
// single candidate. The recommendation engine owns ordering and
// truncation.
type SuggestionCandidate = Suggestion

// NetworkMember is one person reachable through the friendship graph,
// together with their own direct friends.
type NetworkMember struct {
	Person      Identity   `json:"person"`
	Connections []Identity `json:"connections"`
}
