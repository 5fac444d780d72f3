package schemas

import "time"

// Service is a marketplace listing. Name is the unique key.
type Service struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Comment is a standalone node attached to exactly one service.
// Deletable only by its author.
type Comment struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ServiceUsage records one buyer's used-service registration.
type ServiceUsage struct {
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	UsedAt time.Time `json:"used_at"`
}

// ServiceListing is an entry in the general availability feed: a
// service nobody has consumed yet, with its engagement aggregates.
type ServiceListing struct {
	Service
	Providers []Identity `json:"providers"`
	LikeCount int        `json:"like_count"`
	LikedBy   []string   `json:"liked_by"`
	Comments  []Comment  `json:"comments"`
}

// ServiceDetail is the full view of a single service, used/unused.
// LikedBy carries resolved identities rather than bare emails.
type ServiceDetail struct {
	Service
	Providers []Identity `json:"providers"`
	LikeCount int        `json:"like_count"`
	LikedBy   []Identity `json:"liked_by"`
	Comments  []Comment  `json:"comments"`
}

// PostedService is a provider's view of one of their own listings,
// including who has registered it as used.
type PostedService struct {
	Service
	LikeCount int            `json:"like_count"`
	UsedBy    []ServiceUsage `json:"used_by"`
	IsUsed    bool           `json:"is_used"`
}

// UsedService is a buyer's view of a service they registered as used.
type UsedService struct {
	Service
	Provider Identity  `json:"provider"`
	UsedAt   time.Time `json:"used_at"`
}
