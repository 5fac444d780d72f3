package graph

import (
	"context"
	"sync"
	"time"

	"github.com/campusgraph/campusgraph/api/schemas"
	"go.uber.org/zap"
)

// MemoryStore is a fast, ephemeral, in-memory implementation of the
// schemas.SocialGraph interface. It's great for tests, demos, or
// situations where persistence isn't required.
//
// Friendship edges are kept symmetric at all times: every mutation that
// touches a FRIENDS_WITH pair writes or removes both directions under
// the same lock, so the paired-edge invariant cannot be observed broken.
type MemoryStore struct {
	mu  sync.RWMutex
	log *zap.Logger

	identities  map[string]memIdentity // key: email
	departments map[string]schemas.Department
	services    map[string]schemas.Service // key: name

	// adjacency, all keyed by email / service name
	friends  map[string]map[string]time.Time // email -> friend email -> since
	requests map[string]map[string]time.Time // sender -> receiver -> sent_at
	provides map[string]map[string]time.Time // service -> provider email -> provided_at
	used     map[string]map[string]time.Time // service -> buyer email -> used_at
	likes    map[string]map[string]time.Time // service -> user email -> liked_at
	comments map[string]map[string]schemas.Comment // service -> comment id
}

type memIdentity struct {
	identity     schemas.Identity
	departmentID string
	branch       string
	course       string
}

// Ensures MemoryStore implements the full store contract at compile time.
var _ schemas.SocialGraph = (*MemoryStore)(nil)

// NewMemoryStore creates a new, empty in-memory social graph.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		log:         logger.Named("MemoryStore"),
		identities:  make(map[string]memIdentity),
		departments: make(map[string]schemas.Department),
		services:    make(map[string]schemas.Service),
		friends:     make(map[string]map[string]time.Time),
		requests:    make(map[string]map[string]time.Time),
		provides:    make(map[string]map[string]time.Time),
		used:        make(map[string]map[string]time.Time),
		likes:       make(map[string]map[string]time.Time),
		comments:    make(map[string]map[string]schemas.Comment),
	}
}

func setEdge(m map[string]map[string]time.Time, from, to string, at time.Time) {
	if m[from] == nil {
		m[from] = make(map[string]time.Time)
	}
	m[from][to] = at
}

func deleteEdge(m map[string]map[string]time.Time, from, to string) bool {
	if _, ok := m[from][to]; !ok {
		return false
	}
	delete(m[from], to)
	return true
}

// -- DirectoryStore --

// CreateDepartment creates or updates a department node by id.
func (s *MemoryStore) CreateDepartment(ctx context.Context, dept schemas.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.departments[dept.ID] = dept
	s.log.Debug("Department merged", zap.String("id", dept.ID))
	return nil
}

// CreateIdentity creates an identity node and its department edge.
func (s *MemoryStore) CreateIdentity(ctx context.Context, id schemas.Identity, departmentID, branch, course string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[departmentID]; !ok {
		return schemas.ErrDepartmentNotFound
	}
	s.identities[id.Email] = memIdentity{
		identity:     id,
		departmentID: departmentID,
		branch:       branch,
		course:       course,
	}
	s.log.Debug("Identity created",
		zap.String("email", id.Email),
		zap.String("kind", string(id.Kind)),
	)
	return nil
}

// ResolveIdentity looks an identity up by email across all kinds.
func (s *MemoryStore) ResolveIdentity(ctx context.Context, email string) (schemas.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.identities[email]
	if !ok {
		return schemas.Identity{}, schemas.ErrIdentityNotFound
	}
	return node.identity, nil
}

// Departments returns all registered departments.
func (s *MemoryStore) Departments(ctx context.Context) ([]schemas.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	depts := make([]schemas.Department, 0, len(s.departments))
	for _, d := range s.departments {
		depts = append(depts, d)
	}
	return depts, nil
}

// -- RelationshipStore --

// FriendshipExists reports a friendship between the pair in either direction.
func (s *MemoryStore) FriendshipExists(ctx context.Context, a, b string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friendshipExistsLocked(a, b), nil
}

func (s *MemoryStore) friendshipExistsLocked(a, b string) bool {
	if _, ok := s.friends[a][b]; ok {
		return true
	}
	_, ok := s.friends[b][a]
	return ok
}

// RequestExists reports a pending request from -> to.
func (s *MemoryStore) RequestExists(ctx context.Context, from, to string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.requests[from][to]
	return ok, nil
}

// CreateFriendRequest creates the pending request edge.
func (s *MemoryStore) CreateFriendRequest(ctx context.Context, from, to string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[from]; !ok {
		return schemas.ErrIdentityNotFound
	}
	if _, ok := s.identities[to]; !ok {
		return schemas.ErrIdentityNotFound
	}
	setEdge(s.requests, from, to, sentAt)
	s.log.Debug("Friend request created", zap.String("from", from), zap.String("to", to))
	return nil
}

// AcceptFriendRequest deletes the request and creates both friendship
// directions under one lock, so the transition is all-or-nothing.
func (s *MemoryStore) AcceptFriendRequest(ctx context.Context, from, to string, since time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !deleteEdge(s.requests, from, to) {
		return schemas.ErrRequestNotFound
	}
	setEdge(s.friends, from, to, since)
	setEdge(s.friends, to, from, since)
	s.log.Debug("Friendship created", zap.String("from", from), zap.String("to", to))
	return nil
}

// DeleteFriendRequest removes the pending request from -> to.
func (s *MemoryStore) DeleteFriendRequest(ctx context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !deleteEdge(s.requests, from, to) {
		return schemas.ErrRequestNotFound
	}
	return nil
}

// DeleteFriendship removes both directions of the friendship.
func (s *MemoryStore) DeleteFriendship(ctx context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	forward := deleteEdge(s.friends, a, b)
	backward := deleteEdge(s.friends, b, a)
	if !forward && !backward {
		return schemas.ErrFriendshipNotFound
	}
	return nil
}

// Friends returns the identities one outbound friendship hop from email.
func (s *MemoryStore) Friends(ctx context.Context, email string) ([]schemas.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	friends := make([]schemas.Friend, 0, len(s.friends[email]))
	for friendEmail, since := range s.friends[email] {
		node, ok := s.identities[friendEmail]
		if !ok {
			continue
		}
		friends = append(friends, schemas.Friend{Identity: node.identity, Since: since})
	}
	return friends, nil
}

// RequestsReceived returns the senders of pending requests pointing at email.
func (s *MemoryStore) RequestsReceived(ctx context.Context, email string) ([]schemas.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var received []schemas.PendingRequest
	for sender, targets := range s.requests {
		sentAt, ok := targets[email]
		if !ok {
			continue
		}
		node, ok := s.identities[sender]
		if !ok {
			continue
		}
		received = append(received, schemas.PendingRequest{Identity: node.identity, SentAt: sentAt})
	}
	return received, nil
}

// RequestsSent returns the receivers of pending requests from email.
func (s *MemoryStore) RequestsSent(ctx context.Context, email string) ([]schemas.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sent []schemas.PendingRequest
	for receiver, sentAt := range s.requests[email] {
		node, ok := s.identities[receiver]
		if !ok {
			continue
		}
		sent = append(sent, schemas.PendingRequest{Identity: node.identity, SentAt: sentAt})
	}
	return sent, nil
}

// -- RecommendationStore --

// SuggestionCandidates returns every identity that could be suggested
// to email, with mutual-friend and same-department signals attached.
func (s *MemoryStore) SuggestionCandidates(ctx context.Context, email string) ([]schemas.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.identities[email]
	if !ok {
		return nil, schemas.ErrIdentityNotFound
	}

	var candidates []schemas.Suggestion
	for candEmail, node := range s.identities {
		if candEmail == email {
			continue
		}
		if s.friendshipExistsLocked(email, candEmail) {
			continue
		}
		if _, pending := s.requests[email][candEmail]; pending {
			continue
		}
		if _, pending := s.requests[candEmail][email]; pending {
			continue
		}

		mutual := 0
		for friendEmail := range s.friends[email] {
			if _, ok := s.friends[candEmail][friendEmail]; ok {
				mutual++
			}
		}

		sameDept := target.departmentID != "" && target.departmentID == node.departmentID

		candidates = append(candidates, schemas.Suggestion{
			Identity:       node.identity,
			MutualCount:    mutual,
			SameDepartment: sameDept,
		})
	}
	return candidates, nil
}

// ReachableNetwork walks the friendship graph breadth-first up to depth
// hops and returns each reached person with their direct friends.
func (s *MemoryStore) ReachableNetwork(ctx context.Context, email string, depth int) ([]schemas.NetworkMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.identities[email]; !ok {
		return nil, schemas.ErrIdentityNotFound
	}

	visited := map[string]bool{email: true}
	frontier := []string{email}

	var members []schemas.NetworkMember
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, current := range frontier {
			for friendEmail := range s.friends[current] {
				if visited[friendEmail] {
					continue
				}
				visited[friendEmail] = true
				next = append(next, friendEmail)

				node, ok := s.identities[friendEmail]
				if !ok {
					continue
				}
				member := schemas.NetworkMember{Person: node.identity}
				for connEmail := range s.friends[friendEmail] {
					if conn, ok := s.identities[connEmail]; ok {
						member.Connections = append(member.Connections, conn.identity)
					}
				}
				members = append(members, member)
			}
		}
		frontier = next
	}
	return members, nil
}

// -- MarketplaceStore --

// CreateService creates the service node and its PROVIDES edge.
func (s *MemoryStore) CreateService(ctx context.Context, providerEmail string, svc schemas.Service, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[providerEmail]; !ok {
		return schemas.ErrIdentityNotFound
	}
	if _, ok := s.services[svc.Name]; ok {
		return schemas.ErrServiceExists
	}
	s.services[svc.Name] = svc
	setEdge(s.provides, svc.Name, providerEmail, at)
	s.log.Debug("Service created",
		zap.String("name", svc.Name),
		zap.String("provider", providerEmail),
	)
	return nil
}

// AvailableServices returns services with zero used registrations.
func (s *MemoryStore) AvailableServices(ctx context.Context) ([]schemas.ServiceListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var listings []schemas.ServiceListing
	for name, svc := range s.services {
		if len(s.used[name]) > 0 {
			continue
		}
		listing := schemas.ServiceListing{
			Service:   svc,
			Providers: s.providersLocked(name),
			LikeCount: len(s.likes[name]),
			LikedBy:   make([]string, 0, len(s.likes[name])),
			Comments:  s.commentsLocked(name),
		}
		for likerEmail := range s.likes[name] {
			listing.LikedBy = append(listing.LikedBy, likerEmail)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// PostedServices returns every service the provider offers.
func (s *MemoryStore) PostedServices(ctx context.Context, providerEmail string) ([]schemas.PostedService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posted []schemas.PostedService
	for name, svc := range s.services {
		if _, ok := s.provides[name][providerEmail]; !ok {
			continue
		}
		entry := schemas.PostedService{
			Service:   svc,
			LikeCount: len(s.likes[name]),
			UsedBy:    make([]schemas.ServiceUsage, 0, len(s.used[name])),
			IsUsed:    len(s.used[name]) > 0,
		}
		for buyerEmail, usedAt := range s.used[name] {
			usage := schemas.ServiceUsage{Email: buyerEmail, UsedAt: usedAt}
			if node, ok := s.identities[buyerEmail]; ok {
				usage.Name = node.identity.Name
			}
			entry.UsedBy = append(entry.UsedBy, usage)
		}
		posted = append(posted, entry)
	}
	return posted, nil
}

// UsedServices returns the services the buyer registered as used.
func (s *MemoryStore) UsedServices(ctx context.Context, buyerEmail string) ([]schemas.UsedService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mine []schemas.UsedService
	for name, buyers := range s.used {
		usedAt, ok := buyers[buyerEmail]
		if !ok {
			continue
		}
		entry := schemas.UsedService{
			Service: s.services[name],
			UsedAt:  usedAt,
		}
		if providers := s.providersLocked(name); len(providers) > 0 {
			entry.Provider = providers[0]
		}
		mine = append(mine, entry)
	}
	return mine, nil
}

// ServiceDetail returns the full view of one service.
func (s *MemoryStore) ServiceDetail(ctx context.Context, name string) (schemas.ServiceDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[name]
	if !ok {
		return schemas.ServiceDetail{}, schemas.ErrServiceNotFound
	}
	detail := schemas.ServiceDetail{
		Service:   svc,
		Providers: s.providersLocked(name),
		LikeCount: len(s.likes[name]),
		LikedBy:   make([]schemas.Identity, 0, len(s.likes[name])),
		Comments:  s.commentsLocked(name),
	}
	for likerEmail := range s.likes[name] {
		if node, ok := s.identities[likerEmail]; ok {
			detail.LikedBy = append(detail.LikedBy, node.identity)
		}
	}
	return detail, nil
}

// RegisterUsed merges the used-service edge idempotently.
func (s *MemoryStore) RegisterUsed(ctx context.Context, buyerEmail, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[name]; !ok {
		return schemas.ErrServiceNotFound
	}
	if _, ok := s.identities[buyerEmail]; !ok {
		return schemas.ErrIdentityNotFound
	}
	setEdge(s.used, name, buyerEmail, at)
	return nil
}

// ToggleLike flips the like edge under one lock and reports the final state.
func (s *MemoryStore) ToggleLike(ctx context.Context, userEmail, name string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[name]; !ok {
		return false, schemas.ErrServiceNotFound
	}
	if _, ok := s.identities[userEmail]; !ok {
		return false, schemas.ErrIdentityNotFound
	}
	if deleteEdge(s.likes, name, userEmail) {
		return false, nil
	}
	setEdge(s.likes, name, userEmail, at)
	return true, nil
}

// AttachComment stores the comment node under the service.
func (s *MemoryStore) AttachComment(ctx context.Context, name string, comment schemas.Comment) (schemas.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[name]; !ok {
		return schemas.Comment{}, schemas.ErrServiceNotFound
	}
	author, ok := s.identities[comment.AuthorEmail]
	if !ok {
		return schemas.Comment{}, schemas.ErrIdentityNotFound
	}
	comment.AuthorName = author.identity.Name
	if s.comments[name] == nil {
		s.comments[name] = make(map[string]schemas.Comment)
	}
	s.comments[name][comment.ID] = comment
	return comment, nil
}

// GetComment fetches one comment under the service.
func (s *MemoryStore) GetComment(ctx context.Context, name, commentID string) (schemas.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[name][commentID]
	if !ok {
		return schemas.Comment{}, schemas.ErrCommentNotFound
	}
	return comment, nil
}

// DeleteComment removes the comment only when the author matches.
func (s *MemoryStore) DeleteComment(ctx context.Context, name, commentID, authorEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[name][commentID]
	if !ok || comment.AuthorEmail != authorEmail {
		return schemas.ErrCommentNotFound
	}
	delete(s.comments[name], commentID)
	return nil
}

// DeleteService removes the service node and every incident edge and comment.
func (s *MemoryStore) DeleteService(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[name]; !ok {
		return schemas.ErrServiceNotFound
	}
	delete(s.services, name)
	delete(s.provides, name)
	delete(s.used, name)
	delete(s.likes, name)
	delete(s.comments, name)
	s.log.Debug("Service deleted", zap.String("name", name))
	return nil
}

// -- internal helpers (callers hold the lock) --

func (s *MemoryStore) providersLocked(name string) []schemas.Identity {
	providers := make([]schemas.Identity, 0, len(s.provides[name]))
	for providerEmail := range s.provides[name] {
		if node, ok := s.identities[providerEmail]; ok {
			providers = append(providers, node.identity)
		}
	}
	return providers
}

func (s *MemoryStore) commentsLocked(name string) []schemas.Comment {
	comments := make([]schemas.Comment, 0, len(s.comments[name]))
	for _, c := range s.comments[name] {
		comments = append(comments, c)
	}
	return comments
}
