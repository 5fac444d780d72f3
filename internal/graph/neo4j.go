package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/campusgraph/campusgraph/api/schemas"
	"github.com/campusgraph/campusgraph/internal/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Store is the Neo4j-backed implementation of schemas.SocialGraph.
//
// Identities are :Person nodes keyed by email, with the kind stored as
// a property and the department relationship typed per kind
// (STUDIES_IN, STUDIED_IN, WORKS_IN). Services are :Service nodes keyed
// by name; comments are :Comment nodes reachable only through their
// HAS_COMMENT edge.
//
// Single-statement operations go through neo4j.ExecuteQuery, which
// buffers the full result and retries transient failures. Operations
// that pair a precondition with a mutation run inside one managed write
// transaction so the check and the change commit or fail together.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	log      *zap.Logger
}

var _ schemas.SocialGraph = (*Store)(nil)

// NewStore connects a driver against the configured Neo4j instance.
// The connection is lazy; call Verify to force a round trip.
func NewStore(cfg config.Neo4jConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Store{
		driver:   driver,
		database: cfg.Database,
		log:      logger.Named("Neo4jStore"),
	}, nil
}

// Verify checks connectivity to the database.
func (s *Store) Verify(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver and its connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// EnsureConstraints creates the uniqueness constraints the data model
// relies on. Safe to run repeatedly.
func (s *Store) EnsureConstraints(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT person_email IF NOT EXISTS FOR (p:Person) REQUIRE p.email IS UNIQUE`,
		`CREATE CONSTRAINT department_id IF NOT EXISTS FOR (d:Department) REQUIRE d.id IS UNIQUE`,
		`CREATE CONSTRAINT service_name IF NOT EXISTS FOR (s:Service) REQUIRE s.name IS UNIQUE`,
		`CREATE CONSTRAINT comment_id IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE`,
	}
	for _, stmt := range statements {
		if _, err := s.run(ctx, stmt, nil); err != nil {
			return err
		}
	}
	s.log.Info("Schema constraints ensured", zap.Int("count", len(statements)))
	return nil
}

// run executes a single Cypher statement and buffers the full result.
func (s *Store) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		s.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// -- DirectoryStore --

func (s *Store) CreateDepartment(ctx context.Context, dept schemas.Department) error {
	_, err := s.run(ctx, `
		MERGE (d:Department {id: $id})
		SET d.name = $name, d.branches = $branches`,
		map[string]any{
			"id":       dept.ID,
			"name":     dept.Name,
			"branches": dept.Branches,
		})
	return err
}

func (s *Store) CreateIdentity(ctx context.Context, id schemas.Identity, departmentID, branch, course string) error {
	if !id.Kind.Valid() {
		return fmt.Errorf("unknown identity kind %q", id.Kind)
	}
	// Relationship types cannot be parameterized; the edge type comes
	// from the closed kind enumeration, never from caller input.
	query := fmt.Sprintf(`
		MATCH (d:Department {id: $department_id})
		MERGE (p:Person {email: $email})
		SET p.name = $name, p.kind = $kind
		MERGE (p)-[e:%s]->(d)
		SET e.branch = $branch, e.course = $course
		RETURN p.email AS email`, id.Kind.DepartmentEdge())

	result, err := s.run(ctx, query, map[string]any{
		"department_id": departmentID,
		"email":         id.Email,
		"name":          id.Name,
		"kind":          string(id.Kind),
		"branch":        branch,
		"course":        course,
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return schemas.ErrDepartmentNotFound
	}
	s.log.Debug("Identity created",
		zap.String("email", id.Email),
		zap.String("kind", string(id.Kind)),
	)
	return nil
}

func (s *Store) ResolveIdentity(ctx context.Context, email string) (schemas.Identity, error) {
	result, err := s.run(ctx, `
		MATCH (p:Person {email: $email})
		RETURN p.name AS name, p.email AS email, p.kind AS kind`,
		map[string]any{"email": email})
	if err != nil {
		return schemas.Identity{}, err
	}
	if len(result.Records) == 0 {
		return schemas.Identity{}, schemas.ErrIdentityNotFound
	}
	return identityFromRecord(result.Records[0]), nil
}

func (s *Store) Departments(ctx context.Context) ([]schemas.Department, error) {
	result, err := s.run(ctx, `
		MATCH (d:Department)
		RETURN d.id AS id, d.name AS name, d.branches AS branches`, nil)
	if err != nil {
		return nil, err
	}
	depts := make([]schemas.Department, 0, len(result.Records))
	for _, record := range result.Records {
		depts = append(depts, schemas.Department{
			ID:       recordString(record, "id"),
			Name:     recordString(record, "name"),
			Branches: recordStrings(record, "branches"),
		})
	}
	return depts, nil
}

// -- RelationshipStore --

func (s *Store) FriendshipExists(ctx context.Context, a, b string) (bool, error) {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $a})-[r:FRIENDS_WITH]-(:Person {email: $b})
		RETURN count(r) AS n`,
		map[string]any{"a": a, "b": b})
	if err != nil {
		return false, err
	}
	return singleCount(result, "n") > 0, nil
}

func (s *Store) RequestExists(ctx context.Context, from, to string) (bool, error) {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $from})-[r:FRIEND_REQUEST]->(:Person {email: $to})
		RETURN count(r) AS n`,
		map[string]any{"from": from, "to": to})
	if err != nil {
		return false, err
	}
	return singleCount(result, "n") > 0, nil
}

func (s *Store) CreateFriendRequest(ctx context.Context, from, to string, sentAt time.Time) error {
	result, err := s.run(ctx, `
		MATCH (sender:Person {email: $from})
		MATCH (receiver:Person {email: $to})
		CREATE (sender)-[:FRIEND_REQUEST {sent_at: $sent_at, status: $status}]->(receiver)
		RETURN sender.email AS email`,
		map[string]any{
			"from":    from,
			"to":      to,
			"sent_at": sentAt,
			"status":  schemas.RequestStatusPending,
		})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return schemas.ErrIdentityNotFound
	}
	return nil
}

func (s *Store) AcceptFriendRequest(ctx context.Context, from, to string, since time.Time) error {
	// One statement: the request delete and both friendship directions
	// commit together or not at all.
	result, err := s.run(ctx, `
		MATCH (sender:Person {email: $from})-[req:FRIEND_REQUEST]->(receiver:Person {email: $to})
		DELETE req
		WITH sender, receiver
		CREATE (sender)-[:FRIENDS_WITH {since: $since}]->(receiver)
		CREATE (receiver)-[:FRIENDS_WITH {since: $since}]->(sender)
		RETURN sender.email AS email`,
		map[string]any{"from": from, "to": to, "since": since})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return schemas.ErrRequestNotFound
	}
	return nil
}

func (s *Store) DeleteFriendRequest(ctx context.Context, from, to string) error {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $from})-[req:FRIEND_REQUEST]->(:Person {email: $to})
		DELETE req
		RETURN count(req) AS deleted`,
		map[string]any{"from": from, "to": to})
	if err != nil {
		return err
	}
	if singleCount(result, "deleted") == 0 {
		return schemas.ErrRequestNotFound
	}
	return nil
}

func (s *Store) DeleteFriendship(ctx context.Context, a, b string) error {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $a})-[r:FRIENDS_WITH]-(:Person {email: $b})
		DELETE r
		RETURN count(r) AS deleted`,
		map[string]any{"a": a, "b": b})
	if err != nil {
		return err
	}
	if singleCount(result, "deleted") == 0 {
		return schemas.ErrFriendshipNotFound
	}
	return nil
}

func (s *Store) Friends(ctx context.Context, email string) ([]schemas.Friend, error) {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $email})-[r:FRIENDS_WITH]->(friend:Person)
		RETURN friend.name AS name, friend.email AS email, friend.kind AS kind, r.since AS since`,
		map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	friends := make([]schemas.Friend, 0, len(result.Records))
	for _, record := range result.Records {
		friends = append(friends, schemas.Friend{
			Identity: identityFromRecord(record),
			Since:    recordTime(record, "since"),
		})
	}
	return friends, nil
}

func (s *Store) RequestsReceived(ctx context.Context, email string) ([]schemas.PendingRequest, error) {
	return s.pendingRequests(ctx, `
		MATCH (sender:Person)-[req:FRIEND_REQUEST]->(:Person {email: $email})
		WHERE req.status = $status
		RETURN sender.name AS name, sender.email AS email, sender.kind AS kind, req.sent_at AS sent_at`,
		email)
}

func (s *Store) RequestsSent(ctx context.Context, email string) ([]schemas.PendingRequest, error) {
	return s.pendingRequests(ctx, `
		MATCH (:Person {email: $email})-[req:FRIEND_REQUEST]->(receiver:Person)
		WHERE req.status = $status
		RETURN receiver.name AS name, receiver.email AS email, receiver.kind AS kind, req.sent_at AS sent_at`,
		email)
}

func (s *Store) pendingRequests(ctx context.Context, query, email string) ([]schemas.PendingRequest, error) {
	result, err := s.run(ctx, query, map[string]any{
		"email":  email,
		"status": schemas.RequestStatusPending,
	})
	if err != nil {
		return nil, err
	}
	requests := make([]schemas.PendingRequest, 0, len(result.Records))
	for _, record := range result.Records {
		requests = append(requests, schemas.PendingRequest{
			Identity: identityFromRecord(record),
			SentAt:   recordTime(record, "sent_at"),
		})
	}
	return requests, nil
}

// -- RecommendationStore --

func (s *Store) SuggestionCandidates(ctx context.Context, email string) ([]schemas.Suggestion, error) {
	if _, err := s.ResolveIdentity(ctx, email); err != nil {
		return nil, err
	}
	result, err := s.run(ctx, `
		MATCH (u:Person {email: $email})
		MATCH (candidate:Person)
		WHERE candidate.email <> $email
		  AND NOT (u)-[:FRIENDS_WITH]-(candidate)
		  AND NOT (u)-[:FRIEND_REQUEST]-(candidate)
		OPTIONAL MATCH (u)-[:FRIENDS_WITH]->(mutual:Person)-[:FRIENDS_WITH]->(candidate)
		WITH u, candidate, count(DISTINCT mutual) AS mutual_count
		OPTIONAL MATCH (u)-[:STUDIES_IN|STUDIED_IN|WORKS_IN]->(d:Department)<-[:STUDIES_IN|STUDIED_IN|WORKS_IN]-(candidate)
		RETURN DISTINCT candidate.name AS name, candidate.email AS email, candidate.kind AS kind,
		       mutual_count,
		       d IS NOT NULL AS same_department`,
		map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	candidates := make([]schemas.Suggestion, 0, len(result.Records))
	for _, record := range result.Records {
		candidates = append(candidates, schemas.Suggestion{
			Identity:       identityFromRecord(record),
			MutualCount:    recordInt(record, "mutual_count"),
			SameDepartment: recordBool(record, "same_department"),
		})
	}
	return candidates, nil
}

func (s *Store) ReachableNetwork(ctx context.Context, email string, depth int) ([]schemas.NetworkMember, error) {
	if _, err := s.ResolveIdentity(ctx, email); err != nil {
		return nil, err
	}
	// Variable-length bounds cannot be parameterized; depth is clamped
	// to a small positive integer by the caller.
	query := fmt.Sprintf(`
		MATCH (u:Person {email: $email})-[:FRIENDS_WITH*1..%d]-(friend:Person)
		WITH DISTINCT friend
		MATCH (friend)-[:FRIENDS_WITH]-(connected:Person)
		RETURN friend.name AS name, friend.email AS email, friend.kind AS kind,
		       collect(DISTINCT connected{.name, .email, .kind}) AS connections`, depth)

	result, err := s.run(ctx, query, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	members := make([]schemas.NetworkMember, 0, len(result.Records))
	for _, record := range result.Records {
		member := schemas.NetworkMember{Person: identityFromRecord(record)}
		if raw, ok := record.Get("connections"); ok {
			member.Connections = identitiesFromList(raw)
		}
		members = append(members, member)
	}
	return members, nil
}

// -- MarketplaceStore --

func (s *Store) CreateService(ctx context.Context, providerEmail string, svc schemas.Service, at time.Time) error {
	return s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		n, err := txCount(ctx, tx,
			`MATCH (p:Person {email: $email}) RETURN count(p) AS n`,
			map[string]any{"email": providerEmail})
		if err != nil {
			return err
		}
		if n == 0 {
			return schemas.ErrIdentityNotFound
		}
		n, err = txCount(ctx, tx,
			`MATCH (s:Service {name: $name}) RETURN count(s) AS n`,
			map[string]any{"name": svc.Name})
		if err != nil {
			return err
		}
		if n > 0 {
			return schemas.ErrServiceExists
		}
		_, err = tx.Run(ctx, `
			MATCH (p:Person {email: $email})
			CREATE (s:Service {name: $name, description: $description, price: $price})
			MERGE (p)-[r:PROVIDES]->(s)
			SET r.provided_at = $at`,
			map[string]any{
				"email":       providerEmail,
				"name":        svc.Name,
				"description": svc.Description,
				"price":       svc.Price,
				"at":          at,
			})
		return err
	})
}

func (s *Store) AvailableServices(ctx context.Context) ([]schemas.ServiceListing, error) {
	result, err := s.run(ctx, `
		MATCH (s:Service)
		WHERE NOT ()-[:USED_SERVICE]->(s)
		OPTIONAL MATCH (p:Person)-[:PROVIDES]->(s)
		OPTIONAL MATCH (liker:Person)-[:LIKES]->(s)
		OPTIONAL MATCH (s)-[:HAS_COMMENT]->(c:Comment)
		OPTIONAL MATCH (author:Person {email: c.author_email})
		RETURN s.name AS name, s.description AS description, s.price AS price,
		       collect(DISTINCT p{.name, .email, .kind}) AS providers,
		       collect(DISTINCT liker.email) AS liked_by,
		       collect(DISTINCT c{.*, author_name: author.name}) AS comments`, nil)
	if err != nil {
		return nil, err
	}
	listings := make([]schemas.ServiceListing, 0, len(result.Records))
	for _, record := range result.Records {
		likedBy := recordStrings(record, "liked_by")
		listing := schemas.ServiceListing{
			Service:   serviceFromRecord(record),
			LikeCount: len(likedBy),
			LikedBy:   likedBy,
		}
		if raw, ok := record.Get("providers"); ok {
			listing.Providers = identitiesFromList(raw)
		}
		if raw, ok := record.Get("comments"); ok {
			listing.Comments = commentsFromList(raw)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (s *Store) PostedServices(ctx context.Context, providerEmail string) ([]schemas.PostedService, error) {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $email})-[:PROVIDES]->(s:Service)
		OPTIONAL MATCH (liker:Person)-[:LIKES]->(s)
		OPTIONAL MATCH (buyer:Person)-[used:USED_SERVICE]->(s)
		RETURN s.name AS name, s.description AS description, s.price AS price,
		       count(DISTINCT liker) AS like_count,
		       collect(DISTINCT buyer{.name, .email, used_at: used.used_at}) AS used_by`,
		map[string]any{"email": providerEmail})
	if err != nil {
		return nil, err
	}
	posted := make([]schemas.PostedService, 0, len(result.Records))
	for _, record := range result.Records {
		entry := schemas.PostedService{
			Service:   serviceFromRecord(record),
			LikeCount: recordInt(record, "like_count"),
		}
		if raw, ok := record.Get("used_by"); ok {
			entry.UsedBy = usagesFromList(raw)
		}
		entry.IsUsed = len(entry.UsedBy) > 0
		posted = append(posted, entry)
	}
	return posted, nil
}

func (s *Store) UsedServices(ctx context.Context, buyerEmail string) ([]schemas.UsedService, error) {
	result, err := s.run(ctx, `
		MATCH (:Person {email: $email})-[used:USED_SERVICE]->(s:Service)
		OPTIONAL MATCH (p:Person)-[:PROVIDES]->(s)
		WITH s, used, collect(p{.name, .email, .kind}) AS providers
		RETURN s.name AS name, s.description AS description, s.price AS price,
		       used.used_at AS used_at, head(providers) AS provider`,
		map[string]any{"email": buyerEmail})
	if err != nil {
		return nil, err
	}
	used := make([]schemas.UsedService, 0, len(result.Records))
	for _, record := range result.Records {
		entry := schemas.UsedService{
			Service: serviceFromRecord(record),
			UsedAt:  recordTime(record, "used_at"),
		}
		if raw, ok := record.Get("provider"); ok {
			if m, ok := raw.(map[string]any); ok {
				entry.Provider = identityFromMap(m)
			}
		}
		used = append(used, entry)
	}
	return used, nil
}

func (s *Store) ServiceDetail(ctx context.Context, name string) (schemas.ServiceDetail, error) {
	result, err := s.run(ctx, `
		MATCH (s:Service {name: $name})
		OPTIONAL MATCH (p:Person)-[:PROVIDES]->(s)
		OPTIONAL MATCH (liker:Person)-[:LIKES]->(s)
		OPTIONAL MATCH (s)-[:HAS_COMMENT]->(c:Comment)
		OPTIONAL MATCH (author:Person {email: c.author_email})
		RETURN s.name AS name, s.description AS description, s.price AS price,
		       collect(DISTINCT p{.name, .email, .kind}) AS providers,
		       collect(DISTINCT liker{.name, .email, .kind}) AS liked_by,
		       collect(DISTINCT c{.*, author_name: author.name}) AS comments`,
		map[string]any{"name": name})
	if err != nil {
		return schemas.ServiceDetail{}, err
	}
	if len(result.Records) == 0 {
		return schemas.ServiceDetail{}, schemas.ErrServiceNotFound
	}
	record := result.Records[0]
	detail := schemas.ServiceDetail{Service: serviceFromRecord(record)}
	if raw, ok := record.Get("providers"); ok {
		detail.Providers = identitiesFromList(raw)
	}
	if raw, ok := record.Get("liked_by"); ok {
		detail.LikedBy = identitiesFromList(raw)
	}
	if raw, ok := record.Get("comments"); ok {
		detail.Comments = commentsFromList(raw)
	}
	detail.LikeCount = len(detail.LikedBy)
	return detail, nil
}

func (s *Store) RegisterUsed(ctx context.Context, buyerEmail, name string, at time.Time) error {
	return s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		n, err := txCount(ctx, tx,
			`MATCH (s:Service {name: $name}) RETURN count(s) AS n`,
			map[string]any{"name": name})
		if err != nil {
			return err
		}
		if n == 0 {
			return schemas.ErrServiceNotFound
		}
		n, err = txCount(ctx, tx,
			`MATCH (p:Person {email: $email}) RETURN count(p) AS n`,
			map[string]any{"email": buyerEmail})
		if err != nil {
			return err
		}
		if n == 0 {
			return schemas.ErrIdentityNotFound
		}
		_, err = tx.Run(ctx, `
			MATCH (s:Service {name: $name})
			MATCH (p:Person {email: $email})
			MERGE (p)-[used:USED_SERVICE]->(s)
			SET used.used_at = $at`,
			map[string]any{"name": name, "email": buyerEmail, "at": at})
		return err
	})
}

func (s *Store) ToggleLike(ctx context.Context, userEmail, name string, at time.Time) (bool, error) {
	var liked bool
	err := s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		n, err := txCount(ctx, tx,
			`MATCH (s:Service {name: $name}) RETURN count(s) AS n`,
			map[string]any{"name": name})
		if err != nil {
			return err
		}
		if n == 0 {
			return schemas.ErrServiceNotFound
		}
		n, err = txCount(ctx, tx,
			`MATCH (p:Person {email: $email}) RETURN count(p) AS n`,
			map[string]any{"email": userEmail})
		if err != nil {
			return err
		}
		if n == 0 {
			return schemas.ErrIdentityNotFound
		}
		deleted, err := txCount(ctx, tx, `
			MATCH (:Person {email: $email})-[like:LIKES]->(:Service {name: $name})
			DELETE like
			RETURN count(like) AS n`,
			map[string]any{"email": userEmail, "name": name})
		if err != nil {
			return err
		}
		if deleted > 0 {
			liked = false
			return nil
		}
		_, err = tx.Run(ctx, `
			MATCH (s:Service {name: $name})
			MATCH (p:Person {email: $email})
			MERGE (p)-[like:LIKES]->(s)
			SET like.liked_at = $at`,
			map[string]any{"name": name, "email": userEmail, "at": at})
		liked = err == nil
		return err
	})
	return liked, err
}

func (s *Store) AttachComment(ctx context.Context, name string, comment schemas.Comment) (schemas.Comment, error) {
	err := s.write(ctx, func(tx neo4j.ManagedTransaction) error {
		n, err := txCount(ctx, tx,
			`MATCH (s:Service {name: $name}) RETURN count(s) AS n`,
			map[string]any{"name": name})
		if err != nil {
			return err
		}
		if n == 0 {
			return schemas.ErrServiceNotFound
		}
		result, err := tx.Run(ctx, `
			MATCH (s:Service {name: $name})
			MATCH (author:Person {email: $author_email})
			CREATE (c:Comment {id: $id, text: $text, author_email: $author_email, created_at: $created_at})
			MERGE (s)-[:HAS_COMMENT]->(c)
			RETURN author.name AS author_name`,
			map[string]any{
				"name":         name,
				"author_email": comment.AuthorEmail,
				"id":           comment.ID,
				"text":         comment.Text,
				"created_at":   comment.CreatedAt,
			})
		if err != nil {
			return err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return schemas.ErrIdentityNotFound
		}
		comment.AuthorName = recordString(record, "author_name")
		return nil
	})
	if err != nil {
		return schemas.Comment{}, err
	}
	return comment, nil
}

func (s *Store) GetComment(ctx context.Context, name, commentID string) (schemas.Comment, error) {
	result, err := s.run(ctx, `
		MATCH (:Service {name: $name})-[:HAS_COMMENT]->(c:Comment {id: $comment_id})
		OPTIONAL MATCH (author:Person {email: c.author_email})
		RETURN c.id AS id, c.text AS text, c.author_email AS author_email,
		       c.created_at AS created_at, author.name AS author_name`,
		map[string]any{"name": name, "comment_id": commentID})
	if err != nil {
		return schemas.Comment{}, err
	}
	if len(result.Records) == 0 {
		return schemas.Comment{}, schemas.ErrCommentNotFound
	}
	record := result.Records[0]
	return schemas.Comment{
		ID:          recordString(record, "id"),
		Text:        recordString(record, "text"),
		AuthorEmail: recordString(record, "author_email"),
		AuthorName:  recordString(record, "author_name"),
		CreatedAt:   recordTime(record, "created_at"),
	}, nil
}

func (s *Store) DeleteComment(ctx context.Context, name, commentID, authorEmail string) error {
	// Author condition and delete in one statement, like the accept
	// flow: nothing matched means nothing was removed.
	result, err := s.run(ctx, `
		MATCH (:Service {name: $name})-[:HAS_COMMENT]->(c:Comment {id: $comment_id})
		WHERE c.author_email = $author_email
		DETACH DELETE c
		RETURN count(c) AS deleted`,
		map[string]any{"name": name, "comment_id": commentID, "author_email": authorEmail})
	if err != nil {
		return err
	}
	if singleCount(result, "deleted") == 0 {
		return schemas.ErrCommentNotFound
	}
	return nil
}

func (s *Store) DeleteService(ctx context.Context, name string) error {
	result, err := s.run(ctx, `
		MATCH (s:Service {name: $name})
		OPTIONAL MATCH (s)-[:HAS_COMMENT]->(c:Comment)
		DETACH DELETE c
		WITH DISTINCT s
		DETACH DELETE s
		RETURN count(s) AS deleted`,
		map[string]any{"name": name})
	if err != nil {
		return err
	}
	if singleCount(result, "deleted") == 0 {
		return schemas.ErrServiceNotFound
	}
	s.log.Debug("Service deleted", zap.String("name", name))
	return nil
}

// write runs fn inside one managed write transaction.
func (s *Store) write(ctx context.Context, fn func(tx neo4j.ManagedTransaction) error) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(tx)
	})
	return err
}

// txCount runs a count query inside a transaction and returns the value
// of the named column.
func txCount(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) (int64, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	return recordInt64(record, "n"), nil
}

// -- record extraction helpers --

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func recordInt64(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if n, ok := val.(int64); ok {
		return n
	}
	return 0
}

func recordInt(record *neo4j.Record, key string) int {
	return int(recordInt64(record, key))
}

func recordBool(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}

func recordFloat(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	switch n := val.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func recordTime(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return time.Time{}
	}
	if t, ok := val.(time.Time); ok {
		return t
	}
	return time.Time{}
}

func recordStrings(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	raw, ok := val.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

func singleCount(result *neo4j.EagerResult, key string) int64 {
	if len(result.Records) == 0 {
		return 0
	}
	return recordInt64(result.Records[0], key)
}

func identityFromRecord(record *neo4j.Record) schemas.Identity {
	return schemas.Identity{
		Name:  recordString(record, "name"),
		Email: recordString(record, "email"),
		Kind:  schemas.IdentityKind(recordString(record, "kind")),
	}
}

func serviceFromRecord(record *neo4j.Record) schemas.Service {
	return schemas.Service{
		Name:        recordString(record, "name"),
		Description: recordString(record, "description"),
		Price:       recordFloat(record, "price"),
	}
}

func mapString(m map[string]any, key string) string {
	if str, ok := m[key].(string); ok {
		return str
	}
	return ""
}

func mapTime(m map[string]any, key string) time.Time {
	if t, ok := m[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}

func identityFromMap(m map[string]any) schemas.Identity {
	return schemas.Identity{
		Name:  mapString(m, "name"),
		Email: mapString(m, "email"),
		Kind:  schemas.IdentityKind(mapString(m, "kind")),
	}
}

func identitiesFromList(raw any) []schemas.Identity {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	identities := make([]schemas.Identity, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			identities = append(identities, identityFromMap(m))
		}
	}
	return identities
}

func commentsFromList(raw any) []schemas.Comment {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	comments := make([]schemas.Comment, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		comments = append(comments, schemas.Comment{
			ID:          mapString(m, "id"),
			Text:        mapString(m, "text"),
			AuthorEmail: mapString(m, "author_email"),
			AuthorName:  mapString(m, "author_name"),
			CreatedAt:   mapTime(m, "created_at"),
		})
	}
	return comments
}

func usagesFromList(raw any) []schemas.ServiceUsage {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	usages := make([]schemas.ServiceUsage, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		usages = append(usages, schemas.ServiceUsage{
			Email:  mapString(m, "email"),
			Name:   mapString(m, "name"),
			UsedAt: mapTime(m, "used_at"),
		})
	}
	return usages
}
