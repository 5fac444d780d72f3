// Package recommend ranks friend suggestions and expands the reachable
// friendship network. Stores hand back raw, unordered candidates; this
// engine owns ranking, truncation, and depth clamping, so both store
// backends behave identically.
package recommend

import (
	"context"
	"sort"

	"github.com/campusgraph/campusgraph/api/schemas"
	"github.com/campusgraph/campusgraph/internal/config"
	"go.uber.org/zap"
)

// Engine computes friend suggestions and bounded network expansion.
type Engine struct {
	store schemas.RecommendationStore
	cfg   config.RecommendConfig
	log   *zap.Logger
}

// NewEngine creates a recommendation engine with the given tunables.
func NewEngine(store schemas.RecommendationStore, cfg config.RecommendConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store: store,
		cfg:   cfg,
		log:   logger.Named("RecommendEngine"),
	}
}

// SuggestFriends returns up to limit candidates for email, ranked by
// mutual friend count descending, then shared department, stable
// beyond that. A non-positive limit falls back to the configured
// default.
func (e *Engine) SuggestFriends(ctx context.Context, email string, limit int) ([]schemas.Suggestion, error) {
	if limit <= 0 {
		limit = e.cfg.SuggestionLimit
	}

	candidates, err := e.store.SuggestionCandidates(ctx, email)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MutualCount != candidates[j].MutualCount {
			return candidates[i].MutualCount > candidates[j].MutualCount
		}
		return candidates[i].SameDepartment && !candidates[j].SameDepartment
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	e.log.Debug("Friend suggestions computed",
		zap.String("email", email),
		zap.Int("count", len(candidates)),
	)
	return candidates, nil
}

// ExpandNetwork returns the people reachable within depth friendship
// hops from email, each with their direct friends. Depth is clamped to
// [1, configured max]; the result is deduplicated by email and capped.
func (e *Engine) ExpandNetwork(ctx context.Context, email string, depth int) ([]schemas.NetworkMember, error) {
	clamped := clampDepth(depth, e.cfg.MaxDepth)

	members, err := e.store.ReachableNetwork(ctx, email, clamped)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(members))
	deduped := members[:0]
	for _, m := range members {
		if m.Person.Email == email || seen[m.Person.Email] {
			continue
		}
		seen[m.Person.Email] = true
		deduped = append(deduped, m)
	}

	if len(deduped) > e.cfg.NetworkCap {
		deduped = deduped[:e.cfg.NetworkCap]
	}
	e.log.Debug("Network expanded",
		zap.String("email", email),
		zap.Int("depth", clamped),
		zap.Int("count", len(deduped)),
	)
	return deduped, nil
}

func clampDepth(depth, max int) int {
	if depth < 1 {
		return 1
	}
	if depth > max {
		return max
	}
	return depth
}
