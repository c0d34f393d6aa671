package application

import (
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// recommendationCache keeps recent capability results keyed by mood and
// factor set so repeated dashboard visits do not re-query the capability.
type recommendationCache struct {
	entries *expirable.LRU[string, []Recommendation]
}

func newRecommendationCache(ttl time.Duration, maxEntries int) *recommendationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &recommendationCache{entries: expirable.NewLRU[string, []Recommendation](maxEntries, nil, ttl)}
}

func (c *recommendationCache) Get(key string) ([]Recommendation, bool) {
	if c == nil {
		return nil, false
	}
	items, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return cloneRecommendations(items), true
}

func (c *recommendationCache) Store(key string, items []Recommendation) {
	if c == nil {
		return
	}
	c.entries.Add(key, cloneRecommendations(items))
}

func cloneRecommendations(items []Recommendation) []Recommendation {
	if len(items) == 0 {
		return nil
	}
	out := make([]Recommendation, len(items))
	copy(out, items)
	return out
}

// buildRecommendationCacheKey ignores factor order and duplicates.
func buildRecommendationCacheKey(mood Mood, factors []string) string {
	sorted := make([]string, 0, len(factors))
	for _, f := range factors {
		if f = strings.TrimSpace(f); f != "" {
			sorted = append(sorted, f)
		}
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	builder := strings.Builder{}
	builder.WriteString(string(mood))
	builder.WriteString("|")
	builder.WriteString(strings.Join(sorted, ","))
	return builder.String()
}
