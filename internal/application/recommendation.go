package application

import (
	"context"
	"log/slog"
	"time"
)

// Recommendation is one capability suggestion. Type is advisory
// (relaxation, activity or learning) and is not validated.
type Recommendation struct {
	Title  string
	Reason string
	Type   string
}

// Recommender asks the external capability for activity suggestions.
type Recommender interface {
	Recommend(ctx context.Context, mood Mood, factors []string) ([]Recommendation, error)
}

// RecommendationStatus tells the caller whether items are available yet.
type RecommendationStatus string

const (
	RecommendationsPending RecommendationStatus = "pending"
	RecommendationsReady   RecommendationStatus = "ready"
)

// Recommendations is the degraded-or-ready result shown next to the resource catalog.
type Recommendations struct {
	Status RecommendationStatus
	Items  []Recommendation
}

// RecommendationService wraps the capability so that no error ever reaches the caller.
type RecommendationService struct {
	recommender Recommender
	cache       *recommendationCache
	timeout     time.Duration
	logger      *slog.Logger
}

// RecommendationOptions tune the service. Zero values select defaults.
type RecommendationOptions struct {
	CacheTTL        time.Duration
	CacheMaxEntries int
	Timeout         time.Duration
}

// NewRecommendationService constructs the service with a nil-safe logger.
func NewRecommendationService(recommender Recommender, opts RecommendationOptions, logger *slog.Logger) *RecommendationService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultReplyTimeout
	}
	return &RecommendationService{
		recommender: recommender,
		cache:       newRecommendationCache(opts.CacheTTL, opts.CacheMaxEntries),
		timeout:     opts.Timeout,
		logger:      defaultLogger(logger),
	}
}

// ForLatest returns suggestions for the most recent check-in. Without a
// check-in, or when the capability fails or yields nothing, the result is pending.
func (s *RecommendationService) ForLatest(ctx context.Context, latest CheckIn, ok bool) Recommendations {
	if !ok {
		return Recommendations{Status: RecommendationsPending}
	}
	return s.Recommend(ctx, latest.Mood, latest.Factors)
}

// Recommend queries the capability through the cache.
func (s *RecommendationService) Recommend(ctx context.Context, mood Mood, factors []string) Recommendations {
	logger := serviceLogger(ctx, s.logger, "RecommendationService", "Recommend", "mood", mood)

	key := buildRecommendationCacheKey(mood, factors)
	if items, ok := s.cache.Get(key); ok {
		logger.DebugContext(ctx, "recommendations served from cache", "count", len(items))
		return Recommendations{Status: RecommendationsReady, Items: items}
	}

	if s.recommender == nil {
		logger.WarnContext(ctx, "recommendation capability not configured", "error_kind", ErrorKind(ErrCapabilityUnavailable))
		return Recommendations{Status: RecommendationsPending}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.recommender.Recommend(callCtx, mood, append([]string(nil), factors...))
	if err != nil {
		logger.ErrorContext(ctx, "recommendation capability failed",
			"error", err,
			"error_kind", "capability_failure",
			"cause_kind", ErrorKind(err),
		)
		return Recommendations{Status: RecommendationsPending}
	}
	if len(items) == 0 {
		logger.InfoContext(ctx, "recommendation capability returned no items")
		return Recommendations{Status: RecommendationsPending}
	}

	s.cache.Store(key, items)
	logger.InfoContext(ctx, "recommendations fetched", "count", len(items))
	return Recommendations{Status: RecommendationsReady, Items: cloneRecommendations(items)}
}
