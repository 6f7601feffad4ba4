package attractions

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/athipan1/Database-painaidee/app/observability/metrics"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ Repository = (*CachedRepository)(nil)

// CachedRepository keeps recent search results in process and collapses
// identical concurrent searches into a single store call.
type CachedRepository struct {
	next   Repository
	cache  *cache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

func NewCachedRepository(next Repository, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func cloneResults(in []types.Attraction) []types.Attraction {
	out := make([]types.Attraction, len(in))
	for i, a := range in {
		a.Tags = slices.Clone(a.Tags)
		out[i] = a
	}
	return out
}

func (c *CachedRepository) Search(ctx context.Context, q types.QueryDescriptor) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionsRepository").Start(ctx, "CachedSearch")
	defer span.End()

	key := q.CacheKey()
	if cached, ok := c.cache.Get(key); ok {
		metrics.Get().SearchCacheHitsTotal.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cloneResults(cached.([]types.Attraction)), nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err, shared := c.group.Do(key, func() (any, error) {
		res, err := c.next.Search(ctx, q)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		span.AddEvent("shared search result", trace.WithAttributes(attribute.String("cache.key", key)))
		c.logger.DebugContext(ctx, "Search result shared", slog.String("key", key))
	}
	return cloneResults(v.([]types.Attraction)), nil
}
