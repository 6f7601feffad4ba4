package attractions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/athipan1/Database-painaidee/app/db"
	"github.com/athipan1/Database-painaidee/app/observability/metrics"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the read-only record store the conversation pipeline queries.
type Repository interface {
	Search(ctx context.Context, q types.QueryDescriptor) ([]types.Attraction, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const searchColumns = `
        SELECT id, COALESCE(external_id, 0), title, COALESCE(body, ''), COALESCE(province, ''),
               tags, popularity_score, view_count, created_at
        FROM attractions`

// escapeLike quotes the ILIKE wildcards so user text only matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildSearchQuery renders a descriptor into SQL. Province is a case-insensitive
// containment match, tags must overlap, and search terms are OR-ed: a record
// matches when any term is in its title or body or equals one of its tags.
func buildSearchQuery(q types.QueryDescriptor) (string, []any) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p := strings.TrimSpace(q.Filters.Province); p != "" {
		where = append(where, "province ILIKE "+next("%"+escapeLike(p)+"%"))
	}
	if len(q.Filters.Tags) > 0 {
		where = append(where, "tags && "+next(q.Filters.Tags)+"::text[]")
	}

	var terms []string
	for _, t := range q.SearchTerms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		pattern := next("%" + escapeLike(t) + "%")
		exact := next(strings.ToLower(t))
		terms = append(terms, fmt.Sprintf("title ILIKE %s OR body ILIKE %s OR %s = ANY(tags)", pattern, pattern, exact))
	}
	if len(terms) > 0 {
		where = append(where, "("+strings.Join(terms, " OR ")+")")
	}

	query := searchColumns
	if len(where) > 0 {
		query += "\n        WHERE " + strings.Join(where, " AND ")
	}

	switch q.OrderBy {
	case types.OrderByCreatedAt:
		query += "\n        ORDER BY created_at DESC, id DESC"
	default:
		query += "\n        ORDER BY popularity_score DESC, view_count DESC, id ASC"
	}
	query += "\n        LIMIT " + next(q.Limit)
	return query, args
}

func (r *RepositoryImpl) Search(ctx context.Context, q types.QueryDescriptor) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionsRepository").Start(ctx, "Search", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("filters.province", q.Filters.Province),
		attribute.StringSlice("filters.tags", q.Filters.Tags),
		attribute.Int("search_terms.count", len(q.SearchTerms)),
		attribute.Int("limit", q.Limit),
		attribute.String("order_by", string(q.OrderBy)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Search"))

	if q.Skip || q.Limit <= 0 {
		span.SetStatus(codes.Ok, "Nothing to search")
		return []types.Attraction{}, nil
	}

	query, args := buildSearchQuery(q)
	l.DebugContext(ctx, "Executing attraction search query", slog.String("query", query), slog.Any("args", args))

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		metrics.Get().SearchErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Failed to query attractions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("%w: failed to search attractions: %w", types.ErrRecordStoreUnavailable, err)
	}
	defer rows.Close()

	results := make([]types.Attraction, 0, q.Limit)
	for rows.Next() {
		var a types.Attraction
		if err := rows.Scan(
			&a.ID,
			&a.ExternalID,
			&a.Title,
			&a.Body,
			&a.Province,
			&a.Tags,
			&a.PopularityScore,
			&a.ViewCount,
			&a.CreatedAt,
		); err != nil {
			l.ErrorContext(ctx, "Failed to scan attraction row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, fmt.Errorf("%w: failed to scan attraction row: %w", types.ErrRecordStoreUnavailable, err)
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		metrics.Get().SearchErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Error iterating attraction rows", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("%w: error iterating attraction rows: %w", types.ErrRecordStoreUnavailable, err)
	}

	metrics.Get().SearchDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("order_by", string(q.OrderBy))))

	l.InfoContext(ctx, "Attractions found", slog.Int("count", len(results)))
	span.SetAttributes(attribute.Int("results.count", len(results)))
	span.SetStatus(codes.Ok, "Attractions found")
	return results, nil
}
