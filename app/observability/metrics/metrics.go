package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	TurnsTotal               metric.Int64Counter
	SearchDurationSeconds    metric.Float64Histogram
	SearchErrorsTotal        metric.Int64Counter
	SearchCacheHitsTotal     metric.Int64Counter
	SessionStoreErrorsTotal  metric.Int64Counter
	SessionsSweptTotal       metric.Int64Counter
	RateLimitedRequestsTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, from the
// globally configured MeterProvider. Before a provider is installed the
// instruments are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("painaidee")
		var err error
		m := &AppMetrics{}

		m.TurnsTotal, err = meter.Int64Counter(
			"conversation_turns_total",
			metric.WithDescription("Total number of processed conversational turns, by intent"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create conversation_turns_total: %v", err)
		}

		m.SearchDurationSeconds, err = meter.Float64Histogram(
			"attraction_search_duration_seconds",
			metric.WithDescription("Duration of record store searches in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create attraction_search_duration_seconds: %v", err)
		}

		m.SearchErrorsTotal, err = meter.Int64Counter(
			"attraction_search_errors_total",
			metric.WithDescription("Total number of failed record store searches"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create attraction_search_errors_total: %v", err)
		}

		m.SearchCacheHitsTotal, err = meter.Int64Counter(
			"attraction_search_cache_hits_total",
			metric.WithDescription("Searches answered from the in-process cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create attraction_search_cache_hits_total: %v", err)
		}

		m.SessionStoreErrorsTotal, err = meter.Int64Counter(
			"session_store_errors_total",
			metric.WithDescription("Total number of session store failures"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_store_errors_total: %v", err)
		}

		m.SessionsSweptTotal, err = meter.Int64Counter(
			"sessions_swept_total",
			metric.WithDescription("Expired sessions removed by the background sweeper"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sessions_swept_total: %v", err)
		}

		m.RateLimitedRequestsTotal, err = meter.Int64Counter(
			"rate_limited_requests_total",
			metric.WithDescription("Requests rejected by the rate limiter"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create rate_limited_requests_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics instance, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
