package types

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// OrderField names the column a query is sorted by, descending.
type OrderField string

const (
	OrderByPopularity OrderField = "popularity"
	OrderByCreatedAt  OrderField = "created_at"
)

// QueryFilters are the exact-match constraints of a query.
type QueryFilters struct {
	Province string   `json:"province,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// QueryDescriptor is the store-agnostic search request built for one turn.
// A descriptor with Skip set must not be executed.
type QueryDescriptor struct {
	Filters     QueryFilters `json:"filters"`
	SearchTerms []string     `json:"search_terms"`
	Limit       int          `json:"limit"`
	OrderBy     OrderField   `json:"order_by"`
	Skip        bool         `json:"skip,omitempty"`
}

// CacheKey is a stable textual form of the descriptor.
func (q QueryDescriptor) CacheKey() string {
	var b strings.Builder
	b.WriteString("p=")
	b.WriteString(strings.ToLower(q.Filters.Province))
	b.WriteString("|t=")
	b.WriteString(strings.Join(q.Filters.Tags, ","))
	b.WriteString("|s=")
	b.WriteString(strings.ToLower(strings.Join(q.SearchTerms, ",")))
	b.WriteString("|o=")
	b.WriteString(string(q.OrderBy))
	b.WriteString("|l=")
	b.WriteString(strconv.Itoa(q.Limit))
	return b.String()
}

// QueryResponse is returned by the text-to-query operation.
type QueryResponse struct {
	Intent       IntentResult    `json:"intent"`
	Query        QueryDescriptor `json:"query_params"`
	Results      []Attraction    `json:"results"`
	TotalResults int             `json:"total_results"`
	SessionID    *uuid.UUID      `json:"session_id"`
}

// ChatResponse is returned for one conversational turn.
type ChatResponse struct {
	SessionID    uuid.UUID    `json:"session_id"`
	Message      string       `json:"message"`
	Intent       IntentResult `json:"intent"`
	Results      []Attraction `json:"results"`
	TotalResults int          `json:"total_results"`
	IsNewSession bool         `json:"is_new_session"`
	Degraded     bool         `json:"degraded,omitempty"`
}
