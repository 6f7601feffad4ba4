package types

import "time"

// Attraction is a record of the searchable attraction collection.
type Attraction struct {
	ID              int64     `json:"id"`
	ExternalID      int64     `json:"external_id,omitempty"`
	Title           string    `json:"title"`
	Body            string    `json:"body,omitempty"`
	Province        string    `json:"province,omitempty"`
	Tags            []string  `json:"tags"`
	PopularityScore float64   `json:"popularity_score"`
	ViewCount       int       `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
}
