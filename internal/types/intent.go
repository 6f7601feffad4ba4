package types

// Intent is the classified communicative purpose of a single utterance.
type Intent string

const (
	IntentSearchAttractions  Intent = "search_attractions"
	IntentSearchByLocation   Intent = "search_by_location"
	IntentSearchByActivity   Intent = "search_by_activity"
	IntentGetDetails         Intent = "get_details"
	IntentGetRecommendations Intent = "get_recommendations"
	IntentGreeting           Intent = "greeting"
	IntentUnknown            Intent = "unknown"
)

// IntentPriority is the fixed tie-break order, highest priority first.
var IntentPriority = []Intent{
	IntentGreeting,
	IntentSearchByLocation,
	IntentSearchByActivity,
	IntentSearchAttractions,
	IntentGetDetails,
	IntentGetRecommendations,
}

// Valid reports whether the intent belongs to the catalog.
func (i Intent) Valid() bool {
	if i == IntentUnknown {
		return true
	}
	for _, known := range IntentPriority {
		if i == known {
			return true
		}
	}
	return false
}

// NeedsQuery reports whether a turn with this intent consults the record store.
func (i Intent) NeedsQuery() bool {
	return i != IntentGreeting && i != IntentUnknown
}

// LocationEntity is a place name found in the text and its canonical English name.
type LocationEntity struct {
	SourceText string `json:"source_text"`
	Canonical  string `json:"canonical"`
}

// EntityBundle holds the hints extracted from one utterance.
// Entities are advisory: the query builder decides how to use them.
type EntityBundle struct {
	Locations  []LocationEntity `json:"locations"`
	Activities []string         `json:"activities"`
	Keywords   []string         `json:"keywords"`
}

func (e EntityBundle) HasLocation() bool { return len(e.Locations) > 0 }

func (e EntityBundle) HasActivity() bool { return len(e.Activities) > 0 }

// Empty reports whether no entity of any kind was found.
func (e EntityBundle) Empty() bool {
	return len(e.Locations) == 0 && len(e.Activities) == 0 && len(e.Keywords) == 0
}

// IntentResult is the immutable outcome of classifying one utterance.
type IntentResult struct {
	Intent       Intent             `json:"intent"`
	Confidence   float64            `json:"confidence"`
	Entities     EntityBundle       `json:"entities"`
	Scores       map[Intent]float64 `json:"all_intents,omitempty"`
	OriginalText string             `json:"original_text"`
}
