package conversation

import (
	"slices"

	"github.com/athipan1/Database-painaidee/internal/types"
)

const (
	DefaultResultLimit   = 10
	DefaultMaxLimit      = 50
	recommendationsLimit = 5
	activityLimit        = 8
)

// Plan is a built query together with the context it establishes for
// follow-up turns.
type Plan struct {
	Query    types.QueryDescriptor
	Resolved types.QueryContext
}

// QueryBuilder turns a classified utterance into a store-agnostic query,
// filling gaps from the carried session context and explicit preferences.
type QueryBuilder struct {
	defaultLimit int
	maxLimit     int
}

func NewQueryBuilder(defaultLimit, maxLimit int) *QueryBuilder {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultResultLimit
	}
	return &QueryBuilder{
		defaultLimit: min(defaultLimit, maxLimit),
		maxLimit:     maxLimit,
	}
}

// Build returns the query for one turn. It is a pure function of its inputs.
func (b *QueryBuilder) Build(res types.IntentResult, carried types.QueryContext, prefs types.Preferences) types.QueryDescriptor {
	return b.Plan(res, carried, prefs).Query
}

func (b *QueryBuilder) Plan(res types.IntentResult, carried types.QueryContext, prefs types.Preferences) Plan {
	if !res.Intent.NeedsQuery() {
		return Plan{Query: types.QueryDescriptor{
			SearchTerms: []string{},
			OrderBy:     types.OrderByPopularity,
			Skip:        true,
		}}
	}

	e := res.Entities
	var turnProvince string
	if e.HasLocation() {
		turnProvince = e.Locations[0].Canonical
	}
	preferred := ""
	if prefs.PreferredProvince != nil {
		preferred = *prefs.PreferredProvince
	}

	q := types.QueryDescriptor{
		SearchTerms: []string{},
		Limit:       b.limit(res.Intent, prefs),
		OrderBy:     types.OrderByPopularity,
	}
	var resolved types.QueryContext

	switch res.Intent {
	case types.IntentGetRecommendations:
		// stated preferences drive recommendations ahead of anything said in passing
		q.Filters.Province = firstNonEmpty(preferred, turnProvince, carried.Province)
		switch {
		case len(prefs.Interests) > 0:
			q.Filters.Tags = slices.Clone(prefs.Interests)
		case e.HasActivity():
			q.Filters.Tags = slices.Clone(e.Activities)
		default:
			q.Filters.Tags = slices.Clone(carried.Activities)
		}
		if len(q.Filters.Tags) == 0 {
			q.Filters.Tags = nil
		}
		resolved = types.QueryContext{Province: firstNonEmpty(turnProvince, carried.Province)}
		if e.HasActivity() {
			resolved.Activities = slices.Clone(e.Activities)
		}

	case types.IntentGetDetails:
		if e.Empty() {
			q.Filters.Province = firstNonEmpty(carried.Province, preferred)
			q.SearchTerms = terms(carried.Activities, nil)
			resolved = carried
			break
		}
		q.Filters.Province = firstNonEmpty(turnProvince, preferred, carried.Province)
		q.SearchTerms = terms(e.Activities, e.Keywords)
		resolved = types.QueryContext{Province: firstNonEmpty(turnProvince, carried.Province), Activities: slices.Clone(e.Activities)}

	case types.IntentSearchByLocation:
		q.Filters.Province = firstNonEmpty(turnProvince, preferred, carried.Province)
		q.SearchTerms = terms(e.Activities, e.Keywords)
		q.OrderBy = types.OrderByCreatedAt
		resolved = types.QueryContext{Province: firstNonEmpty(turnProvince, carried.Province), Activities: slices.Clone(e.Activities)}

	case types.IntentSearchByActivity:
		activities := e.Activities
		if !e.HasActivity() {
			activities = carried.Activities
		}
		q.Filters.Province = firstNonEmpty(turnProvince, preferred, carried.Province)
		q.SearchTerms = terms(activities, e.Keywords)
		resolved = types.QueryContext{Province: firstNonEmpty(turnProvince, carried.Province), Activities: slices.Clone(activities)}

	default:
		q.Filters.Province = firstNonEmpty(turnProvince, preferred, carried.Province)
		q.SearchTerms = terms(e.Activities, e.Keywords)
		resolved = types.QueryContext{Province: firstNonEmpty(turnProvince, carried.Province), Activities: slices.Clone(e.Activities)}
	}

	if len(resolved.Activities) == 0 {
		resolved.Activities = nil
	}
	return Plan{Query: q, Resolved: resolved}
}

func (b *QueryBuilder) limit(intent types.Intent, prefs types.Preferences) int {
	n := b.defaultLimit
	switch {
	case prefs.MaxResults != nil:
		n = *prefs.MaxResults
	case intent == types.IntentGetRecommendations:
		n = recommendationsLimit
	case intent == types.IntentSearchByActivity:
		n = activityLimit
	}
	return max(1, min(n, b.maxLimit))
}

func terms(activities, keywords []string) []string {
	out := make([]string, 0, len(activities)+len(keywords))
	for _, t := range slices.Concat(activities, keywords) {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
