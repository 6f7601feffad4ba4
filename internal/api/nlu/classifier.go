package nlu

import (
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/athipan1/Database-painaidee/internal/types"
)

const maxKeywords = 10

// Trigger is a surface phrase voting for an intent. Longer, more specific
// phrases carry more weight.
type Trigger struct {
	Phrase string
	Weight float64
}

// Rules maps each intent to its trigger phrases.
type Rules map[types.Intent][]Trigger

// Thresholds tune how trigger hits turn into a decision.
type Thresholds struct {
	// MinScore is the best score below which the result is unknown.
	MinScore float64
	// Saturation is the score at which confidence stops being damped.
	Saturation    float64
	LocationBoost float64
	ActivityBoost float64
	QuestionBoost float64
	// OpenerBoost is added to greeting when the utterance starts with one.
	OpenerBoost float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:      1.0,
		Saturation:    3.0,
		LocationBoost: 2.5,
		ActivityBoost: 2.0,
		QuestionBoost: 0.5,
		OpenerBoost:   1.5,
	}
}

func DefaultRules() Rules {
	return Rules{
		types.IntentSearchAttractions: {
			{"สถานที่ท่องเที่ยว", 2.0}, {"แหล่งท่องเที่ยว", 2.0}, {"หาที่เที่ยว", 2.0}, {"หาสถานที่", 2.0},
			{"เที่ยวที่ไหน", 2.0}, {"ที่เที่ยว", 1.5}, {"ไปเที่ยว", 1.0}, {"ท่องเที่ยว", 1.0},
			{"places to visit", 2.0}, {"place to visit", 2.0}, {"places to go", 2.0}, {"where to go", 2.0},
			{"things to do", 2.0}, {"attractions", 1.5}, {"attraction", 1.5}, {"sightseeing", 1.5},
			{"destinations", 1.0}, {"destination", 1.0}, {"tourist", 1.0}, {"travel", 1.0}, {"find", 1.0}, {"search", 1.0},
		},
		types.IntentSearchByLocation: {
			{"ในจังหวัด", 2.0}, {"ที่จังหวัด", 2.0}, {"จังหวัด", 1.0}, {"แถว", 1.0}, {"ใกล้", 1.0}, {"ใน", 0.5},
			{"close to", 1.5}, {"province", 1.0}, {"near", 1.0}, {"around", 1.0}, {"in", 0.5},
		},
		types.IntentSearchByActivity: {
			{"กิจกรรม", 1.0}, {"activities", 1.0}, {"activity", 1.0},
		},
		types.IntentGetDetails: {
			{"ข้อมูลเพิ่มเติม", 2.5}, {"รายละเอียด", 2.5}, {"บอกเกี่ยวกับ", 2.5}, {"เล่าเกี่ยวกับ", 2.5},
			{"เป็นยังไง", 1.0}, {"ข้อมูล", 1.0},
			{"tell me about", 2.5}, {"information about", 2.5}, {"more info", 2.5}, {"details", 2.0},
			{"describe", 1.5}, {"information", 1.0},
		},
		types.IntentGetRecommendations: {
			{"ควรไป", 2.0}, {"แนะนำ", 2.0}, {"ยอดนิยม", 1.5}, {"น่าสนใจ", 1.0}, {"เหมาะ", 1.0},
			{"recommendations", 2.0}, {"recommendation", 2.0}, {"recommend", 2.0}, {"suggestions", 2.0},
			{"suggest", 2.0}, {"must see", 2.0}, {"must-see", 2.0}, {"popular", 1.0}, {"best", 1.0},
		},
		types.IntentGreeting: {
			{"สวัสดี", 2.0}, {"หวัดดี", 2.0}, {"ขอความช่วยเหลือ", 1.5},
			{"good morning", 2.0}, {"good afternoon", 2.0}, {"good evening", 2.0}, {"greetings", 2.0},
			{"hello", 2.0}, {"hey", 1.5}, {"hi", 1.5},
		},
	}
}

type lexKind int

const (
	lexLocation lexKind = iota
	lexActivity
	lexFiller
)

type lexEntry struct {
	phrase string
	kind   lexKind
	value  string
}

// Classifier maps free text to an intent and entity bundle. It is a pure
// function of its tables and safe for concurrent use.
type Classifier struct {
	rules      Rules
	thresholds Thresholds
	lexicon    []lexEntry
	questions  []string
}

func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules(), DefaultThresholds())
}

func NewClassifierWithRules(rules Rules, thresholds Thresholds) *Classifier {
	c := &Classifier{
		rules:      make(Rules, len(rules)),
		thresholds: thresholds,
	}

	var fillers []string
	for intent, triggers := range rules {
		sorted := make([]Trigger, 0, len(triggers))
		for _, t := range triggers {
			t.Phrase = normalize(t.Phrase)
			sorted = append(sorted, t)
			fillers = append(fillers, t.Phrase)
		}
		sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Phrase) > len(sorted[j].Phrase) })
		c.rules[intent] = sorted
	}
	fillers = append(fillers, stopwords...)

	for _, p := range provinces {
		for _, alias := range p.Aliases {
			c.lexicon = append(c.lexicon, lexEntry{normalize(alias), lexLocation, p.Canonical})
		}
	}
	for _, a := range activities {
		for _, alias := range a.Aliases {
			c.lexicon = append(c.lexicon, lexEntry{normalize(alias), lexActivity, a.Tag})
		}
	}
	for _, f := range fillers {
		c.lexicon = append(c.lexicon, lexEntry{normalize(f), lexFiller, ""})
	}
	// longest first; locations before activities before filler on equal length
	sort.SliceStable(c.lexicon, func(i, j int) bool {
		li, lj := len([]rune(c.lexicon[i].phrase)), len([]rune(c.lexicon[j].phrase))
		if li != lj {
			return li > lj
		}
		return c.lexicon[i].kind < c.lexicon[j].kind
	})

	c.questions = make([]string, len(questionMarkers))
	for i, q := range questionMarkers {
		c.questions[i] = normalize(q)
	}
	byLength(c.questions)
	return c
}

type hit struct {
	pos   int
	value string
	src   string
}

// analysis is the entity pass over one normalized utterance.
type analysis struct {
	text     string
	entities types.EntityBundle
	// entityMask marks bytes claimed by location or activity phrases.
	entityMask []bool
}

func (c *Classifier) extract(text string) analysis {
	consumed := make([]bool, len(text))
	entityMask := make([]bool, len(text))
	var locs, acts []hit

	for _, e := range c.lexicon {
		for _, sp := range occurrences(text, e.phrase) {
			if sp.overlaps(consumed) {
				continue
			}
			sp.mark(consumed)
			switch e.kind {
			case lexLocation:
				sp.mark(entityMask)
				locs = append(locs, hit{sp.start, e.value, text[sp.start:sp.end]})
			case lexActivity:
				sp.mark(entityMask)
				acts = append(acts, hit{sp.start, e.value, text[sp.start:sp.end]})
			}
		}
	}

	byPos := func(h []hit) {
		sort.SliceStable(h, func(i, j int) bool { return h[i].pos < h[j].pos })
	}
	byPos(locs)
	byPos(acts)

	bundle := types.EntityBundle{
		Locations:  []types.LocationEntity{},
		Activities: []string{},
		Keywords:   []string{},
	}
	seenLoc := map[string]bool{}
	for _, h := range locs {
		if seenLoc[h.value] {
			continue
		}
		seenLoc[h.value] = true
		bundle.Locations = append(bundle.Locations, types.LocationEntity{SourceText: h.src, Canonical: h.value})
	}
	for _, h := range acts {
		if !slices.Contains(bundle.Activities, h.value) {
			bundle.Activities = append(bundle.Activities, h.value)
		}
	}
	for _, tok := range leftovers(text, consumed) {
		if len(bundle.Keywords) == maxKeywords {
			break
		}
		if keepKeyword(tok) && !slices.Contains(bundle.Keywords, tok) {
			bundle.Keywords = append(bundle.Keywords, tok)
		}
	}

	return analysis{text: text, entities: bundle, entityMask: entityMask}
}

// score counts each intent's trigger hits outside entity spans. Within one
// intent a longer trigger claims its span so a contained phrase is not counted twice.
func (c *Classifier) score(a analysis) map[types.Intent]float64 {
	scores := make(map[types.Intent]float64, len(types.IntentPriority))
	openers := false

	for intent, triggers := range c.rules {
		claimed := slices.Clone(a.entityMask)
		for _, t := range triggers {
			for _, sp := range occurrences(a.text, t.Phrase) {
				if sp.overlaps(claimed) {
					continue
				}
				sp.mark(claimed)
				scores[intent] += t.Weight
				if intent == types.IntentGreeting && sp.start == 0 {
					openers = true
				}
			}
		}
	}

	if openers {
		scores[types.IntentGreeting] += c.thresholds.OpenerBoost
	}
	if a.entities.HasLocation() {
		scores[types.IntentSearchByLocation] += c.thresholds.LocationBoost
	}
	if a.entities.HasActivity() {
		scores[types.IntentSearchByActivity] += c.thresholds.ActivityBoost
	}
	for _, q := range c.questions {
		if spans := occurrences(a.text, q); len(spans) > 0 && !spans[0].overlaps(a.entityMask) {
			scores[types.IntentGetDetails] += c.thresholds.QuestionBoost
			break
		}
	}

	for intent, s := range scores {
		if s <= 0 {
			delete(scores, intent)
		}
	}
	return scores
}

// Classify resolves text to exactly one intent. Text that triggers nothing, or
// only weak evidence below the minimum score, is unknown with zero confidence.
func (c *Classifier) Classify(text string) types.IntentResult {
	normalized := normalize(text)
	a := c.extract(normalized)
	scores := c.score(a)

	result := types.IntentResult{
		Intent:       types.IntentUnknown,
		Confidence:   0,
		Entities:     a.entities,
		OriginalText: text,
	}

	var best types.Intent
	var bestScore, total float64
	for _, intent := range types.IntentPriority {
		s := scores[intent]
		total += s
		if s > bestScore {
			best, bestScore = intent, s
		}
	}
	if len(scores) > 0 {
		result.Scores = make(map[types.Intent]float64, len(scores))
		for intent, s := range scores {
			result.Scores[intent] = round(s)
		}
	}
	if bestScore < c.thresholds.MinScore || total == 0 {
		return result
	}

	damp := 1.0
	if c.thresholds.Saturation > 0 {
		damp = math.Min(1, bestScore/c.thresholds.Saturation)
	}
	result.Intent = best
	result.Confidence = round(bestScore / total * damp)
	return result
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Describe renders a short human readable summary of an entity bundle, used in logs.
func Describe(e types.EntityBundle) string {
	parts := make([]string, 0, 3)
	if len(e.Locations) > 0 {
		names := make([]string, len(e.Locations))
		for i, l := range e.Locations {
			names[i] = l.Canonical
		}
		parts = append(parts, "locations="+strings.Join(names, ","))
	}
	if len(e.Activities) > 0 {
		parts = append(parts, "activities="+strings.Join(e.Activities, ","))
	}
	if len(e.Keywords) > 0 {
		parts = append(parts, "keywords="+strings.Join(e.Keywords, ","))
	}
	return strings.Join(parts, " ")
}
