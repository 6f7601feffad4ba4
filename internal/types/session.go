package types

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 10
	DefaultSessionTTL   = 24 * time.Hour
)

// Session is the conversational state held for one conversant.
type Session struct {
	ID          uuid.UUID    `json:"session_id"`
	UserID      *string      `json:"user_id,omitempty"`
	History     []Turn       `json:"history"`
	LastIntent  Intent       `json:"last_intent,omitempty"`
	Context     QueryContext `json:"context"`
	Preferences Preferences  `json:"preferences"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Turn is one user utterance recorded in the session history.
type Turn struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Intent    Intent    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryContext is the last resolved location/activity context of a session.
// Follow-up turns without entities of their own inherit it.
type QueryContext struct {
	Province   string   `json:"province,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

func (c QueryContext) Empty() bool {
	return c.Province == "" && len(c.Activities) == 0
}

// Preferences are explicit overrides set by the user. Nil means unset.
type Preferences struct {
	PreferredProvince *string  `json:"preferred_province,omitempty" validate:"omitempty,province"`
	MaxResults        *int     `json:"max_results,omitempty" validate:"omitempty,min=1,result_cap"`
	Interests         []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,activity"`
	Language          *string  `json:"language,omitempty" validate:"omitempty,oneof=th en"`
}

// Empty reports whether no preference key is set.
func (p Preferences) Empty() bool {
	return p.PreferredProvince == nil && p.MaxResults == nil && p.Interests == nil && p.Language == nil
}

// Merge returns p with every key set in update overwriting its counterpart.
// Keys absent from update are kept.
func (p Preferences) Merge(update Preferences) Preferences {
	merged := p.Clone()
	if update.PreferredProvince != nil {
		v := *update.PreferredProvince
		merged.PreferredProvince = &v
	}
	if update.MaxResults != nil {
		v := *update.MaxResults
		merged.MaxResults = &v
	}
	if update.Interests != nil {
		merged.Interests = slices.Clone(update.Interests)
	}
	if update.Language != nil {
		v := *update.Language
		merged.Language = &v
	}
	return merged
}

func (p Preferences) Clone() Preferences {
	out := Preferences{Interests: slices.Clone(p.Interests)}
	if p.PreferredProvince != nil {
		v := *p.PreferredProvince
		out.PreferredProvince = &v
	}
	if p.MaxResults != nil {
		v := *p.MaxResults
		out.MaxResults = &v
	}
	if p.Language != nil {
		v := *p.Language
		out.Language = &v
	}
	return out
}

// NewSession builds a fresh session expiring ttl after now.
func NewSession(userID *string, now time.Time, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	var uid *string
	if userID != nil && *userID != "" {
		v := *userID
		uid = &v
	}
	return &Session{
		ID:        uuid.New(),
		UserID:    uid,
		History:   []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is dead at the given instant.
// A session is live strictly before ExpiresAt.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// RecordTurn appends turn, evicting the oldest entries so that at most limit remain,
// and updates LastIntent. A non-empty resolved context replaces the carried one.
func (s *Session) RecordTurn(turn Turn, resolved QueryContext, limit int, now time.Time) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	history := append(slices.Clone(s.History), turn)
	if over := len(history) - limit; over > 0 {
		history = history[over:]
	}
	s.History = history
	s.LastIntent = turn.Intent
	if !resolved.Empty() {
		s.Context = QueryContext{
			Province:   resolved.Province,
			Activities: slices.Clone(resolved.Activities),
		}
	}
	s.UpdatedAt = now
}

// Clone returns a deep copy safe to hand out to concurrent readers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.UserID != nil {
		v := *s.UserID
		out.UserID = &v
	}
	out.History = slices.Clone(s.History)
	if out.History == nil {
		out.History = []Turn{}
	}
	out.Context.Activities = slices.Clone(s.Context.Activities)
	out.Preferences = s.Preferences.Clone()
	return &out
}
