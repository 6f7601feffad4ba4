package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	appLogger "github.com/athipan1/Database-painaidee/app/logger"
	appMiddleware "github.com/athipan1/Database-painaidee/app/middleware"
	"github.com/athipan1/Database-painaidee/internal/api/conversation"
	"github.com/athipan1/Database-painaidee/internal/router"
	"github.com/athipan1/Database-painaidee/internal/types"
)

var e2eSecret = []byte("e2e-secret")

// fixtureRepository answers searches from a fixed attraction list with the
// same matching rules as the SQL repository.
type fixtureRepository struct {
	records []types.Attraction
}

func newFixtureRepository() *fixtureRepository {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := func(id int64, title, province string, popularity float64, tags ...string) types.Attraction {
		return types.Attraction{
			ID: id, ExternalID: 1000 + id, Title: title, Province: province,
			Tags: tags, PopularityScore: popularity, CreatedAt: created.Add(time.Duration(id) * time.Hour),
		}
	}
	return &fixtureRepository{records: []types.Attraction{
		rec(1, "Wat Phra That Doi Suthep", "Chiang Mai", 9.5, "temple", "mountain"),
		rec(2, "Wat Chedi Luang", "Chiang Mai", 8.7, "temple", "history"),
		rec(3, "Doi Inthanon National Park", "Chiang Mai", 9.1, "nature", "mountain", "waterfall"),
		rec(4, "Chiang Mai Night Bazaar", "Chiang Mai", 7.9, "market", "shopping", "food"),
		rec(5, "Wat Pho", "Bangkok", 9.3, "temple", "culture"),
		rec(6, "Patong Beach", "Phuket", 8.8, "beach"),
		rec(7, "Kata Beach", "Phuket", 8.2, "beach", "diving"),
		rec(8, "Railay Beach", "Krabi", 9.0, "beach", "island"),
	}}
}

func (f *fixtureRepository) matches(a types.Attraction, q types.QueryDescriptor) bool {
	if p := q.Filters.Province; p != "" && !strings.Contains(strings.ToLower(a.Province), strings.ToLower(p)) {
		return false
	}
	if len(q.Filters.Tags) > 0 && !slices.ContainsFunc(q.Filters.Tags, func(t string) bool { return slices.Contains(a.Tags, t) }) {
		return false
	}
	if len(q.SearchTerms) == 0 {
		return true
	}
	for _, t := range q.SearchTerms {
		lt := strings.ToLower(t)
		if strings.Contains(strings.ToLower(a.Title), lt) || strings.Contains(strings.ToLower(a.Body), lt) || slices.Contains(a.Tags, lt) {
			return true
		}
	}
	return false
}

func (f *fixtureRepository) Search(_ context.Context, q types.QueryDescriptor) ([]types.Attraction, error) {
	out := []types.Attraction{}
	for _, a := range f.records {
		if f.matches(a, q) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(x, y types.Attraction) int {
		if q.OrderBy == types.OrderByCreatedAt {
			return y.CreatedAt.Compare(x.CreatedAt)
		}
		switch {
		case x.PopularityScore > y.PopularityScore:
			return -1
		case x.PopularityScore < y.PopularityScore:
			return 1
		}
		return 0
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// newTestServer assembles the HTTP stack the way main does, on an in-memory
// session store and the fixture attractions.
func newTestServer(logger *slog.Logger, rps float64, burst int) http.Handler {
	sessions := conversation.NewMemorySessionStore(conversation.StoreOptions{}, logger)
	svc := conversation.NewServiceImpl(sessions, newFixtureRepository(), conversation.ServiceConfig{}, logger)

	api := router.SetupRouter(&router.Config{
		ConversationHandler:    conversation.NewHandlerImpl(svc, logger),
		AuthenticateMiddleware: appMiddleware.OptionalAuthenticate(e2eSecret, "", logger),
		RateLimitMiddleware:    appMiddleware.NewRateLimiter(rps, burst).Handler,
		AllowedOrigins:         []string{"http://localhost:3000"},
	})

	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(appLogger.StructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Mount("/", api)
	return r
}

// E2ETestSuite drives complete conversations through the HTTP API.
type E2ETestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func (suite *E2ETestSuite) SetupSuite() {
	suite.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	suite.server = httptest.NewServer(newTestServer(suite.logger, 1000, 1000))
	suite.baseURL = suite.server.URL + "/api/v1"
	suite.client = &http.Client{Timeout: 10 * time.Second}
}

func (suite *E2ETestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
}

func (suite *E2ETestSuite) makeRequest(method, path string, body any, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(js)
	}
	req, err := http.NewRequest(method, suite.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return suite.client.Do(req)
}

// do performs the request, checks the status and decodes the body into out.
func (suite *E2ETestSuite) do(method, path string, body any, wantStatus int, out any) {
	resp, err := suite.makeRequest(method, path, body, "")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(wantStatus, resp.StatusCode, "%s %s", method, path)
	if out != nil {
		suite.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
}

func (suite *E2ETestSuite) createSession() uuid.UUID {
	var created types.CreateSessionResponse
	suite.do(http.MethodPost, "/conversation/session", nil, http.StatusCreated, &created)
	suite.NotEqual(uuid.Nil, created.SessionID)
	suite.Equal(24.0, created.ExpiresInHours)
	return created.SessionID
}

func (suite *E2ETestSuite) chat(text string, sessionID *uuid.UUID) types.ChatResponse {
	var resp types.ChatResponse
	suite.do(http.MethodPost, "/conversation/chat", types.ChatRequest{Text: text, SessionID: sessionID}, http.StatusOK, &resp)
	return resp
}

func (suite *E2ETestSuite) TestConversationWorkflow() {
	id := suite.createSession()

	// Step 1: greeting never consults the store
	greet := suite.chat("สวัสดีครับ ผมต้องการหาที่เที่ยว", &id)
	suite.Equal(id, greet.SessionID)
	suite.False(greet.IsNewSession)
	suite.Equal(types.IntentGreeting, greet.Intent.Intent)
	suite.NotEmpty(greet.Message)
	suite.Empty(greet.Results)

	// Step 2: location search
	loc := suite.chat("หาที่เที่ยวในเชียงใหม่", &id)
	suite.Equal(types.IntentSearchByLocation, loc.Intent.Intent)
	suite.Equal(4, loc.TotalResults)
	for _, a := range loc.Results {
		suite.Equal("Chiang Mai", a.Province)
	}
	suite.Equal("พบสถานที่ท่องเที่ยวในเชียงใหม่ จำนวน 4 แห่งครับ:", loc.Message)

	// Step 3: follow-up inherits the province
	follow := suite.chat("มีวัดสวยๆ ไหม", &id)
	suite.Equal(types.IntentSearchByActivity, follow.Intent.Intent)
	suite.Require().Len(follow.Results, 2)
	suite.Equal("Wat Phra That Doi Suthep", follow.Results[0].Title)
	suite.Equal("Wat Chedi Luang", follow.Results[1].Title)

	// Step 4: session reflects the turns
	var sess types.Session
	suite.do(http.MethodGet, "/conversation/session/"+id.String(), nil, http.StatusOK, &sess)
	suite.Len(sess.History, 3)
	suite.Equal(types.IntentSearchByActivity, sess.LastIntent)
	suite.Equal("Chiang Mai", sess.Context.Province)
	suite.Equal([]string{"temple"}, sess.Context.Activities)

	// Step 5: end the session
	suite.do(http.MethodDelete, "/conversation/session/"+id.String(), nil, http.StatusNoContent, nil)
	suite.do(http.MethodGet, "/conversation/session/"+id.String(), nil, http.StatusNotFound, nil)

	// a turn on the ended session starts a new one
	again := suite.chat("สวัสดี", &id)
	suite.True(again.IsNewSession)
	suite.NotEqual(id, again.SessionID)
}

func (suite *E2ETestSuite) TestPreferencesWorkflow() {
	id := suite.createSession()

	var prefs types.PreferencesResponse
	suite.do(http.MethodPost, "/conversation/preferences", map[string]any{
		"session_id": id,
		"preferences": map[string]any{
			"preferred_province": "ภูเก็ต",
			"interests":          []string{"ทะเล"},
			"language":           "EN",
		},
	}, http.StatusOK, &prefs)
	suite.True(prefs.Success)
	suite.Require().NotNil(prefs.Preferences.PreferredProvince)
	suite.Equal("Phuket", *prefs.Preferences.PreferredProvince)
	suite.Equal([]string{"beach"}, prefs.Preferences.Interests)
	suite.Equal("en", *prefs.Preferences.Language)

	rec := suite.chat("แนะนำที่เที่ยวหน่อย", &id)
	suite.Equal(types.IntentGetRecommendations, rec.Intent.Intent)
	suite.Require().Len(rec.Results, 2)
	suite.Equal("Patong Beach", rec.Results[0].Title)
	suite.Equal("Here are 2 attractions I recommend:", rec.Message)

	// a later update merges instead of replacing
	suite.do(http.MethodPost, "/conversation/preferences", map[string]any{
		"session_id":  id,
		"preferences": map[string]any{"max_results": 1},
	}, http.StatusOK, &prefs)
	suite.Equal("Phuket", *prefs.Preferences.PreferredProvince)
	suite.Equal(1, *prefs.Preferences.MaxResults)

	rec = suite.chat("แนะนำที่เที่ยวหน่อย", &id)
	suite.Len(rec.Results, 1)
	suite.Equal("Here is 1 attraction I recommend:", rec.Message)

	// invalid values are rejected as a whole
	suite.do(http.MethodPost, "/conversation/preferences", map[string]any{
		"session_id":  id,
		"preferences": map[string]any{"max_results": 1000, "language": "th"},
	}, http.StatusBadRequest, nil)
	var sess types.Session
	suite.do(http.MethodGet, "/conversation/session/"+id.String(), nil, http.StatusOK, &sess)
	suite.Equal("en", *sess.Preferences.Language)
}

func (suite *E2ETestSuite) TestStatelessSearch() {
	var resp types.QueryResponse
	suite.do(http.MethodPost, "/search/from-text", types.QueryRequest{Text: "หาวัดในกรุงเทพ"}, http.StatusOK, &resp)
	suite.Equal(types.IntentSearchByLocation, resp.Intent.Intent)
	suite.Equal("Bangkok", resp.Query.Filters.Province)
	suite.Contains(resp.Query.SearchTerms, "temple")
	suite.Require().Len(resp.Results, 1)
	suite.Equal("Wat Pho", resp.Results[0].Title)
	suite.Nil(resp.SessionID)

	var intent types.IntentResult
	suite.do(http.MethodPost, "/nlu/intent", types.TextRequest{Text: "hello there"}, http.StatusOK, &intent)
	suite.Equal(types.IntentGreeting, intent.Intent)
}

func (suite *E2ETestSuite) TestErrorHandlingWorkflow() {
	suite.do(http.MethodPost, "/conversation/chat", map[string]any{"text": "   "}, http.StatusBadRequest, nil)
	suite.do(http.MethodPost, "/nlu/intent", map[string]any{}, http.StatusBadRequest, nil)
	suite.do(http.MethodGet, "/conversation/session/not-a-uuid", nil, http.StatusBadRequest, nil)
	suite.do(http.MethodGet, "/conversation/session/"+uuid.NewString(), nil, http.StatusNotFound, nil)
	suite.do(http.MethodPost, "/conversation/preferences", map[string]any{
		"session_id":  uuid.New(),
		"preferences": map[string]any{"language": "en"},
	}, http.StatusNotFound, nil)

	var errResp types.Response
	suite.do(http.MethodPost, "/conversation/chat", map[string]any{"text": "x", "extra": true}, http.StatusBadRequest, &errResp)
	suite.False(errResp.Success)
	suite.NotEmpty(errResp.RequestID)
}

func (suite *E2ETestSuite) TestAuthenticatedSession() {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, appMiddleware.Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(e2eSecret)
	suite.Require().NoError(err)

	resp, err := suite.makeRequest(http.MethodPost, "/conversation/session", nil, token)
	suite.Require().NoError(err)
	var created types.CreateSessionResponse
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	var sess types.Session
	suite.do(http.MethodGet, "/conversation/session/"+created.SessionID.String(), nil, http.StatusOK, &sess)
	suite.Require().NotNil(sess.UserID)
	suite.Equal("user-123", *sess.UserID)

	resp, err = suite.makeRequest(http.MethodPost, "/conversation/session", nil, "garbage")
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *E2ETestSuite) TestConcurrentConversations() {
	const numSessions = 10
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, numSessions)
	for i := range ids {
		ids[i] = suite.createSession()
	}

	errs := make(chan error, numSessions)
	for i := 0; i < numSessions; i++ {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for _, text := range []string{"หาที่เที่ยวในเชียงใหม่", "มีวัดสวยๆ ไหม"} {
				resp, err := suite.makeRequest(http.MethodPost, "/conversation/chat", types.ChatRequest{Text: text, SessionID: &id}, "")
				if err != nil {
					errs <- err
					return
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					errs <- fmt.Errorf("session %s: status %d", id, resp.StatusCode)
					return
				}
			}
		}(ids[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.NoError(err)
	}

	for _, id := range ids {
		var sess types.Session
		suite.do(http.MethodGet, "/conversation/session/"+id.String(), nil, http.StatusOK, &sess)
		suite.Len(sess.History, 2)
	}
}

func TestE2E(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

func TestChatRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(newTestServer(logger, 0.001, 2))
	defer srv.Close()

	post := func() int {
		resp, err := http.Post(srv.URL+"/api/v1/conversation/chat", "application/json", strings.NewReader(`{"text":"สวัสดี"}`))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	// other routes are not limited
	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
