package container

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athipan1/Database-painaidee/config"
	"github.com/athipan1/Database-painaidee/internal/api/attractions"
	"github.com/athipan1/Database-painaidee/internal/api/conversation"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

func testConfig(store string, cacheTTL time.Duration) *config.Config {
	var cfg config.Config
	cfg.Conversation.SessionStore = store
	cfg.Conversation.SearchCacheTTL = cacheTTL
	cfg.Conversation.SweepInterval = time.Minute
	return &cfg
}

func TestNewContainer_MemoryStore(t *testing.T) {
	c, err := NewContainer(testConfig(config.SessionStoreMemory, 30*time.Second), nil, testLogger)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &conversation.MemorySessionStore{}, c.Sessions)
	assert.IsType(t, &attractions.CachedRepository{}, c.Attractions)
	assert.NotNil(t, c.ConversationService)
	assert.NotNil(t, c.ConversationHandler)
	assert.NotNil(t, c.Sweeper)
	assert.Nil(t, c.Redis)
}

func TestNewContainer_CacheDisabled(t *testing.T) {
	c, err := NewContainer(testConfig(config.SessionStoreMemory, 0), nil, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &attractions.RepositoryImpl{}, c.Attractions)
}

func TestNewContainer_PostgresIsDefault(t *testing.T) {
	c, err := NewContainer(testConfig("", 0), nil, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &conversation.PostgresSessionStore{}, c.Sessions)
}

func TestNewContainer_Errors(t *testing.T) {
	_, err := NewContainer(testConfig("mongo", 0), nil, testLogger)
	assert.ErrorContains(t, err, "unknown session store")

	cfg := testConfig(config.SessionStoreRedis, 0)
	cfg.Repositories.Redis.Addr = "127.0.0.1:1"
	_, err = NewContainer(cfg, nil, testLogger)
	assert.ErrorContains(t, err, "failed to connect to redis")
}
