package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_EmbeddedDefaults(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Conversation.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.Conversation.SessionTTL)
	assert.Equal(t, 50, cfg.Conversation.MaxLimit)
	assert.Equal(t, SessionStorePostgres, cfg.Conversation.SessionStore)
	assert.Equal(t, "8000", cfg.Server.HTTPPort)
}

func TestInitConfig_EnvOverride(t *testing.T) {
	t.Setenv("PAINAIDEE_CONVERSATION_SESSIONSTORE", "memory")
	cfg, err := InitConfig()
	require.NoError(t, err)
	assert.Equal(t, SessionStoreMemory, cfg.Conversation.SessionStore)
}

func TestConfig_Validate(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	cfg.Conversation.SessionStore = "mongo"
	assert.Error(t, cfg.Validate())

	cfg.Conversation.SessionStore = SessionStoreRedis
	cfg.Conversation.DefaultLimit = 60
	cfg.Conversation.MaxLimit = 50
	assert.Error(t, cfg.Validate())
}
