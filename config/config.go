package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Log    struct {
		Level      string `mapstructure:"level"`
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"maxSizeMB"`
		MaxBackups int    `mapstructure:"maxBackups"`
		MaxAgeDays int    `mapstructure:"maxAgeDays"`
	} `mapstructure:"log"`
	Server struct {
		HTTPPort        string        `mapstructure:"HTTPPort"`
		Timeout         time.Duration `mapstructure:"HTTPTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
			MaxConns          int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
		Audience  string `mapstructure:"audience"`
	} `mapstructure:"auth"`
	Conversation struct {
		HistoryLimit   int           `mapstructure:"historyLimit"`
		SessionTTL     time.Duration `mapstructure:"sessionTTL"`
		DefaultLimit   int           `mapstructure:"defaultLimit"`
		MaxLimit       int           `mapstructure:"maxLimit"`
		QueryTimeout   time.Duration `mapstructure:"queryTimeout"`
		SweepInterval  time.Duration `mapstructure:"sweepInterval"`
		SessionStore   string        `mapstructure:"sessionStore"`
		SearchCacheTTL time.Duration `mapstructure:"searchCacheTTL"`
	} `mapstructure:"conversation"`
	RateLimit struct {
		RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
		Burst             int     `mapstructure:"burst"`
	} `mapstructure:"rateLimit"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
}

const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// PAINAIDEE_CONVERSATION_SESSIONSTORE overrides conversation.sessionStore
	v.SetEnvPrefix("PAINAIDEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate rejects settings the conversation pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Conversation.SessionStore {
	case "", SessionStorePostgres, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unknown conversation.sessionStore %q", c.Conversation.SessionStore)
	}
	if c.Conversation.MaxLimit < 0 || c.Conversation.DefaultLimit < 0 {
		return fmt.Errorf("conversation limits must not be negative")
	}
	if c.Conversation.MaxLimit > 0 && c.Conversation.DefaultLimit > c.Conversation.MaxLimit {
		return fmt.Errorf("conversation.defaultLimit %d exceeds maxLimit %d", c.Conversation.DefaultLimit, c.Conversation.MaxLimit)
	}
	if c.Conversation.SessionTTL < 0 {
		return fmt.Errorf("conversation.sessionTTL must not be negative")
	}
	return nil
}
