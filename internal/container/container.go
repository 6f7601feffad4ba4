package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/athipan1/Database-painaidee/config"
	"github.com/athipan1/Database-painaidee/internal/api/attractions"
	"github.com/athipan1/Database-painaidee/internal/api/conversation"
)

// Container holds all application dependencies
type Container struct {
	Config              *config.Config
	Logger              *slog.Logger
	Pool                *pgxpool.Pool
	Redis               *redis.Client
	Sessions            conversation.SessionStore
	Attractions         attractions.Repository
	ConversationService conversation.Service
	ConversationHandler *conversation.HandlerImpl
	Sweeper             *conversation.Sweeper
}

// NewContainer wires the conversation pipeline on top of an open pool.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		Pool:   pool,
	}

	storeOpts := conversation.StoreOptions{
		HistoryLimit: cfg.Conversation.HistoryLimit,
		TTL:          cfg.Conversation.SessionTTL,
	}

	sessions, err := c.newSessionStore(storeOpts)
	if err != nil {
		return nil, err
	}
	c.Sessions = sessions

	var repo attractions.Repository = attractions.NewRepository(pool, logger)
	if ttl := cfg.Conversation.SearchCacheTTL; ttl > 0 {
		repo = attractions.NewCachedRepository(repo, ttl, logger)
	}
	c.Attractions = repo

	c.ConversationService = conversation.NewServiceImpl(sessions, repo, conversation.ServiceConfig{
		DefaultLimit: cfg.Conversation.DefaultLimit,
		MaxLimit:     cfg.Conversation.MaxLimit,
		QueryTimeout: cfg.Conversation.QueryTimeout,
	}, logger)
	c.ConversationHandler = conversation.NewHandlerImpl(c.ConversationService, logger)
	c.Sweeper = conversation.NewSweeper(sessions, cfg.Conversation.SweepInterval, logger)

	logger.Info("Container initialized",
		slog.String("session_store", cfg.Conversation.SessionStore),
		slog.Duration("search_cache_ttl", cfg.Conversation.SearchCacheTTL))
	return c, nil
}

func (c *Container) newSessionStore(opts conversation.StoreOptions) (conversation.SessionStore, error) {
	switch c.Config.Conversation.SessionStore {
	case config.SessionStoreMemory:
		return conversation.NewMemorySessionStore(opts, c.Logger), nil
	case config.SessionStoreRedis:
		rc := c.Config.Repositories.Redis
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := c.Redis.Ping(context.Background()).Err(); err != nil {
			c.Logger.Error("Failed to connect to redis", slog.String("addr", rc.Addr), slog.Any("error", err))
			_ = c.Redis.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return conversation.NewRedisSessionStore(c.Redis, opts, c.Logger), nil
	case config.SessionStorePostgres, "":
		return conversation.NewPostgresSessionStore(c.Pool, opts, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", c.Config.Conversation.SessionStore)
	}
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Error closing redis client", slog.Any("error", err))
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
