package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/cmms-console/internal/config"
	"github.com/Spok95/cmms-console/internal/session"
	"github.com/redis/go-redis/v9"
)

// OpenStore хранилище сессии по session.driver. Вызывающий закрывает его через close.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (session.Store, func() error, error) {
	switch cfg.Session.Driver {
	case "sqlite":
		st, err := session.OpenSQLite(ctx, cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		log.Debug("session store", "driver", "sqlite", "path", cfg.Session.SQLitePath)
		return st, st.Close, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis not available at %s: %w", cfg.Session.Redis.Addr, err)
		}
		log.Debug("session store", "driver", "redis", "addr", cfg.Session.Redis.Addr)
		st := session.NewRedisStore(rdb, cfg.Session.Redis.Prefix)
		return st, st.Close, nil

	case "memory":
		return session.NewMemoryStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}
