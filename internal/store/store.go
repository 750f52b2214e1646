// Package store arma los repositorios según la configuración.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/bizdesk/internal/config"
	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/store/memory"
	"github.com/dropDatabas3/bizdesk/internal/store/pg"
	rstore "github.com/dropDatabas3/bizdesk/internal/store/redis"
)

// Stores agrupa los repositorios y los clientes que los respaldan.
type Stores struct {
	Users repository.UserRepository
	Codes repository.CodeRepository

	// Pool y Redis quedan nil si el backend no se usa.
	Pool  *pgxpool.Pool
	Redis *goredis.Client
}

// Open conecta los backends configurados.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	log := logger.From(ctx).With(logger.Component("store"))
	s := &Stores{}

	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, pg.Options{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		s.Pool = pool
		s.Users = pg.NewUserRepo(pool)
	case "memory":
		s.Users = memory.NewUserRepo()
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Addr != "" {
		s.Redis = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("store: redis ping: %w", err)
		}
	}

	switch cfg.OTP.Store {
	case "postgres":
		if s.Pool == nil {
			s.Close()
			return nil, fmt.Errorf("store: otp.store postgres requires postgres storage")
		}
		s.Codes = pg.NewCodeRepo(s.Pool)
	case "redis":
		if s.Redis == nil {
			s.Close()
			return nil, fmt.Errorf("store: otp.store redis requires redis.addr")
		}
		s.Codes = rstore.NewCodeRepo(s.Redis, cfg.Redis.Prefix)
	case "memory":
		s.Codes = memory.NewCodeRepo()
	default:
		s.Close()
		return nil, fmt.Errorf("store: unknown otp.store %q", cfg.OTP.Store)
	}

	log.Info("stores ready",
		logger.String("users", cfg.Storage.Driver),
		logger.String("codes", cfg.OTP.Store),
		logger.Bool("redis", s.Redis != nil),
	)
	return s, nil
}

// Close libera las conexiones abiertas.
func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
}
