// Package pg implementa los repositorios sobre PostgreSQL (pgx v5).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

// DB es el subconjunto de *pgxpool.Pool que usan los repos.
// pgxmock.PgxPoolIface también lo satisface.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Options del pool.
type Options struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// Connect crea el pool y verifica conectividad.
func Connect(ctx context.Context, o Options) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(o.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if o.MaxConns > 0 {
		poolCfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		poolCfg.MinConns = o.MinConns
	}
	if o.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = o.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return pool, nil
}

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

// mapErr traduce errores de pgx a errores de dominio.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return repository.ErrConflict
		case codeCheckViolation:
			return fmt.Errorf("%w: %s", repository.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("pg: %s: %w", op, err)
}
