// Package dbrouter discovers tenant databases and routes database work to
// the correct per-tenant connection pool. Tenant identity is always an
// explicit argument; there is no process-wide "current tenant".
package dbrouter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"tenantgrid/internal/platform/config"
	"tenantgrid/pkg/platform/sentinel"
)

// Opener opens a database handle for a DSN and verifies it is reachable.
// Swapped out in tests.
type Opener func(ctx context.Context, dsn string) (*sql.DB, error)

// DefaultOpener opens a postgres pool and pings it within the caller's
// deadline.
func DefaultOpener(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Router caches one connection pool per tenant database. The cache grows
// monotonically: pools are never closed or evicted during normal operation,
// and the pool count is bounded by the number of discovered tenant databases.
type Router struct {
	cfg    config.DatabaseConfig
	opener Opener
	logger *slog.Logger

	mu     sync.RWMutex
	conns  map[string]*sql.DB
	flight singleflight.Group
}

// New constructs a router. A nil opener selects DefaultOpener.
func New(cfg config.DatabaseConfig, opener Opener, logger *slog.Logger) *Router {
	if opener == nil {
		opener = DefaultOpener
	}
	return &Router{
		cfg:    cfg,
		opener: opener,
		logger: logger,
		conns:  make(map[string]*sql.DB),
	}
}

// Bind returns the cached pool for dbName, creating it on first access.
// Concurrent first accesses to the same database are collapsed into a single
// creation; both callers observe the same handle. An unreachable database
// yields an error wrapping sentinel.ErrConnection.
func (r *Router) Bind(ctx context.Context, dbName string) (*sql.DB, error) {
	r.mu.RLock()
	db, ok := r.conns[dbName]
	r.mu.RUnlock()
	if ok {
		return db, nil
	}

	v, err, _ := r.flight.Do(dbName, func() (any, error) {
		r.mu.RLock()
		db, ok := r.conns[dbName]
		r.mu.RUnlock()
		if ok {
			return db, nil
		}

		dsn, err := r.dsn(dbName)
		if err != nil {
			return nil, err
		}
		db, err = r.opener(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w: %v", dbName, sentinel.ErrConnection, err)
		}

		r.mu.Lock()
		r.conns[dbName] = db
		r.mu.Unlock()
		r.logger.Info("tenant database bound", "db", dbName)
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

// WithTenant executes fn against the named tenant's connection.
func (r *Router) WithTenant(ctx context.Context, dbName string, fn func(ctx context.Context, db *sql.DB) error) error {
	db, err := r.Bind(ctx, dbName)
	if err != nil {
		return err
	}
	return fn(ctx, db)
}

// Discover lists tenant databases matching the configured name prefix, in
// lexical order. The administrative root database is excluded; callers treat
// it separately as the tree root.
func (r *Router) Discover(ctx context.Context) ([]string, error) {
	admin, err := r.Bind(ctx, r.cfg.AdminDB)
	if err != nil {
		return nil, err
	}

	rows, err := admin.QueryContext(ctx,
		`SELECT datname FROM pg_database WHERE datname LIKE $1 || '%' AND NOT datistemplate ORDER BY datname`,
		r.cfg.TenantPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("discover tenant databases: %w: %v", sentinel.ErrConnection, err)
	}
	defer rows.Close()

	var dbs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan database name: %w", err)
		}
		if name == r.cfg.AdminDB {
			continue
		}
		dbs = append(dbs, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("discover tenant databases: %w", err)
	}
	return dbs, nil
}

// Bound reports the number of cached pools, for observability and tests.
func (r *Router) Bound() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Router) dsn(dbName string) (string, error) {
	u, err := url.Parse(r.cfg.URLBase)
	if err != nil {
		return "", fmt.Errorf("parse datasource url base: %w", err)
	}
	u.Path = "/" + dbName
	if r.cfg.User != "" {
		u.User = url.UserPassword(r.cfg.User, r.cfg.Password)
	}
	return u.String(), nil
}
