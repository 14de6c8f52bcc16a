//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance. URLBase is the
// server URL without a database path, in the shape the database router
// expects.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	URLBase   string
	User      string
	Password  string
	AdminDB   string
}

// NewPostgresContainer starts a Postgres container with the given admin
// database. The container is terminated when the test finishes.
func NewPostgresContainer(t *testing.T, adminDB string) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	const user, password = "grid", "grid-secret"
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(adminDB),
		tcpostgres.WithUsername(user),
		tcpostgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("parse postgres dsn: %v", err)
	}
	u.User = nil
	u.Path = "/"

	return &PostgresContainer{
		Container: container,
		URLBase:   u.String(),
		User:      user,
		Password:  password,
		AdminDB:   adminDB,
	}
}

// CreateDatabase creates an extra database on the server, for multi-tenant
// layouts.
func (p *PostgresContainer) CreateDatabase(t *testing.T, name string) {
	t.Helper()
	db := p.Open(t, p.AdminDB)
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", name)); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}
}

// Open connects to one database on the server and closes the handle when the
// test finishes.
func (p *PostgresContainer) Open(t *testing.T, name string) *sql.DB {
	t.Helper()
	u, err := url.Parse(p.URLBase)
	if err != nil {
		t.Fatalf("parse url base: %v", err)
	}
	u.User = url.UserPassword(p.User, p.Password)
	u.Path = "/" + name

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping %s: %v", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
