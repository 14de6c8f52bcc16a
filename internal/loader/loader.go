// Package loader reads raw tenant configuration rows from one tenant
// database at a time. The tree builder consumes it through the Loader
// interface so tests can substitute canned profiles.
package loader

import (
	"context"
	"database/sql"

	"tenantgrid/internal/rules"
	"tenantgrid/internal/tenant/models"
)

// Loader reads one tenant's cached profile data and rule definitions. The
// database handle is always passed explicitly; the loader holds no
// connection state of its own.
type Loader interface {
	LoadProfile(ctx context.Context, dbName string, db *sql.DB) (*models.Profile, error)
	LoadRules(ctx context.Context, dbName string, db *sql.DB) ([]rules.Definition, error)
}
