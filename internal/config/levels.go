package config

import (
	"fmt"

	"tenantgrid/internal/rules"
	"tenantgrid/pkg/platform/sentinel"
)

// AncestorLevels builds the rule levels for targetDB from a snapshot: the
// chain of tenants from the root down to the target, each with its own
// ordered rule list. Level numbers start at 0 for the root.
func AncestorLevels(snap *Snapshot, targetDB string) ([]rules.Level, error) {
	node := snap.Registry.LookupTenant(targetDB)
	if node == nil {
		return nil, fmt.Errorf("tenant %s: %w", targetDB, sentinel.ErrNotFound)
	}

	// Walk parent references up to the root, then reverse.
	var chain []string
	for db := targetDB; db != ""; {
		chain = append(chain, db)
		cur := snap.Registry.LookupTenant(db)
		if cur == nil {
			return nil, fmt.Errorf("tenant %s: %w", db, sentinel.ErrReconciliation)
		}
		db = cur.Parent
	}

	levels := make([]rules.Level, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		t := snap.Registry.LookupTenant(chain[i])
		levels = append(levels, rules.Level{
			Level:    len(chain) - 1 - i,
			TenantID: t.DBName,
			Rules:    t.Rules,
		})
	}
	return levels, nil
}
