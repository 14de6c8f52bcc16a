// Package builder assembles the tenant tree from discovered tenant
// databases. Every Build produces a brand-new object graph; published trees
// are never touched.
package builder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tenantgrid/internal/loader"
	"tenantgrid/internal/tenant/models"
	"tenantgrid/pkg/platform/sentinel"
)

// loadConcurrency bounds parallel per-tenant profile loads during a rebuild.
const loadConcurrency = 4

// Router is the subset of the connection router the builder needs.
type Router interface {
	Discover(ctx context.Context) ([]string, error)
	Bind(ctx context.Context, dbName string) (*sql.DB, error)
}

// Builder walks discovered tenant databases and assembles the tree.
type Builder struct {
	router      Router
	loader      loader.Loader
	logger      *slog.Logger
	loadTimeout time.Duration
}

// New constructs a builder. loadTimeout bounds each tenant's profile load; a
// tenant that cannot be loaded in time is skipped, not fatal.
func New(router Router, ld loader.Loader, logger *slog.Logger, loadTimeout time.Duration) *Builder {
	return &Builder{router: router, loader: ld, logger: logger, loadTimeout: loadTimeout}
}

// Build materializes the full tenant tree rooted at rootDB. Two passes:
// first every discovered database becomes an unlinked node with its profile
// loaded, then nodes are linked to their parents by name, so listing order
// never matters. A tenant whose database is unreachable, or whose parent is
// not present, is excluded and reported in skipped; only an unreachable root
// aborts the build.
//
// The parent of a tenant database is encoded in its name: stripping the last
// underscore segment yields the parent database, and a two-segment name
// (prefix plus one segment) hangs directly off the root.
func (b *Builder) Build(ctx context.Context, rootDB string) (*models.Tenant, []string, error) {
	root, err := b.loadNode(ctx, rootDB)
	if err != nil {
		return nil, nil, fmt.Errorf("load root tenant %s: %w", rootDB, err)
	}

	dbs, err := b.router.Discover(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("discover tenants: %w", err)
	}

	// Pass one: materialize all nodes.
	var (
		mu      sync.Mutex
		nodes   = map[string]*models.Tenant{rootDB: root}
		skipped []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, db := range dbs {
		g.Go(func() error {
			node, err := b.loadNode(gctx, db)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				b.logger.Warn("skipping unreachable tenant", "db", db, "error", err)
				skipped = append(skipped, db)
				return nil
			}
			nodes[db] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Pass two: link children under parents, shallowest first so a reported
	// orphan is the highest unresolved node, not every descendant.
	linkOrder := make([]string, 0, len(nodes))
	for db := range nodes {
		if db != rootDB {
			linkOrder = append(linkOrder, db)
		}
	}
	sort.Slice(linkOrder, func(i, j int) bool {
		di, dj := strings.Count(linkOrder[i], "_"), strings.Count(linkOrder[j], "_")
		if di != dj {
			return di < dj
		}
		return linkOrder[i] < linkOrder[j]
	})

	for _, db := range linkOrder {
		parentDB := parentOf(db)
		parent := root
		if parentDB != "" {
			p, ok := nodes[parentDB]
			if !ok {
				b.logger.Warn("excluding tenant", "db", db, "parent", parentDB,
					"error", sentinel.ErrReconciliation)
				skipped = append(skipped, db)
				delete(nodes, db)
				continue
			}
			parent = p
		}
		parent.AddChild(nodes[db])
	}

	return root, skipped, nil
}

func (b *Builder) loadNode(ctx context.Context, dbName string) (*models.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, b.loadTimeout)
	defer cancel()

	db, err := b.router.Bind(ctx, dbName)
	if err != nil {
		return nil, err
	}

	node := models.NewTenant(dbName)
	if node.Profile, err = b.loader.LoadProfile(ctx, dbName, db); err != nil {
		return nil, err
	}
	if node.Rules, err = b.loader.LoadRules(ctx, dbName, db); err != nil {
		return nil, err
	}
	return node, nil
}

// parentOf strips the last underscore segment: res_a_b belongs to res_a. A
// two-segment name has no intermediate parent and attaches to the root.
func parentOf(dbName string) string {
	idx := strings.LastIndex(dbName, "_")
	if idx <= 0 {
		return ""
	}
	parent := dbName[:idx]
	if !strings.Contains(parent, "_") {
		// Only the prefix remains: direct child of the root.
		return ""
	}
	return parent
}
