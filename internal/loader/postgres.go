package loader

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"tenantgrid/internal/rules"
	"tenantgrid/internal/tenant/models"
)

// Postgres loads tenant profiles from the tenant's own postgres database.
type Postgres struct{}

// NewPostgres returns the SQL-backed loader.
func NewPostgres() *Postgres {
	return &Postgres{}
}

// LoadProfile reads partner, DID and rate-plan rows and assembles the
// profile's lookup maps in one pass per table.
func (l *Postgres) LoadProfile(ctx context.Context, dbName string, db *sql.DB) (*models.Profile, error) {
	profile := models.NewProfile()

	if err := l.loadPartners(ctx, db, profile); err != nil {
		return nil, err
	}
	if err := l.loadDIDs(ctx, db, profile); err != nil {
		return nil, err
	}
	if err := l.loadRatePlans(ctx, db, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *Postgres) loadPartners(ctx context.Context, db *sql.DB, profile *models.Profile) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id_partner, partner_name,
		       COALESCE(sip_account, ''), COALESCE(route_ip, ''),
		       COALESCE(prefixes, '{}')
		FROM partner`)
	if err != nil {
		return fmt.Errorf("load partners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Partner{}
		if err := rows.Scan(&p.ID, &p.Name, &p.SIPAccount, &p.RouteIP, pq.Array(&p.Prefixes)); err != nil {
			return fmt.Errorf("scan partner: %w", err)
		}
		profile.Partners[p.ID] = p
		profile.PartnerIDByName[strings.ToLower(p.Name)] = p.ID
		if p.SIPAccount != "" {
			profile.PartnerBySIPAccount[p.SIPAccount] = p.ID
		}
		if p.RouteIP != "" {
			profile.PartnerByRouteIP[p.RouteIP] = p.ID
		}
	}
	return rows.Err()
}

func (l *Postgres) loadDIDs(ctx context.Context, db *sql.DB, profile *models.Profile) error {
	rows, err := db.QueryContext(ctx, `
		SELECT did_number, id_partner
		FROM did_assignment
		WHERE id_partner IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("load did assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var did string
		var partnerID int
		if err := rows.Scan(&did, &partnerID); err != nil {
			return fmt.Errorf("scan did assignment: %w", err)
		}
		profile.DIDOwners[did] = partnerID
		profile.PartnerDIDs[partnerID] = append(profile.PartnerDIDs[partnerID], did)
	}
	return rows.Err()
}

func (l *Postgres) loadRatePlans(ctx context.Context, db *sql.DB, profile *models.Profile) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id_partner, id_rate_plan
		FROM rate_assign`)
	if err != nil {
		return fmt.Errorf("load rate assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var partnerID, planID int
		if err := rows.Scan(&partnerID, &planID); err != nil {
			return fmt.Errorf("scan rate assignment: %w", err)
		}
		profile.RatePlanIDs[partnerID] = append(profile.RatePlanIDs[partnerID], planID)
	}
	return rows.Err()
}

// LoadRules reads the tenant's ordered business-rule definitions. Config maps
// are stored as JSON documents.
func (l *Postgres) LoadRules(ctx context.Context, dbName string, db *sql.DB) ([]rules.Definition, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT rule_id, COALESCE(config, '{}')
		FROM business_rule
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	defer rows.Close()

	var defs []rules.Definition
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		cfg := make(map[string]any)
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decode rule config %s: %w", id, err)
		}
		defs = append(defs, rules.Definition{RuleID: id, Config: cfg})
	}
	return defs, rows.Err()
}
