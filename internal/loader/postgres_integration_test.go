//go:build integration

package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantgrid/pkg/testutil/containers"
)

const tenantSchema = `
CREATE TABLE partner (
	id_partner   INTEGER PRIMARY KEY,
	partner_name TEXT NOT NULL,
	sip_account  TEXT,
	route_ip     TEXT,
	prefixes     TEXT[]
);
CREATE TABLE did_assignment (
	did_number TEXT PRIMARY KEY,
	id_partner INTEGER
);
CREATE TABLE rate_assign (
	id_partner   INTEGER NOT NULL,
	id_rate_plan INTEGER NOT NULL
);
CREATE TABLE business_rule (
	rule_id  TEXT NOT NULL,
	config   JSONB,
	position INTEGER NOT NULL
);
`

func TestPostgresLoader(t *testing.T) {
	pg := containers.NewPostgresContainer(t, "res_a")
	db := pg.Open(t, "res_a")
	ctx := context.Background()

	_, err := db.ExecContext(ctx, tenantSchema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO partner VALUES
			(1, 'Acme Telecom', 'acme-sip', '10.1.1.1', '{880,8801}'),
			(2, 'NoRoute Ltd', NULL, NULL, NULL);
		INSERT INTO did_assignment VALUES
			('8801711000000', 1),
			('8801711000001', 1),
			('8801800000000', NULL);
		INSERT INTO rate_assign VALUES (1, 10), (1, 11);
		INSERT INTO business_rule VALUES
			('credit_check', '{"minCredit": 50}', 2),
			('tenant_tag', NULL, 1);
	`)
	require.NoError(t, err)

	l := NewPostgres()

	t.Run("profile", func(t *testing.T) {
		profile, err := l.LoadProfile(ctx, "res_a", db)
		require.NoError(t, err)

		require.Len(t, profile.Partners, 2)
		acme := profile.Partners[1]
		assert.Equal(t, "Acme Telecom", acme.Name)
		assert.Equal(t, []string{"880", "8801"}, acme.Prefixes)

		assert.Equal(t, 1, profile.PartnerIDByName["acme telecom"])
		assert.Equal(t, 1, profile.PartnerBySIPAccount["acme-sip"])
		assert.Equal(t, 1, profile.PartnerByRouteIP["10.1.1.1"])
		assert.Empty(t, profile.Partners[2].SIPAccount)

		assert.Equal(t, 1, profile.DIDOwners["8801711000000"])
		assert.Len(t, profile.PartnerDIDs[1], 2)
		assert.NotContains(t, profile.DIDOwners, "8801800000000", "unassigned DIDs are skipped")

		assert.ElementsMatch(t, []int{10, 11}, profile.RatePlanIDs[1])
	})

	t.Run("rules in position order", func(t *testing.T) {
		defs, err := l.LoadRules(ctx, "res_a", db)
		require.NoError(t, err)
		require.Len(t, defs, 2)

		assert.Equal(t, "tenant_tag", defs[0].RuleID)
		assert.Equal(t, "credit_check", defs[1].RuleID)
		assert.Equal(t, 50.0, defs[1].Config["minCredit"])
	})
}
