package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantgrid/internal/rules"
	"tenantgrid/internal/tenant/models"
	"tenantgrid/internal/tenant/registry"
	"tenantgrid/pkg/platform/sentinel"
)

func levelsSnapshot() *Snapshot {
	root := models.NewTenant("res_admin")
	root.Rules = []rules.Definition{{RuleID: "tenant_tag"}}

	reseller := models.NewTenant("res_a")
	reseller.Rules = []rules.Definition{{RuleID: "credit_check", Config: map[string]any{"minCredit": 50.0}}}
	root.AddChild(reseller)

	customer := models.NewTenant("res_a_x")
	reseller.AddChild(customer)

	return &Snapshot{Root: root, Registry: registry.Rebuild(root, 1), Cycle: 1}
}

func TestAncestorLevelsRootToTarget(t *testing.T) {
	levels, err := AncestorLevels(levelsSnapshot(), "res_a_x")
	require.NoError(t, err)
	require.Len(t, levels, 3)

	assert.Equal(t, 0, levels[0].Level)
	assert.Equal(t, "res_admin", levels[0].TenantID)
	assert.Equal(t, "tenant_tag", levels[0].Rules[0].RuleID)

	assert.Equal(t, 1, levels[1].Level)
	assert.Equal(t, "res_a", levels[1].TenantID)
	assert.Equal(t, "credit_check", levels[1].Rules[0].RuleID)

	assert.Equal(t, 2, levels[2].Level)
	assert.Equal(t, "res_a_x", levels[2].TenantID)
	assert.Empty(t, levels[2].Rules)
}

func TestAncestorLevelsAtRoot(t *testing.T) {
	levels, err := AncestorLevels(levelsSnapshot(), "res_admin")
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "res_admin", levels[0].TenantID)
}

func TestAncestorLevelsUnknownTenant(t *testing.T) {
	_, err := AncestorLevels(levelsSnapshot(), "res_ghost")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
