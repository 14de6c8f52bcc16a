// Package common holds small rules useful at any tenant level.
package common

import (
	"context"

	"tenantgrid/internal/rules"
)

// TagRuleID identifies the tenant-tagging rule.
const TagRuleID = "tenant_tag"

// TagRule records which tenants the pipeline passed through. It never aborts;
// it exists so downstream rules and callers can see the evaluated chain.
type TagRule struct{}

// NewTagRule constructs the tagging rule.
func NewTagRule() *TagRule { return &TagRule{} }

// ID implements rules.Rule.
func (r *TagRule) ID() string { return TagRuleID }

// Execute appends the configured tag (or the target tenant id) to the
// "visitedTags" list in the context data bag.
func (r *TagRule) Execute(ctx context.Context, pctx *rules.PipelineContext, config map[string]any) rules.Result {
	tag, _ := config["tag"].(string)
	if tag == "" {
		tag = pctx.TenantID()
	}
	visited, _ := pctx.Data("visitedTags").([]string)
	pctx.SetData("visitedTags", append(visited, tag))
	return rules.Continue()
}

// ValidateConfig implements rules.Rule; any config is acceptable.
func (r *TagRule) ValidateConfig(map[string]any) error { return nil }
