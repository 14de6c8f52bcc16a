// Package rules implements the hierarchical business-rule engine. Rules are
// registered once at startup under string ids; tenant levels reference them
// by id with a per-level configuration map.
package rules

import "context"

// Rule is one business rule. Implementations must be safe for concurrent use;
// per-evaluation state belongs in the PipelineContext.
type Rule interface {
	// ID is the unique identifier rule definitions reference.
	ID() string

	// Execute runs the rule against the pipeline context with the
	// level-scoped configuration.
	Execute(ctx context.Context, pctx *PipelineContext, config map[string]any) Result

	// ValidateConfig reports whether the configuration map is usable by
	// this rule.
	ValidateConfig(config map[string]any) error
}

// Definition binds a rule id to its configuration at one tenant level.
type Definition struct {
	RuleID string         `json:"ruleId"`
	Config map[string]any `json:"config,omitempty"`
}

// Level is one tenant in the ancestor chain with its ordered rule list.
// Levels are numbered from the root (0) down to the target tenant.
type Level struct {
	Level    int          `json:"level"`
	TenantID string       `json:"tenantId"`
	Rules    []Definition `json:"rules"`
}

// Result is what a rule returns: continue (optionally merging data into the
// context) or abort with a reason.
type Result struct {
	abort  bool
	reason string
	data   map[string]any
}

// Continue lets the pipeline proceed to the next rule.
func Continue() Result {
	return Result{}
}

// ContinueWithData proceeds and merges data into the pipeline context.
func ContinueWithData(data map[string]any) Result {
	return Result{data: data}
}

// Abort stops the whole evaluation with the given reason.
func Abort(reason string) Result {
	return Result{abort: true, reason: reason}
}

// Aborted reports whether this result terminates the pipeline.
func (r Result) Aborted() bool { return r.abort }

// Reason returns the abort reason, or "" for a continue result.
func (r Result) Reason() string { return r.reason }
