package rules

import (
	"context"
	"log/slog"
)

// Outcome is the terminal result of one pipeline evaluation: either success
// with the final context, or an abort identifying where and why.
type Outcome struct {
	Aborted  bool           `json:"aborted"`
	Level    int            `json:"level,omitempty"`
	TenantID string         `json:"tenantId,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Processor evaluates ordered rule levels top-down with abort-on-failure.
type Processor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewProcessor constructs a processor over the given registry.
func NewProcessor(registry *Registry, logger *slog.Logger) *Processor {
	return &Processor{registry: registry, logger: logger}
}

// Process iterates levels from the root of the hierarchy down to the target
// tenant, executing each level's rules in declared order. The first abort at
// any level stops the whole evaluation; no further rules or levels run. A
// rule id with no registered implementation is skipped with a warning.
func (p *Processor) Process(ctx context.Context, pctx *PipelineContext, levels []Level) Outcome {
	for _, level := range levels {
		for _, def := range level.Rules {
			rule, err := p.registry.Get(def.RuleID)
			if err != nil {
				p.logger.WarnContext(ctx, "rule not found, skipping",
					"rule_id", def.RuleID,
					"level", level.Level,
					"tenant", level.TenantID,
				)
				continue
			}

			result := rule.Execute(ctx, pctx, def.Config)
			if result.Aborted() {
				p.logger.InfoContext(ctx, "rule pipeline aborted",
					"rule_id", def.RuleID,
					"level", level.Level,
					"tenant", level.TenantID,
					"reason", result.Reason(),
				)
				return Outcome{
					Aborted:  true,
					Level:    level.Level,
					TenantID: level.TenantID,
					Reason:   result.Reason(),
				}
			}
			for k, v := range result.data {
				pctx.SetData(k, v)
			}
		}
	}
	return Outcome{Data: pctx.AllData()}
}
