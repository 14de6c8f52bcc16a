// Package credit implements the credit-check business rule backed by a
// per-tenant balance source.
package credit

import (
	"context"
	"fmt"
	"log/slog"

	"tenantgrid/internal/rules"
)

// RuleID is the identifier rule definitions use for the credit check.
const RuleID = "credit_check"

// ReasonInsufficientCredit aborts the pipeline when the tenant's available
// balance is below the configured minimum.
const ReasonInsufficientCredit = "INSUFFICIENT_CREDIT"

// ReasonBalanceUnavailable aborts when the balance source cannot answer;
// admitting traffic with an unknown balance is not an option.
const ReasonBalanceUnavailable = "BALANCE_UNAVAILABLE"

// BalanceSource answers the available credit for a tenant.
type BalanceSource interface {
	Balance(ctx context.Context, tenantID string) (float64, error)
}

// Rule checks that the evaluating tenant holds at least the level-configured
// minimum credit.
type Rule struct {
	source BalanceSource
	logger *slog.Logger
}

// New constructs the credit-check rule.
func New(source BalanceSource, logger *slog.Logger) *Rule {
	return &Rule{source: source, logger: logger}
}

// ID implements rules.Rule.
func (r *Rule) ID() string { return RuleID }

// Execute implements rules.Rule. The minimum comes from the level's config
// key "minCredit"; a missing key means zero.
func (r *Rule) Execute(ctx context.Context, pctx *rules.PipelineContext, config map[string]any) rules.Result {
	minCredit, err := numeric(config["minCredit"])
	if err != nil {
		r.logger.WarnContext(ctx, "invalid minCredit config, using zero",
			"tenant", pctx.TenantID(), "error", err)
		minCredit = 0
	}

	available, err := r.source.Balance(ctx, pctx.TenantID())
	if err != nil {
		r.logger.ErrorContext(ctx, "balance lookup failed",
			"tenant", pctx.TenantID(), "error", err)
		return rules.Abort(ReasonBalanceUnavailable)
	}

	if available < minCredit {
		return rules.Abort(ReasonInsufficientCredit)
	}

	pctx.SetData("availableCredit", available)
	return rules.ContinueWithData(map[string]any{"creditChecked": true})
}

// ValidateConfig implements rules.Rule.
func (r *Rule) ValidateConfig(config map[string]any) error {
	if config == nil {
		return fmt.Errorf("credit_check requires a config map")
	}
	v, ok := config["minCredit"]
	if !ok {
		return fmt.Errorf("credit_check requires minCredit")
	}
	_, err := numeric(v)
	return err
}

func numeric(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
