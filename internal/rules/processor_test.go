package rules

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// scriptedRule executes a canned result and records that it ran.
type scriptedRule struct {
	id     string
	result Result
	calls  int
}

func (r *scriptedRule) ID() string { return r.id }

func (r *scriptedRule) Execute(_ context.Context, _ *PipelineContext, _ map[string]any) Result {
	r.calls++
	return r.result
}

func (r *scriptedRule) ValidateConfig(map[string]any) error { return nil }

func TestProcessRunsLevelsTopDown(t *testing.T) {
	reg := NewRegistry()
	var order []string
	for _, id := range []string{"first", "second", "third"} {
		reg.Register(&recordingRule{id: id, order: &order})
	}

	levels := []Level{
		{Level: 0, TenantID: "res_admin", Rules: []Definition{{RuleID: "first"}}},
		{Level: 1, TenantID: "res_a", Rules: []Definition{{RuleID: "second"}, {RuleID: "third"}}},
	}

	outcome := NewProcessor(reg, testLogger).Process(context.Background(), NewPipelineContext("res_a"), levels)
	assert.False(t, outcome.Aborted)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

type recordingRule struct {
	id    string
	order *[]string
}

func (r *recordingRule) ID() string { return r.id }

func (r *recordingRule) Execute(_ context.Context, _ *PipelineContext, _ map[string]any) Result {
	*r.order = append(*r.order, r.id)
	return Continue()
}

func (r *recordingRule) ValidateConfig(map[string]any) error { return nil }

func TestProcessAbortShortCircuits(t *testing.T) {
	reg := NewRegistry()
	rootRule := &scriptedRule{id: "root_check", result: Continue()}
	resellerRule := &scriptedRule{id: "credit_check", result: Abort("INSUFFICIENT_CREDIT")}
	customerRule := &scriptedRule{id: "customer_check", result: Continue()}
	for _, r := range []*scriptedRule{rootRule, resellerRule, customerRule} {
		reg.Register(r)
	}

	levels := []Level{
		{Level: 0, TenantID: "res_admin", Rules: []Definition{{RuleID: "root_check"}}},
		{Level: 1, TenantID: "res_a", Rules: []Definition{{RuleID: "credit_check"}}},
		{Level: 2, TenantID: "res_a_x", Rules: []Definition{{RuleID: "customer_check"}}},
	}

	outcome := NewProcessor(reg, testLogger).Process(context.Background(), NewPipelineContext("res_a_x"), levels)

	assert.True(t, outcome.Aborted)
	assert.Equal(t, 1, outcome.Level)
	assert.Equal(t, "res_a", outcome.TenantID)
	assert.Equal(t, "INSUFFICIENT_CREDIT", outcome.Reason)

	assert.Equal(t, 1, rootRule.calls)
	assert.Equal(t, 1, resellerRule.calls)
	assert.Zero(t, customerRule.calls, "levels below the abort must not run")
}

func TestProcessSkipsUnknownRule(t *testing.T) {
	reg := NewRegistry()
	after := &scriptedRule{id: "after", result: Continue()}
	reg.Register(after)

	levels := []Level{
		{Level: 0, TenantID: "res_admin", Rules: []Definition{
			{RuleID: "never_registered"},
			{RuleID: "after"},
		}},
	}

	outcome := NewProcessor(reg, testLogger).Process(context.Background(), NewPipelineContext("res_admin"), levels)
	assert.False(t, outcome.Aborted)
	assert.Equal(t, 1, after.calls, "missing rules are skipped, not fatal")
}

func TestProcessMergesResultData(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&scriptedRule{
		id:     "tagger",
		result: ContinueWithData(map[string]any{"tagged": true}),
	})

	pctx := NewPipelineContext("res_a")
	pctx.SetData("seed", "value")

	levels := []Level{{Level: 0, TenantID: "res_admin", Rules: []Definition{{RuleID: "tagger"}}}}
	outcome := NewProcessor(reg, testLogger).Process(context.Background(), pctx, levels)

	assert.False(t, outcome.Aborted)
	assert.Equal(t, true, outcome.Data["tagged"])
	assert.Equal(t, "value", outcome.Data["seed"])
}

func TestProcessEmptyLevels(t *testing.T) {
	outcome := NewProcessor(NewRegistry(), testLogger).Process(context.Background(), NewPipelineContext("res_a"), nil)
	assert.False(t, outcome.Aborted)
}
