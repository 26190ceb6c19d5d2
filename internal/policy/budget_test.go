package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/greenlint/internal/config"
	"github.com/theirongolddev/greenlint/internal/model"
)

func mustPolicy(t *testing.T, doc string) *config.PolicyConfig {
	t.Helper()
	p, err := config.ParsePolicy([]byte(doc))
	require.NoError(t, err)
	return &p
}

func TestBudget_CarbonExceeded(t *testing.T) {
	p := mustPolicy(t, `{"ci":{"maxCarbonPerPR":1}}`)
	vs := Budget(p, "", 5.2, 0.01)
	require.Len(t, vs, 1)
	assert.Equal(t, model.RuleCarbonBudget, vs[0].Rule)
	assert.Equal(t, model.SeverityError, vs[0].Severity)
	assert.Equal(t, 5.2, vs[0].Carbon)
	assert.Equal(t, 1.0, vs[0].Threshold)
	assert.Contains(t, vs[0].Message, "5.2 gCO2e")
}

func TestBudget_DefaultsAndCost(t *testing.T) {
	vs := Budget(nil, "", 49.9, 1.5)
	require.Len(t, vs, 1)
	assert.Equal(t, model.RuleCostBudget, vs[0].Rule)
	assert.Equal(t, 1.0, vs[0].Threshold)
}

func TestBudget_Monotonic(t *testing.T) {
	p := mustPolicy(t, `{"ci":{"maxCarbonPerPR":10,"maxCostPerPR":0.5}}`)
	failing := func(carbon, cost float64) bool {
		for _, v := range Budget(p, "", carbon, cost) {
			if v.Severity == model.SeverityError {
				return true
			}
		}
		return false
	}
	carbon, cost := 0.0, 0.0
	wasFailing := false
	for i := 0; i < 200; i++ {
		carbon += 0.07
		cost += 0.003
		now := failing(carbon, cost)
		if wasFailing && !now {
			t.Fatalf("step %d: adding usage turned a failing budget into a passing one", i)
		}
		wasFailing = now
	}
	assert.True(t, wasFailing)
}

func TestBudget_AlertThreshold(t *testing.T) {
	p := mustPolicy(t, `{"carbonBudget":{"perCommit":10,"alertThreshold":0.8}}`)
	assert.Empty(t, Budget(p, "", 7.9, 0))

	vs := Budget(p, "", 8.5, 0)
	require.Len(t, vs, 1)
	assert.Equal(t, model.RuleBudgetAlert, vs[0].Rule)
	assert.Equal(t, model.SeverityInfo, vs[0].Severity)

	vs = Budget(p, "", 10.5, 0)
	require.Len(t, vs, 1)
	assert.Equal(t, model.RuleCarbonBudget, vs[0].Rule)
}

func TestBudget_TeamProjection(t *testing.T) {
	p := mustPolicy(t, `{"team":{"dailyUsers":100},"carbonBudget":{"daily":50,"monthly":1000}}`)
	vs := Budget(p, "", 1, 0)
	assert.Equal(t, []string{model.RuleDailyBudget, model.RuleMonthlyBudget}, rules(vs))
	for _, v := range vs {
		assert.Equal(t, model.SeverityWarning, v.Severity)
	}

	// Per-file evaluation never projects.
	assert.Empty(t, Budget(p, "a.py", 1, 0))

	b := Projection(p, 1)
	assert.Equal(t, 100.0, b.ProjectedDaily)
	assert.Equal(t, 3000.0, b.ProjectedMonthly)
}
