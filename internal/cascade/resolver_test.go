package cascade

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	rules, err := LoadRules("")
	require.NoError(t, err)
	return NewResolver(rules)
}

func TestResolveEmptyAnswers(t *testing.T) {
	vis := defaultResolver(t).Resolve(nil)

	// Core items plus the two always-on lead items, nothing else.
	assert.Equal(t, 58, vis.TotalVisible)
	assert.Equal(t, 70, vis.TotalPossible)
	assert.Zero(t, vis.RulesEvaluated)

	want := make([]string, 0, 58)
	for n := 1; n <= 56; n++ {
		want = append(want, fmt.Sprintf("Q%d", n))
	}
	want = append(want, "Q59", "Q65")
	assert.Equal(t, want, vis.Visible)

	assert.Len(t, vis.Core, 56)
	assert.Equal(t, []string{"Q59"}, vis.Behavioral)
	assert.Equal(t, []string{"Q65"}, vis.Financial)
}

func TestResolveHarassmentTrigger(t *testing.T) {
	r := defaultResolver(t)

	t.Run("positive answer reveals violence followups", func(t *testing.T) {
		vis := r.Resolve(map[string]float64{"Q56": 10})
		assert.Contains(t, vis.Visible, "Q57")
		assert.Contains(t, vis.Visible, "Q58")
		assert.Equal(t, 60, vis.TotalVisible)
	})

	t.Run("zero answer keeps followups hidden", func(t *testing.T) {
		vis := r.Resolve(map[string]float64{"Q56": 0})
		assert.NotContains(t, vis.Visible, "Q57")
		assert.NotContains(t, vis.Visible, "Q58")
	})
}

func TestResolveLeadCascades(t *testing.T) {
	r := defaultResolver(t)

	t.Run("gambling lead opens its sub-scale", func(t *testing.T) {
		vis := r.Resolve(map[string]float64{"Q59": 25})
		for n := 60; n <= 64; n++ {
			assert.Contains(t, vis.Behavioral, fmt.Sprintf("Q%d", n))
		}
		assert.Equal(t, 5, vis.RulesEvaluated)
	})

	t.Run("debt lead opens its sub-scale", func(t *testing.T) {
		vis := r.Resolve(map[string]float64{"Q65": 50})
		for n := 66; n <= 70; n++ {
			assert.Contains(t, vis.Financial, fmt.Sprintf("Q%d", n))
		}
	})

	t.Run("lead answered zero keeps sub-scale hidden", func(t *testing.T) {
		vis := r.Resolve(map[string]float64{"Q59": 0, "Q65": 0})
		assert.Equal(t, 58, vis.TotalVisible)
		assert.Equal(t, 10, vis.RulesEvaluated)
	})

	t.Run("everything answered reveals all seventy", func(t *testing.T) {
		vis := r.Resolve(map[string]float64{"Q56": 25, "Q59": 25, "Q65": 25})
		assert.Equal(t, 70, vis.TotalVisible)
		assert.Len(t, vis.Behavioral, 8)
		assert.Len(t, vis.Financial, 6)
	})
}

func TestResolveOperators(t *testing.T) {
	answers := map[string]float64{"Q10": 50}
	tests := []struct {
		op      Operator
		visible bool
	}{
		{OpGT, false},
		{OpGTE, true},
		{OpLT, false},
		{OpLTE, true},
		{OpEQ, true},
		{OpNE, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			r := NewResolver([]ConditionRule{{Target: "Q60", DependsOn: "Q10", Op: tt.op, Threshold: 50}})
			vis := r.Resolve(answers)
			assert.Equal(t, tt.visible, contains(vis.Visible, "Q60"))
			assert.Equal(t, 1, vis.RulesEvaluated)
		})
	}
}

func TestResolveMalformedRule(t *testing.T) {
	// An unrecognized operator evaluates to "condition not met"; the
	// resolver must never fail over a bad rule row.
	r := NewResolver([]ConditionRule{{Target: "Q60", DependsOn: "Q59", Op: "between", Threshold: 0}})
	vis := r.Resolve(map[string]float64{"Q59": 100})
	assert.NotContains(t, vis.Visible, "Q60")
	assert.Equal(t, 1, vis.RulesEvaluated)
}

func TestResolveUnansweredDependency(t *testing.T) {
	r := defaultResolver(t)
	vis := r.Resolve(map[string]float64{"Q1": 75})
	assert.Zero(t, vis.RulesEvaluated)
	assert.Equal(t, 58, vis.TotalVisible)
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
