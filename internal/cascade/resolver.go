package cascade

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Operator is the comparison applied to a rule's dependency answer.
type Operator string

const (
	OpGT  Operator = "gt"
	OpGTE Operator = "gte"
	OpLT  Operator = "lt"
	OpLTE Operator = "lte"
	OpEQ  Operator = "eq"
	OpNE  Operator = "ne"
)

// ConditionRule reveals Target when the answer for DependsOn satisfies
// Op Threshold. The rule table is loaded data, not code, so the dependency
// graph stays auditable and testable apart from the resolver.
type ConditionRule struct {
	Target    string   `yaml:"target"`
	DependsOn string   `yaml:"depends_on"`
	Op        Operator `yaml:"op"`
	Threshold float64  `yaml:"threshold"`
}

type ruleFile struct {
	Rules []ConditionRule `yaml:"rules"`
}

// LoadRules reads the condition table from path, or the embedded default when
// path is empty.
func LoadRules(path string) ([]ConditionRule, error) {
	data := defaultRules
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules %s: %w", path, err)
		}
		data = b
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return f.Rules, nil
}

// Questionnaire layout constants for this deployment. Items 1..56 are always
// visible; 57..64 are the behavioral sub-scale and 65..70 the financial one.
const (
	coreItemCount   = 56
	behavioralFirst = 57
	behavioralLast  = 64
	financialFirst  = 65
	financialLast   = 70
	totalItems      = 70

	harassmentItem = "Q56"
)

// violenceFollowups are force-revealed whenever the harassment item is
// answered with anything above zero.
var violenceFollowups = []string{"Q57", "Q58"}

// leadItems open the gambling and over-indebtedness sub-scales. They are
// visible regardless of answer state so the respondent can trigger their own
// cascade.
var leadItems = []string{"Q59", "Q65"}

// Visibility is the resolved item set for one answer state.
type Visibility struct {
	Visible    []string
	Core       []string
	Behavioral []string
	Financial  []string

	TotalVisible   int
	TotalPossible  int
	RulesEvaluated int
}

// Resolver computes which items a respondent must currently see.
type Resolver struct {
	rules []ConditionRule
}

func NewResolver(rules []ConditionRule) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve returns the visible item set for the answers collected so far.
// Core items are always present; conditional items are added when their rule
// holds. Malformed rules never fail the resolver: an unknown operator simply
// evaluates to "condition not met".
func (r *Resolver) Resolve(answers map[string]float64) Visibility {
	visible := make(map[string]bool, totalItems)
	for n := 1; n <= coreItemCount; n++ {
		visible[fmt.Sprintf("Q%d", n)] = true
	}
	for _, id := range leadItems {
		visible[id] = true
	}

	evaluated := 0
	for _, rule := range r.rules {
		value, answered := answers[rule.DependsOn]
		if !answered {
			continue
		}
		evaluated++
		if evalCondition(rule.Op, value, rule.Threshold) {
			visible[rule.Target] = true
		}
	}

	if v, ok := answers[harassmentItem]; ok && v > 0 {
		for _, id := range violenceFollowups {
			visible[id] = true
		}
	}

	out := Visibility{TotalPossible: totalItems, RulesEvaluated: evaluated}
	for id := range visible {
		out.Visible = append(out.Visible, id)
	}
	sort.Slice(out.Visible, func(i, j int) bool {
		return itemNumber(out.Visible[i]) < itemNumber(out.Visible[j])
	})
	for _, id := range out.Visible {
		switch n := itemNumber(id); {
		case n >= 1 && n <= coreItemCount:
			out.Core = append(out.Core, id)
		case n >= behavioralFirst && n <= behavioralLast:
			out.Behavioral = append(out.Behavioral, id)
		case n >= financialFirst && n <= financialLast:
			out.Financial = append(out.Financial, id)
		}
	}
	out.TotalVisible = len(out.Visible)
	return out
}

func evalCondition(op Operator, value, threshold float64) bool {
	switch op {
	case OpGT:
		return value > threshold
	case OpGTE:
		return value >= threshold
	case OpLT:
		return value < threshold
	case OpLTE:
		return value <= threshold
	case OpEQ:
		return value == threshold
	case OpNE:
		return value != threshold
	default:
		// Unrecognized operators must not crash the resolver.
		return false
	}
}

func itemNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "Q"))
	if err != nil {
		return 0
	}
	return n
}
