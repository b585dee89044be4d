// Package alerts evaluates user-defined monitoring rules over the
// deferred-rate book and party credit positions. Rule conditions are CEL
// expressions, so the back office can tune thresholds without a deploy.
package alerts

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"wireline/internal/core/apperror"
	"wireline/internal/core/id"
)

// Severity of a raised alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rule is a named condition over the monitoring facts.
type Rule struct {
	ID       id.ID    `json:"id"`
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`

	// Expression is a CEL condition over the fact variables, e.g.
	// "days_pending > 30 && net_weight > 1000.0".
	Expression string `json:"expression"`
}

// Facts are the variables a rule expression may reference, computed per
// party.
type Facts struct {
	// DaysPending: age of the party's oldest open valuation record
	DaysPending int64

	// NetWeight: total open deferred-rate weight, kg
	NetWeight float64

	// CurrentBalance and CreditLimit in whole rupees. The balance is the
	// party's booked ledger balance, as held on the party master.
	CurrentBalance int64
	CreditLimit    int64
}

func (f Facts) activation() map[string]any {
	return map[string]any{
		"days_pending":    f.DaysPending,
		"net_weight":      f.NetWeight,
		"current_balance": f.CurrentBalance,
		"credit_limit":    f.CreditLimit,
	}
}

// Evaluator compiles and runs rule expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator builds the CEL environment with the fact variables.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("days_pending", cel.IntType),
		cel.Variable("net_weight", cel.DoubleType),
		cel.Variable("current_balance", cel.IntType),
		cel.Variable("credit_limit", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("build cel environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// CompiledRule is a rule with its evaluable program.
type CompiledRule struct {
	Rule
	program cel.Program
}

// Compile type-checks a rule expression. The condition must yield a
// boolean.
func (e *Evaluator) Compile(rule Rule) (*CompiledRule, error) {
	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid rule expression").
			WithDetail("rule", rule.Name).
			WithDetail("error", issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("rule expression must be boolean").
			WithDetail("rule", rule.Name).
			WithDetail("outputType", ast.OutputType().String())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build rule program: %w", err)
	}
	return &CompiledRule{Rule: rule, program: program}, nil
}

// Matches evaluates the rule against one party's facts.
func (r *CompiledRule) Matches(facts Facts) (bool, error) {
	out, _, err := r.program.Eval(facts.activation())
	if err != nil {
		return false, fmt.Errorf("evaluate rule %q: %w", r.Name, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q returned %T, want bool", r.Name, out.Value())
	}
	return matched, nil
}
