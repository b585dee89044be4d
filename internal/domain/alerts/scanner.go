package alerts

import (
	"context"
	"time"

	"wireline/internal/core/id"
	"wireline/internal/domain"
	"wireline/internal/domain/catalogs/party"
	"wireline/internal/domain/suda"
	"wireline/pkg/logger"
)

// Alert is one raised rule match for one party.
type Alert struct {
	RuleID   id.ID    `json:"ruleId"`
	RuleName string   `json:"ruleName"`
	Severity Severity `json:"severity"`

	PartyID   id.ID     `json:"partyId"`
	PartyName string    `json:"partyName"`
	Facts     Facts     `json:"facts"`
	RaisedAt  time.Time `json:"raisedAt"`
}

// Scanner runs compiled rules across every party's monitoring facts.
type Scanner struct {
	engine    *suda.Engine
	parties   party.Repository
	evaluator *Evaluator
}

// NewScanner creates a rule scanner over the deferred-rate book.
func NewScanner(engine *suda.Engine, parties party.Repository, evaluator *Evaluator) *Scanner {
	return &Scanner{
		engine:    engine,
		parties:   parties,
		evaluator: evaluator,
	}
}

// Scan compiles the rules and evaluates them against every party. A rule
// that fails to evaluate is logged and skipped; one bad rule must not
// silence the rest of the board.
func (s *Scanner) Scan(ctx context.Context, rules []Rule) ([]Alert, error) {
	compiled := make([]*CompiledRule, 0, len(rules))
	for _, rule := range rules {
		cr, err := s.evaluator.Compile(rule)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}

	now := time.Now().UTC()
	var alerts []Alert

	// Page through the whole party master; the board covers every party,
	// not the first page.
	filter := domain.DefaultListFilter()
	for {
		result, err := s.parties.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		for _, p := range result.Items {
			facts, err := s.partyFacts(ctx, p, now)
			if err != nil {
				return nil, err
			}

			for _, rule := range compiled {
				matched, err := rule.Matches(facts)
				if err != nil {
					logger.Warn(ctx, "alert rule evaluation failed",
						"rule", rule.Name, "party_id", p.ID, "error", err)
					continue
				}
				if !matched {
					continue
				}
				alerts = append(alerts, Alert{
					RuleID:    rule.ID,
					RuleName:  rule.Name,
					Severity:  rule.Severity,
					PartyID:   p.ID,
					PartyName: p.Name,
					Facts:     facts,
					RaisedAt:  now,
				})
			}
		}

		filter.Offset += len(result.Items)
		if len(result.Items) == 0 || int64(filter.Offset) >= result.TotalCount {
			break
		}
	}

	return alerts, nil
}

func (s *Scanner) partyFacts(ctx context.Context, p *party.Party, now time.Time) (Facts, error) {
	summary, err := s.engine.Summarize(ctx, p.ID)
	if err != nil {
		return Facts{}, err
	}

	facts := Facts{
		NetWeight:      summary.TotalWeight.Decimal().InexactFloat64(),
		CurrentBalance: int64(p.CurrentBalance),
		CreditLimit:    int64(p.CreditLimit),
	}
	if !summary.Oldest.IsZero() {
		facts.DaysPending = int64(now.Sub(summary.Oldest).Hours() / 24)
	}
	return facts, nil
}
