package runtime

import "github.com/aretw0/swap/pkg/domain"

// Rule is one edge of the collection state machine, as enforced by the Engine.
type Rule struct {
	From    domain.Step
	Trigger string
	To      domain.Step
}

var rules = []Rule{
	{From: domain.StepAmountEntry, Trigger: "digit / C", To: domain.StepAmountEntry},
	{From: domain.StepAmountEntry, Trigger: "VAL (amount > 0)", To: domain.StepAwaitingScan},
	{From: domain.StepAwaitingScan, Trigger: "tap", To: domain.StepAwaitingPin},
	{From: domain.StepAwaitingPin, Trigger: "pin accepted", To: domain.StepSuccess},
	{From: domain.StepAwaitingPin, Trigger: "pin rejected", To: domain.StepFailure},
}

// Rules returns the forward transitions. Reset is implicit: every step returns to
// domain.StepAmountEntry with a fresh session.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Steps lists the steps in flow order.
func Steps() []domain.Step {
	return []domain.Step{
		domain.StepAmountEntry,
		domain.StepAwaitingScan,
		domain.StepAwaitingPin,
		domain.StepSuccess,
		domain.StepFailure,
	}
}
