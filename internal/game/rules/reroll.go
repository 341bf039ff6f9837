package rules

// RerollState is the single-use reroll flag. One state is owned by each phase
// of one attack sequence; it is never shared between phases or iterations.
type RerollState struct {
	used bool
}

// Used reports whether the single reroll has been spent.
func (s *RerollState) Used() bool { return s.used }

// RerollRule decides which failed rolls may be rerolled.
type RerollRule interface {
	// CanReroll reports whether the failed natural roll may be rerolled.
	// Single-use variants record the spend in state.
	CanReroll(natural int, state *RerollState) bool
	isRerollRule()
}

// NoReroll never rerolls.
type NoReroll struct{}

// RerollOnes rerolls failed natural 1s.
type RerollOnes struct{}

// RerollSingle rerolls exactly one failed die per phase.
type RerollSingle struct{}

// RerollFailures rerolls every failed die.
type RerollFailures struct{}

func (NoReroll) CanReroll(int, *RerollState) bool { return false }

func (RerollOnes) CanReroll(natural int, _ *RerollState) bool { return natural == 1 }

func (RerollSingle) CanReroll(_ int, state *RerollState) bool {
	if state.used {
		return false
	}
	state.used = true
	return true
}

func (RerollFailures) CanReroll(int, *RerollState) bool { return true }

func (NoReroll) isRerollRule() {}
func (RerollOnes) isRerollRule() {}
func (RerollSingle) isRerollRule() {}
func (RerollFailures) isRerollRule() {}

// RerollRuleFor maps the profile keyword to a rule: "none", "ones", "single"
// or "all". ok is false for unknown keywords.
func RerollRuleFor(keyword string) (rule RerollRule, ok bool) {
	switch keyword {
	case "", "none", "no":
		return NoReroll{}, true
	case "ones":
		return RerollOnes{}, true
	case "single":
		return RerollSingle{}, true
	case "all", "full":
		return RerollFailures{}, true
	}
	return nil, false
}
