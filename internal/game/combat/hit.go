package combat

import (
	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

// ResolveHits runs the hit phase: one attempt per evaluated attack, then one
// reroll wave for the first wave's failures the reroll rule grants.
//
// Precondition: a satisfies the Attacker invariant; src must be non-nil.
// Postcondition: zero-valued mortal wound entries are dropped.
func ResolveHits(a Attacker, d Defender, src dice.Source) AttackResult {
	var res AttackResult
	failed := a.hitWave(dice.Evaluate(a.Attacks, src), d, src, &res)

	var state rules.RerollState
	rerolls := 0
	for _, natural := range failed {
		if a.Hit.Reroll.CanReroll(natural, &state) {
			rerolls++
		}
	}
	// Failures of the reroll wave are final.
	a.hitWave(rerolls, d, src, &res)

	res.MortalWounds = dropZero(res.MortalWounds)
	return res
}

// hitWave resolves n attempts into res and returns the natural rolls that failed.
func (a Attacker) hitWave(n int, d Defender, src dice.Source, res *AttackResult) []int {
	var failed []int
	for i := 0; i < n; i++ {
		if a.Hit.AutoHit.AutoHits() {
			res.Hits = append(res.Hits, Hit{Strength: a.Strength, Penetration: a.Penetration, Damage: a.Damage})
			continue
		}

		natural := dice.Evaluate(dice.D6, src)
		if !a.hitSucceeds(natural, d) {
			failed = append(failed, natural)
			continue
		}

		hit := Hit{
			Damage:      a.Hit.Damage.Apply(natural, a.Damage),
			Strength:    a.Hit.Strength.Apply(natural, a.Strength),
			Penetration: a.Hit.Penetration.Apply(natural, a.Penetration),
		}
		extra := a.Hit.AdditionalHits.ExtraHits(natural)
		res.MortalWounds = append(res.MortalWounds, a.Hit.MortalWounds.MortalWounds(natural))

		if a.Hit.AutoWound.AutoWounds(natural) {
			res.AutoWounds = append(res.AutoWounds, hit)
			continue
		}

		copies := dice.Evaluate(extra, src) + 1
		for j := 0; j < copies; j++ {
			res.Hits = append(res.Hits, hit)
		}
	}
	return failed
}

// hitSucceeds applies transhuman, the natural 1 and 6 rules, and the skill test.
func (a Attacker) hitSucceeds(natural int, d Defender) bool {
	if d.HitTranshuman && natural <= 4 {
		return false
	}
	if natural == 1 {
		return false
	}
	if natural == 6 {
		return true
	}
	bonus := 0
	if a.Hit.PlusOne {
		bonus = 1
	}
	return natural+bonus >= a.Skill
}

func dropZero(values []dice.Value) []dice.Value {
	out := values[:0]
	for _, v := range values {
		if !dice.IsZero(v) {
			out = append(out, v)
		}
	}
	return out
}
