package combat

import (
	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

// WoundThreshold returns the roll needed to wound for the given toughness and strength.
func WoundThreshold(toughness, strength int) int {
	switch {
	case toughness*2 <= strength:
		return 2
	case toughness < strength:
		return 3
	case toughness == strength:
		return 4
	case toughness >= strength*2:
		return 6
	default:
		return 5
	}
}

// ResolveWounds runs the wound phase over the hit phase's normal hits.
// Auto-wounds and hit-phase mortal wounds pass through untouched. Toughness is
// evaluated once for the whole phase; each hit's strength is evaluated after
// its wound die is drawn.
//
// Precondition: a satisfies the Attacker invariant; src must be non-nil.
// Postcondition: zero-valued mortal wound entries are dropped.
func ResolveWounds(a Attacker, d Defender, ar AttackResult, src dice.Source) WoundResult {
	out := WoundResult{
		MortalWounds: append([]dice.Value(nil), ar.MortalWounds...),
		Hits:         append([]Hit(nil), ar.AutoWounds...),
	}
	toughness := dice.Evaluate(d.Toughness, src)
	var state rules.RerollState

	for _, hit := range ar.Hits {
		natural := dice.Evaluate(dice.D6, src)
		need := WoundThreshold(toughness, dice.Evaluate(hit.Strength, src))

		if d.WoundTranshuman && natural <= 4 {
			if a.Wound.Reroll.CanReroll(natural, &state) {
				again := dice.Evaluate(dice.D6, src)
				if again > 4 && a.woundSucceeds(again, need) {
					a.wound(again, hit, &out)
				}
			}
			continue
		}

		if a.woundSucceeds(natural, need) {
			a.wound(natural, hit, &out)
		} else if a.Wound.Reroll.CanReroll(natural, &state) {
			again := dice.Evaluate(dice.D6, src)
			if a.woundSucceeds(again, need) {
				a.wound(again, hit, &out)
			}
		}
	}

	out.MortalWounds = dropZero(out.MortalWounds)
	return out
}

func (a Attacker) woundSucceeds(natural, need int) bool {
	if natural == 1 {
		return false
	}
	if natural == 6 {
		return true
	}
	bonus := 0
	if a.Wound.PlusOne {
		bonus = 1
	}
	return natural+bonus >= need
}

// wound records a successful wound roll with the wound-phase modifiers applied.
func (a Attacker) wound(natural int, hit Hit, out *WoundResult) {
	out.Hits = append(out.Hits, Hit{
		Strength:    a.Wound.Strength.Apply(natural, hit.Strength),
		Penetration: a.Wound.Penetration.Apply(natural, hit.Penetration),
		Damage:      a.Wound.Damage.Apply(natural, hit.Damage),
	})
	out.MortalWounds = append(out.MortalWounds, a.Wound.MortalWounds.MortalWounds(natural))
}
