package combat

import "github.com/cory-johannsen/grimdark/internal/game/dice"

// ResolveSaves runs the save phase and returns the wounds that get through,
// after damage reduction and feel-no-pain.
//
// The save characteristic is evaluated once per phase. For each hit the
// penetration and invulnerable save are evaluated before the save die.
//
// Precondition: src must be non-nil.
// Postcondition: returns >= 0.
func ResolveSaves(d Defender, wr WoundResult, src dice.Source) int {
	pool := append([]dice.Value(nil), wr.MortalWounds...)
	save := dice.Evaluate(d.Save, src)

	for _, hit := range wr.Hits {
		need := min(save+dice.Evaluate(hit.Penetration, src), dice.Evaluate(d.InvulnerableSave, src))
		roll := dice.Evaluate(dice.D6, src)
		if roll == 1 || roll < need {
			pool = append(pool, hit.Damage)
		}
	}

	total := 0
	for _, v := range pool {
		// Damage reduction never takes a source below one wound.
		total += max(dice.Evaluate(v, src)-dice.Evaluate(d.DamageReduction, src), 1)
	}
	return FeelNoPain(d.FeelNoPain, total, src)
}

// FeelNoPain rolls one die per wound; a wound is kept when the die is below
// threshold. A threshold above 6 disables the roll and returns wounds unchanged.
//
// Postcondition: 0 <= result <= wounds.
func FeelNoPain(threshold, wounds int, src dice.Source) int {
	if threshold > 6 {
		return wounds
	}
	kept := 0
	for i := 0; i < wounds; i++ {
		if dice.Evaluate(dice.D6, src) < threshold {
			kept++
		}
	}
	return kept
}
