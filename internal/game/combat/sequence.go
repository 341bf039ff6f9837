package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/grimdark/internal/game/dice"
)

// Sequence resolves one full attack: hit, wound, then save.
//
// Precondition: a satisfies the Attacker invariant; src must be non-nil.
// Postcondition: returns the wounds inflicted, >= 0.
func Sequence(a Attacker, d Defender, src dice.Source) int {
	return ResolveSaves(d, ResolveWounds(a, d, ResolveHits(a, d, src), src), src)
}

// TraceSequence resolves one attack like Sequence and logs each phase's
// outcome at debug level. Pair it with dice.NewLoggedSource to see every die.
func TraceSequence(a Attacker, d Defender, src dice.Source, logger *zap.Logger) int {
	ar := ResolveHits(a, d, src)
	logger.Debug("hit phase",
		zap.Int("hits", len(ar.Hits)),
		zap.Int("auto_wounds", len(ar.AutoWounds)),
		zap.Strings("mortal_wounds", notation(ar.MortalWounds)),
	)
	wr := ResolveWounds(a, d, ar, src)
	logger.Debug("wound phase",
		zap.Int("wounds", len(wr.Hits)),
		zap.Strings("mortal_wounds", notation(wr.MortalWounds)),
	)
	total := ResolveSaves(d, wr, src)
	logger.Debug("save phase", zap.Int("wounds_inflicted", total))
	return total
}

func notation(values []dice.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
