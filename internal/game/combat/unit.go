package combat

import (
	"errors"

	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

const (
	// MaxAttacks is the largest attack count a profile may roll.
	MaxAttacks = 1000
	// NoInvulnerableSave is the invulnerable save threshold meaning "none".
	NoInvulnerableSave = 7
	// NoFeelNoPain is the feel-no-pain threshold meaning "none".
	NoFeelNoPain = 7
)

// ErrTooManyAttacks is returned when an attacker's attacks can exceed MaxAttacks.
var ErrTooManyAttacks = errors.New("too many attacks")

// IsCapacityError reports whether err is one of the capacity guards rather
// than malformed input.
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrTooManyAttacks) || errors.Is(err, rules.ErrTooManyAdditionalHits)
}

// HitRules are the modifiers applied during the hit phase.
type HitRules struct {
	Reroll         rules.RerollRule
	PlusOne        bool
	AutoHit        rules.AutoHitRule
	AutoWound      rules.AutoWoundRule
	AdditionalHits rules.AdditionalHitsRule
	Damage         rules.ModifierRule
	Strength       rules.ModifierRule
	Penetration    rules.ModifierRule
	MortalWounds   rules.MortalWoundRule
}

// WoundRules are the modifiers applied during the wound phase.
type WoundRules struct {
	Reroll       rules.RerollRule
	PlusOne      bool
	Damage       rules.ModifierRule
	Strength     rules.ModifierRule
	Penetration  rules.ModifierRule
	MortalWounds rules.MortalWoundRule
}

// DefaultHitRules returns a hit rule set where every rule is the no-op variant.
func DefaultHitRules() HitRules {
	return HitRules{
		Reroll:         rules.NoReroll{},
		AutoHit:        rules.NoAutoHit{},
		AutoWound:      rules.NoAutoWound{},
		AdditionalHits: rules.NoAdditionalHits{},
		Damage:         rules.NoModifier{},
		Strength:       rules.NoModifier{},
		Penetration:    rules.NoModifier{},
		MortalWounds:   rules.NoMortalWounds{},
	}
}

// DefaultWoundRules returns a wound rule set where every rule is the no-op variant.
func DefaultWoundRules() WoundRules {
	return WoundRules{
		Reroll:       rules.NoReroll{},
		Damage:       rules.NoModifier{},
		Strength:     rules.NoModifier{},
		Penetration:  rules.NoModifier{},
		MortalWounds: rules.NoMortalWounds{},
	}
}

// Attacker is the attacking profile.
//
// Invariant: every rule field is non-nil; MaxValue(Attacks) <= MaxAttacks.
type Attacker struct {
	Attacks     dice.Value
	Skill       int
	Strength    dice.Value
	Penetration dice.Value
	Damage      dice.Value
	Hit         HitRules
	Wound       WoundRules
}

// NewAttacker builds an Attacker with no-op rules.
//
// Postcondition: returns ErrTooManyAttacks when MaxValue(attacks) > MaxAttacks.
func NewAttacker(attacks dice.Value, skill int, strength, penetration, damage dice.Value) (Attacker, error) {
	if dice.MaxValue(attacks) > MaxAttacks {
		return Attacker{}, ErrTooManyAttacks
	}
	return Attacker{
		Attacks:     attacks,
		Skill:       skill,
		Strength:    strength,
		Penetration: penetration,
		Damage:      damage,
		Hit:         DefaultHitRules(),
		Wound:       DefaultWoundRules(),
	}, nil
}

// Defender is the defending profile.
type Defender struct {
	HitTranshuman    bool
	WoundTranshuman  bool
	Toughness        dice.Value
	Save             dice.Value
	InvulnerableSave dice.Value // > 6 means none
	FeelNoPain       int        // > 6 means none
	DamageReduction  dice.Value
}

// NewDefender builds a Defender with no invulnerable save, no feel-no-pain
// and no damage reduction.
func NewDefender(toughness, save dice.Value) Defender {
	return Defender{
		Toughness:        toughness,
		Save:             save,
		InvulnerableSave: dice.Constant{N: NoInvulnerableSave},
		FeelNoPain:       NoFeelNoPain,
		DamageReduction:  dice.Zero,
	}
}

// Hit is one successful attack carried between phases.
type Hit struct {
	Strength    dice.Value
	Penetration dice.Value
	Damage      dice.Value
}

// AttackResult is the output of the hit phase.
type AttackResult struct {
	// MortalWounds are inflicted regardless of the wound and save rolls.
	MortalWounds []dice.Value
	// Hits go on to the wound roll.
	Hits []Hit
	// AutoWounds skip the wound roll.
	AutoWounds []Hit
}

// WoundResult is the output of the wound phase.
type WoundResult struct {
	MortalWounds []dice.Value
	Hits         []Hit
}
