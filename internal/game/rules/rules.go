// Package rules models the configurable combat modifiers as closed sets of
// variants. Every rule type has a no-op variant; behavior lives in interface
// methods so that a new variant cannot be added without implementing it.
package rules

import (
	"errors"

	"github.com/cory-johannsen/grimdark/internal/game/dice"
)

// MaxAdditionalHits is the largest additional-hits payload a rule may carry.
const MaxAdditionalHits = 100

// ErrTooManyAdditionalHits is returned when an additional-hits payload can
// exceed MaxAdditionalHits.
var ErrTooManyAdditionalHits = errors.New("too many additional hits")

// Trigger fires when the natural (unmodified) die result is at least OnResult.
type Trigger struct {
	OnResult int
}

// Fires reports whether natural meets the threshold.
func (t Trigger) Fires(natural int) bool {
	return natural >= t.OnResult
}

// AutoHitRule decides whether attacks skip the hit roll.
type AutoHitRule interface {
	AutoHits() bool
	isAutoHitRule()
}

// NoAutoHit rolls to hit as normal.
type NoAutoHit struct{}

// AlwaysHit bypasses the hit roll entirely.
type AlwaysHit struct{}

func (NoAutoHit) AutoHits() bool { return false }
func (AlwaysHit) AutoHits() bool { return true }
func (NoAutoHit) isAutoHitRule() {}
func (AlwaysHit) isAutoHitRule() {}

// AutoWoundRule decides whether a successful hit skips the wound roll.
type AutoWoundRule interface {
	AutoWounds(natural int) bool
	isAutoWoundRule()
}

// NoAutoWound sends every hit to the wound roll.
type NoAutoWound struct{}

// AutoWoundOn wounds automatically when the hit roll triggers.
type AutoWoundOn struct {
	Trigger
}

func (NoAutoWound) AutoWounds(int) bool { return false }
func (r AutoWoundOn) AutoWounds(natural int) bool { return r.Fires(natural) }
func (NoAutoWound) isAutoWoundRule() {}
func (AutoWoundOn) isAutoWoundRule() {}

// AdditionalHitsRule grants extra hits on a triggering hit roll.
type AdditionalHitsRule interface {
	// ExtraHits returns the extra hits to evaluate, dice.Zero when not triggered.
	ExtraHits(natural int) dice.Value
	isAdditionalHitsRule()
}

// NoAdditionalHits grants nothing.
type NoAdditionalHits struct{}

// AdditionalHitsOn grants Hits extra hits when triggered.
type AdditionalHitsOn struct {
	Trigger
	Hits dice.Value
}

// NewAdditionalHitsOn builds an AdditionalHitsOn rule.
//
// Postcondition: returns ErrTooManyAdditionalHits when MaxValue(hits) > MaxAdditionalHits.
func NewAdditionalHitsOn(onResult int, hits dice.Value) (AdditionalHitsRule, error) {
	if dice.MaxValue(hits) > MaxAdditionalHits {
		return nil, ErrTooManyAdditionalHits
	}
	return AdditionalHitsOn{Trigger: Trigger{OnResult: onResult}, Hits: hits}, nil
}

func (NoAdditionalHits) ExtraHits(int) dice.Value { return dice.Zero }

func (r AdditionalHitsOn) ExtraHits(natural int) dice.Value {
	if !r.Fires(natural) {
		return dice.Zero
	}
	return r.Hits
}

func (NoAdditionalHits) isAdditionalHitsRule() {}
func (AdditionalHitsOn) isAdditionalHitsRule() {}

// ModifierRule changes a characteristic (damage, strength or penetration)
// when the natural roll triggers.
type ModifierRule interface {
	// Apply returns the characteristic to carry forward. It never evaluates.
	Apply(natural int, current dice.Value) dice.Value
	isModifierRule()
}

// NoModifier leaves the characteristic alone.
type NoModifier struct{}

// AddOn adds Amount to the characteristic when triggered.
type AddOn struct {
	Trigger
	Amount dice.Value
}

// ReplaceOn replaces the characteristic with Value when triggered.
type ReplaceOn struct {
	Trigger
	Value dice.Value
}

func (NoModifier) Apply(_ int, current dice.Value) dice.Value { return current }

func (r AddOn) Apply(natural int, current dice.Value) dice.Value {
	if !r.Fires(natural) {
		return current
	}
	return dice.Add(current, r.Amount)
}

func (r ReplaceOn) Apply(natural int, current dice.Value) dice.Value {
	if !r.Fires(natural) {
		return current
	}
	return r.Value
}

func (NoModifier) isModifierRule() {}
func (AddOn) isModifierRule() {}
func (ReplaceOn) isModifierRule() {}

// MortalWoundRule inflicts mortal wounds on a triggering roll, independent of
// whether the roll also hit or wounded.
type MortalWoundRule interface {
	// MortalWounds returns the mortal wounds inflicted, dice.Zero when not triggered.
	MortalWounds(natural int) dice.Value
	isMortalWoundRule()
}

// NoMortalWounds inflicts nothing.
type NoMortalWounds struct{}

// MortalWoundsOn inflicts Amount mortal wounds when triggered.
type MortalWoundsOn struct {
	Trigger
	Amount dice.Value
}

func (NoMortalWounds) MortalWounds(int) dice.Value { return dice.Zero }

func (r MortalWoundsOn) MortalWounds(natural int) dice.Value {
	if !r.Fires(natural) {
		return dice.Zero
	}
	return r.Amount
}

func (NoMortalWounds) isMortalWoundRule() {}
func (MortalWoundsOn) isMortalWoundRule() {}
