package profile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

// stepper is one adjustable text field.
type stepper struct {
	text      *string
	allowZero bool
	clamp     int // 0 means unclamped
}

func (p *Profile) steppers() map[string]stepper {
	a, d := &p.Attacker, &p.Defender
	m := map[string]stepper{
		"attacker.attacks":     {text: &a.Attacks, clamp: combat.MaxAttacks},
		"attacker.skill":       {text: &a.Skill},
		"attacker.strength":    {text: &a.Strength},
		"attacker.penetration": {text: &a.Penetration, allowZero: true},
		"attacker.damage":      {text: &a.Damage},

		"attacker.hit.auto_wound.on":         {text: &a.Hit.AutoWound.On},
		"attacker.hit.additional_hits.on":    {text: &a.Hit.AdditionalHits.On},
		"attacker.hit.additional_hits.value": {text: &a.Hit.AdditionalHits.Value, clamp: rules.MaxAdditionalHits},
		"attacker.hit.mortal_wounds.on":      {text: &a.Hit.MortalWounds.On},
		"attacker.hit.mortal_wounds.value":   {text: &a.Hit.MortalWounds.Value},
		"attacker.wound.mortal_wounds.on":    {text: &a.Wound.MortalWounds.On},
		"attacker.wound.mortal_wounds.value": {text: &a.Wound.MortalWounds.Value},
		"defender.toughness":                 {text: &d.Toughness},
		"defender.save":                      {text: &d.Save},
		"defender.invulnerable_save.value":   {text: &d.InvulnerableSave.Value},
		"defender.feel_no_pain.value":        {text: &d.FeelNoPain.Value},
		"defender.damage_reduction.value":    {text: &d.DamageReduction.Value},
	}
	for prefix, mods := range map[string]map[string]*Modifier{
		"attacker.hit.":   {"damage": &a.Hit.Damage, "strength": &a.Hit.Strength, "penetration": &a.Hit.Penetration},
		"attacker.wound.": {"damage": &a.Wound.Damage, "strength": &a.Wound.Strength, "penetration": &a.Wound.Penetration},
	} {
		for name, mod := range mods {
			m[prefix+name+".on"] = stepper{text: &mod.On}
			m[prefix+name+".value"] = stepper{text: &mod.Value}
		}
	}
	return m
}

// Fields lists every field name Adjust accepts, sorted.
func (p *Profile) Fields() []string {
	steps := p.steppers()
	names := make([]string, 0, len(steps))
	for name := range steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Adjust steps the named field up or down by one, on its text form, so dice
// notation such as "2d6 + 1" survives. Penetration may reach zero; attacks and
// additional hits are clamped to their capacity when they are plain integers.
//
// Postcondition: returns an error only for an unknown field.
func (p *Profile) Adjust(field string, up bool) error {
	s, ok := p.steppers()[field]
	if !ok {
		return fmt.Errorf("unknown profile field %q", field)
	}
	next := dice.Decrease(*s.text, s.allowZero)
	if up {
		next = dice.Increase(*s.text)
	}
	*s.text = clampDigits(next, s.clamp)
	return nil
}

// ApplyAdjustments applies a comma-separated list of steps such as
// "attacker.attacks+,defender.save-".
func (p *Profile) ApplyAdjustments(spec string) error {
	for _, step := range strings.Split(spec, ",") {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		field, dir := step[:len(step)-1], step[len(step)-1]
		if dir != '+' && dir != '-' {
			return fmt.Errorf("adjustment %q must end in '+' or '-'", step)
		}
		if err := p.Adjust(field, dir == '+'); err != nil {
			return err
		}
	}
	return nil
}

func clampDigits(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= limit {
		return text
	}
	return strconv.Itoa(limit)
}
