// Package profile holds the textual attacker/defender configuration, loads it
// from YAML, and validates it into combat models.
package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

// FieldError reports a profile field that failed to parse.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Trigger is a rule that only needs a threshold.
type Trigger struct {
	Enabled bool   `yaml:"enabled"`
	On      string `yaml:"on"`
}

// Payload is a rule with a threshold and a dice payload.
type Payload struct {
	Enabled bool   `yaml:"enabled"`
	On      string `yaml:"on"`
	Value   string `yaml:"value"`
}

// Modifier is a characteristic modifier. Mode is "none", "add" or "replace".
type Modifier struct {
	Mode  string `yaml:"mode"`
	On    string `yaml:"on"`
	Value string `yaml:"value"`
}

// Optional is a defender characteristic that may be switched off.
type Optional struct {
	Enabled bool   `yaml:"enabled"`
	Value   string `yaml:"value"`
}

// HitProfile configures the hit phase.
type HitProfile struct {
	Reroll         string   `yaml:"reroll"`
	PlusOne        bool     `yaml:"plus_one"`
	AutoHit        bool     `yaml:"auto_hit"`
	AutoWound      Trigger  `yaml:"auto_wound"`
	AdditionalHits Payload  `yaml:"additional_hits"`
	Damage         Modifier `yaml:"damage"`
	Strength       Modifier `yaml:"strength"`
	Penetration    Modifier `yaml:"penetration"`
	MortalWounds   Payload  `yaml:"mortal_wounds"`
}

// WoundProfile configures the wound phase.
type WoundProfile struct {
	Reroll       string   `yaml:"reroll"`
	PlusOne      bool     `yaml:"plus_one"`
	Damage       Modifier `yaml:"damage"`
	Strength     Modifier `yaml:"strength"`
	Penetration  Modifier `yaml:"penetration"`
	MortalWounds Payload  `yaml:"mortal_wounds"`
}

// AttackerProfile is the textual attacker.
type AttackerProfile struct {
	Attacks     string       `yaml:"attacks"`
	Skill       string       `yaml:"skill"`
	Strength    string       `yaml:"strength"`
	Penetration string       `yaml:"penetration"`
	Damage      string       `yaml:"damage"`
	Hit         HitProfile   `yaml:"hit"`
	Wound       WoundProfile `yaml:"wound"`
}

// DefenderProfile is the textual defender.
type DefenderProfile struct {
	HitTranshuman    bool     `yaml:"hit_transhuman"`
	WoundTranshuman  bool     `yaml:"wound_transhuman"`
	Toughness        string   `yaml:"toughness"`
	Save             string   `yaml:"save"`
	InvulnerableSave Optional `yaml:"invulnerable_save"`
	FeelNoPain       Optional `yaml:"feel_no_pain"`
	DamageReduction  Optional `yaml:"damage_reduction"`
}

// Profile is one attacker against one defender.
type Profile struct {
	Attacker AttackerProfile `yaml:"attacker"`
	Defender DefenderProfile `yaml:"defender"`
}

func defaultModifier() Modifier { return Modifier{Mode: "none", On: "6", Value: "1"} }
func defaultPayload() Payload { return Payload{On: "6", Value: "1"} }

// Default returns the starting profile: a 3+ strength 4 single attack into
// toughness 4 with a 4+ save, every rule off.
func Default() Profile {
	return Profile{
		Attacker: AttackerProfile{
			Attacks:     "1",
			Skill:       "3",
			Strength:    "4",
			Penetration: "0",
			Damage:      "1",
			Hit: HitProfile{
				Reroll:         "none",
				AutoWound:      Trigger{On: "6"},
				AdditionalHits: defaultPayload(),
				Damage:         defaultModifier(),
				Strength:       defaultModifier(),
				Penetration:    defaultModifier(),
				MortalWounds:   defaultPayload(),
			},
			Wound: WoundProfile{
				Reroll:       "none",
				Damage:       defaultModifier(),
				Strength:     defaultModifier(),
				Penetration:  defaultModifier(),
				MortalWounds: defaultPayload(),
			},
		},
		Defender: DefenderProfile{
			Toughness:        "4",
			Save:             "4",
			InvulnerableSave: Optional{Value: "6"},
			FeelNoPain:       Optional{Value: "6"},
			DamageReduction:  Optional{Value: "1"},
		},
	}
}

// Load reads a YAML profile from path. Fields absent from the file keep their
// Default values.
//
// Postcondition: Returns the parsed profile or a non-nil error; the profile is
// not validated until Build.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile file %s: %w", path, err)
	}
	return p, nil
}

// Marshal renders p as YAML.
func (p Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Build validates p into combat models. Attacks are checked first, so a
// capacity error on attacks wins over any later field error.
//
// Postcondition: the error is a *FieldError (wrapping a *dice.ParseError or a
// keyword error), combat.ErrTooManyAttacks, or rules.ErrTooManyAdditionalHits.
func (p Profile) Build() (combat.Attacker, combat.Defender, error) {
	a, err := p.Attacker.build()
	if err != nil {
		return combat.Attacker{}, combat.Defender{}, err
	}
	d, err := p.Defender.build()
	if err != nil {
		return combat.Attacker{}, combat.Defender{}, err
	}
	return a, d, nil
}

func (ap AttackerProfile) build() (combat.Attacker, error) {
	b := builder{prefix: "attacker."}
	attacks := b.value("attacks", ap.Attacks)
	if b.err != nil {
		return combat.Attacker{}, b.err
	}
	a, err := combat.NewAttacker(
		attacks,
		b.threshold("skill", ap.Skill),
		b.value("strength", ap.Strength),
		b.value("penetration", ap.Penetration),
		b.value("damage", ap.Damage),
	)
	if err != nil {
		return combat.Attacker{}, err
	}

	h := ap.Hit
	a.Hit.PlusOne = h.PlusOne
	a.Hit.Reroll = b.reroll("hit.reroll", h.Reroll)
	if h.AutoHit {
		a.Hit.AutoHit = rules.AlwaysHit{}
	}
	if h.AutoWound.Enabled {
		a.Hit.AutoWound = rules.AutoWoundOn{Trigger: b.trigger("hit.auto_wound.on", h.AutoWound.On)}
	}
	if h.AdditionalHits.Enabled {
		on := b.threshold("hit.additional_hits.on", h.AdditionalHits.On)
		hits := b.value("hit.additional_hits.value", h.AdditionalHits.Value)
		if b.err == nil {
			if a.Hit.AdditionalHits, err = rules.NewAdditionalHitsOn(on, hits); err != nil {
				return combat.Attacker{}, err
			}
		}
	}
	a.Hit.Damage = b.modifier("hit.damage", h.Damage)
	a.Hit.Strength = b.modifier("hit.strength", h.Strength)
	a.Hit.Penetration = b.modifier("hit.penetration", h.Penetration)
	a.Hit.MortalWounds = b.mortalWounds("hit.mortal_wounds", h.MortalWounds)

	w := ap.Wound
	a.Wound.PlusOne = w.PlusOne
	a.Wound.Reroll = b.reroll("wound.reroll", w.Reroll)
	a.Wound.Damage = b.modifier("wound.damage", w.Damage)
	a.Wound.Strength = b.modifier("wound.strength", w.Strength)
	a.Wound.Penetration = b.modifier("wound.penetration", w.Penetration)
	a.Wound.MortalWounds = b.mortalWounds("wound.mortal_wounds", w.MortalWounds)

	if b.err != nil {
		return combat.Attacker{}, b.err
	}
	return a, nil
}

func (dp DefenderProfile) build() (combat.Defender, error) {
	b := builder{prefix: "defender."}
	d := combat.NewDefender(b.value("toughness", dp.Toughness), b.value("save", dp.Save))
	d.HitTranshuman = dp.HitTranshuman
	d.WoundTranshuman = dp.WoundTranshuman
	if dp.InvulnerableSave.Enabled {
		d.InvulnerableSave = b.value("invulnerable_save.value", dp.InvulnerableSave.Value)
	}
	if dp.FeelNoPain.Enabled {
		d.FeelNoPain = b.threshold("feel_no_pain.value", dp.FeelNoPain.Value)
	}
	if dp.DamageReduction.Enabled {
		d.DamageReduction = b.value("damage_reduction.value", dp.DamageReduction.Value)
	}
	if b.err != nil {
		return combat.Defender{}, b.err
	}
	return d, nil
}

// builder records the first field error; later calls become no-ops returning
// zero values, so construction code reads straight through.
type builder struct {
	prefix string
	err    error
}

func (b *builder) fail(field string, err error) {
	if b.err == nil {
		b.err = &FieldError{Field: b.prefix + field, Err: err}
	}
}

func (b *builder) value(field, text string) dice.Value {
	if b.err != nil {
		return dice.Zero
	}
	v, err := dice.Parse(text)
	if err != nil {
		b.fail(field, err)
		return dice.Zero
	}
	return v
}

func (b *builder) threshold(field, text string) int {
	if b.err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		b.fail(field, &dice.ParseError{Input: text, Reason: "threshold must be an integer"})
		return 0
	}
	return n
}

func (b *builder) trigger(field, text string) rules.Trigger {
	return rules.Trigger{OnResult: b.threshold(field, text)}
}

func (b *builder) reroll(field, keyword string) rules.RerollRule {
	r, ok := rules.RerollRuleFor(strings.ToLower(strings.TrimSpace(keyword)))
	if !ok {
		b.fail(field, fmt.Errorf("unknown reroll rule %q, want one of [none, ones, single, all]", keyword))
		return rules.NoReroll{}
	}
	return r
}

func (b *builder) modifier(field string, m Modifier) rules.ModifierRule {
	switch strings.ToLower(strings.TrimSpace(m.Mode)) {
	case "", "none", "no":
		return rules.NoModifier{}
	case "add":
		return rules.AddOn{Trigger: b.trigger(field+".on", m.On), Amount: b.value(field+".value", m.Value)}
	case "replace":
		return rules.ReplaceOn{Trigger: b.trigger(field+".on", m.On), Value: b.value(field+".value", m.Value)}
	}
	b.fail(field+".mode", fmt.Errorf("unknown modifier mode %q, want one of [none, add, replace]", m.Mode))
	return rules.NoModifier{}
}

func (b *builder) mortalWounds(field string, p Payload) rules.MortalWoundRule {
	if !p.Enabled {
		return rules.NoMortalWounds{}
	}
	return rules.MortalWoundsOn{Trigger: b.trigger(field+".on", p.On), Amount: b.value(field+".value", p.Value)}
}
