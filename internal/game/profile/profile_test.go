package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/profile"
	"github.com/cory-johannsen/grimdark/internal/game/rules"
)

func TestDefault_Builds(t *testing.T) {
	a, d, err := profile.Default().Build()
	require.NoError(t, err)

	assert.Equal(t, dice.Constant{N: 1}, a.Attacks)
	assert.Equal(t, 3, a.Skill)
	assert.Equal(t, combat.DefaultHitRules(), a.Hit)
	assert.Equal(t, combat.DefaultWoundRules(), a.Wound)

	assert.Equal(t, dice.Constant{N: combat.NoInvulnerableSave}, d.InvulnerableSave)
	assert.Equal(t, combat.NoFeelNoPain, d.FeelNoPain)
	assert.True(t, dice.IsZero(d.DamageReduction))
}

func TestLoad_File(t *testing.T) {
	p, err := profile.Load(filepath.Join("testdata", "intercessors_vs_terminators.yaml"))
	require.NoError(t, err)

	a, d, err := p.Build()
	require.NoError(t, err)

	assert.Equal(t, 13, dice.MaxValue(a.Attacks))
	assert.Equal(t, rules.RerollOnes{}, a.Hit.Reroll)
	assert.Equal(t, rules.RerollSingle{}, a.Wound.Reroll)
	assert.Equal(t, rules.AdditionalHitsOn{Trigger: rules.Trigger{OnResult: 6}, Hits: dice.Constant{N: 1}}, a.Hit.AdditionalHits)
	assert.Equal(t, rules.MortalWoundsOn{Trigger: rules.Trigger{OnResult: 6}, Amount: dice.Random{Low: 1, High: 3}}, a.Wound.MortalWounds)
	assert.Equal(t, rules.NoModifier{}, a.Hit.Damage, "omitted fields keep their defaults")

	assert.Equal(t, dice.Constant{N: 4}, d.InvulnerableSave)
	assert.Equal(t, combat.NoFeelNoPain, d.FeelNoPain)
}

func TestLoad_Errors(t *testing.T) {
	_, err := profile.Load("/nonexistent/profile.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attacker: [1, 2"), 0644))
	_, err = profile.Load(path)
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	p := profile.Default()
	p.Attacker.Hit.Damage = profile.Modifier{Mode: "add", On: "5", Value: "d3"}

	data, err := p.Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestBuild_FieldErrors(t *testing.T) {
	cases := map[string]func(p *profile.Profile){
		"attacker.strength":             func(p *profile.Profile) { p.Attacker.Strength = "four" },
		"attacker.skill":                func(p *profile.Profile) { p.Attacker.Skill = "3+" },
		"attacker.hit.reroll":           func(p *profile.Profile) { p.Attacker.Hit.Reroll = "twice" },
		"attacker.hit.damage.mode":      func(p *profile.Profile) { p.Attacker.Hit.Damage.Mode = "double" },
		"attacker.wound.penetration.on": func(p *profile.Profile) { p.Attacker.Wound.Penetration = profile.Modifier{Mode: "add", On: "x", Value: "1"} },
		"defender.save":                 func(p *profile.Profile) { p.Defender.Save = "" },
		"defender.feel_no_pain.value":   func(p *profile.Profile) { p.Defender.FeelNoPain = profile.Optional{Enabled: true, Value: "d6"} },
	}
	for field, mutate := range cases {
		p := profile.Default()
		mutate(&p)
		_, _, err := p.Build()
		var fe *profile.FieldError
		require.ErrorAs(t, err, &fe, field)
		assert.Equal(t, field, fe.Field)
		assert.False(t, combat.IsCapacityError(err), field)
	}
}

func TestBuild_ParseErrorIsReachable(t *testing.T) {
	p := profile.Default()
	p.Attacker.Damage = "2d"
	_, _, err := p.Build()
	var pe *dice.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
}

func TestBuild_CapacityErrors(t *testing.T) {
	p := profile.Default()
	p.Attacker.Attacks = "1001"
	_, _, err := p.Build()
	assert.ErrorIs(t, err, combat.ErrTooManyAttacks)

	p = profile.Default()
	p.Attacker.Attacks = "200d6"
	p.Attacker.Strength = "bad"
	_, _, err = p.Build()
	assert.ErrorIs(t, err, combat.ErrTooManyAttacks, "the attacks cap is reported before later field errors")

	p = profile.Default()
	p.Attacker.Hit.AdditionalHits = profile.Payload{Enabled: true, On: "6", Value: "50d3"}
	_, _, err = p.Build()
	assert.ErrorIs(t, err, rules.ErrTooManyAdditionalHits)
	assert.True(t, combat.IsCapacityError(err))
}

func TestBuild_AttacksCap_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 3000).Draw(rt, "attacks")
		p := profile.Default()
		p.Attacker.Attacks = dice.Constant{N: n}.String()
		_, _, err := p.Build()
		if n > combat.MaxAttacks {
			assert.ErrorIs(rt, err, combat.ErrTooManyAttacks)
		} else {
			assert.NoError(rt, err)
		}
	})
}

func TestBuild_DefenderOptionals(t *testing.T) {
	p := profile.Default()
	p.Defender.InvulnerableSave.Enabled = true
	p.Defender.FeelNoPain.Enabled = true
	p.Defender.DamageReduction.Enabled = true
	p.Defender.HitTranshuman = true

	_, d, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, dice.Constant{N: 6}, d.InvulnerableSave)
	assert.Equal(t, 6, d.FeelNoPain)
	assert.Equal(t, dice.Constant{N: 1}, d.DamageReduction)
	assert.True(t, d.HitTranshuman)
	assert.False(t, d.WoundTranshuman)
}

func TestBuild_Modifiers(t *testing.T) {
	p := profile.Default()
	p.Attacker.Hit.AutoHit = true
	p.Attacker.Hit.AutoWound = profile.Trigger{Enabled: true, On: "5"}
	p.Attacker.Hit.Strength = profile.Modifier{Mode: "Replace", On: "6", Value: "8"}
	p.Attacker.Wound.Damage = profile.Modifier{Mode: "add", On: "6", Value: "1"}

	a, _, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, rules.AlwaysHit{}, a.Hit.AutoHit)
	assert.Equal(t, rules.AutoWoundOn{Trigger: rules.Trigger{OnResult: 5}}, a.Hit.AutoWound)
	assert.Equal(t, rules.ReplaceOn{Trigger: rules.Trigger{OnResult: 6}, Value: dice.Constant{N: 8}}, a.Hit.Strength)
	assert.Equal(t, rules.AddOn{Trigger: rules.Trigger{OnResult: 6}, Amount: dice.Constant{N: 1}}, a.Wound.Damage)
}

func TestBuild_OversizedAttacksNeverPanic(t *testing.T) {
	cases := []struct {
		attacks string
		want    error
	}{
		{"9223372036854775807 + 1", combat.ErrTooManyAttacks},
		{"9223372036854775807", combat.ErrTooManyAttacks},
		{"5000d6", combat.ErrTooManyAttacks},
		{"100000000000000d6", dice.ErrInvalidExpression},
	}
	for _, tc := range cases {
		t.Run(tc.attacks, func(t *testing.T) {
			p := profile.Default()
			p.Attacker.Attacks = tc.attacks
			var err error
			require.NotPanics(t, func() { _, _, err = p.Build() })
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBuild_OversizedAdditionalHits(t *testing.T) {
	p := profile.Default()
	p.Attacker.Hit.AdditionalHits = profile.Payload{Enabled: true, On: "6", Value: "9223372036854775807 + 1"}
	_, _, err := p.Build()
	assert.ErrorIs(t, err, rules.ErrTooManyAdditionalHits)
}
