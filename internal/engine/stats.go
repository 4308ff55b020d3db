package engine

import (
	"math"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

// --- Resource model ----------------------------------------------------
const (
	MaxEnergy      = 100
	StartingEnergy = 100

	AttackHitChance    = 85.0
	CriticalChance     = 15.0
	CriticalMultiplier = 1.5
	AttackStatScale    = 1.2
	AttackEnergyGain   = 15

	DefendResistanceRatio = 0.7
	DefendEnergyGain      = 20
	BuffResistanceRatio   = 0.5
	HealRatio             = 0.3

	FleeMinChance       = 20
	FleeMaxChance       = 80
	FleeLowHPPercent    = 30
	FleeLowHPBonus      = 15
	FleeSelfDamageRatio = 0.1

	baseHP          = 50
	hpPerResistance = 4
	hpPerLevel      = 5
)

func rarityHPBonus(r game.Rarity) int {
	switch r {
	case game.RarityRaro:
		return 10
	case game.RarityEpico:
		return 25
	case game.RarityLendario:
		return 50
	default:
		return 0
	}
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func nonNegative(x int) int {
	if x < 0 {
		return 0
	}
	return x
}

// ExhaustionMultiplier returns the factor applied to every base stat for the
// given exhaustion level (0–100).
func ExhaustionMultiplier(exhaustion int) float64 {
	switch e := clamp(exhaustion, 0, 100); {
	case e >= 80:
		return 0.5
	case e >= 60:
		return 0.7
	case e >= 40:
		return 0.85
	case e >= 20:
		return 0.95
	default:
		return 1.0
	}
}

// EffectiveStats applies the exhaustion penalty to the avatar's base stats.
func EffectiveStats(a game.AvatarSnapshot) game.Stats {
	m := ExhaustionMultiplier(a.Exhaustion)
	scale := func(v int) int { return int(math.Floor(float64(nonNegative(v)) * m)) }
	return game.Stats{
		Forca:       scale(a.Stats.Forca),
		Agilidade:   scale(a.Stats.Agilidade),
		Resistencia: scale(a.Stats.Resistencia),
		Foco:        scale(a.Stats.Foco),
	}
}

// MaxHP derives max HP from base resistance, level and rarity. Exhaustion
// does not reduce max HP.
func MaxHP(a game.AvatarSnapshot) int {
	hp := baseHP + nonNegative(a.Stats.Resistencia)*hpPerResistance + nonNegative(a.Nivel)*hpPerLevel + rarityHPBonus(a.Raridade)
	if hp < 1 {
		hp = 1
	}
	return hp
}

// HitChance is the basic attack hit chance in percent.
func HitChance() float64 { return AttackHitChance }

// BaseAttackDamage is the raw basic attack damage before critical and defense.
func BaseAttackDamage(forca int) int {
	return int(math.Floor(float64(nonNegative(forca)) * AttackStatScale))
}

// AbilityDamage is the raw offensive ability damage before defense.
func AbilityDamage(ab game.Ability, actor *Combatant, target game.Element) int {
	stat := float64(actor.Stats.Get(ab.PrimaryStat))
	levelScale := 1 + float64(nonNegative(actor.Nivel))*0.05
	bondScale := 1 + float64(clamp(actor.Vinculo, 0, 100))/200
	raw := (float64(nonNegative(ab.Power)) + stat*1.5) * levelScale * bondScale * ElementMultiplier(actor.Elemento, target)
	return int(math.Floor(raw))
}

// FleeChance returns the percent chance of a successful flee, clamped to
// [FleeMinChance, FleeMaxChance].
func FleeChance(agilidade, vinculo, hpPercent int) int {
	chance := nonNegative(agilidade)*2 + nonNegative(vinculo)/10
	if hpPercent < FleeLowHPPercent {
		chance += FleeLowHPBonus
	}
	return clamp(chance, FleeMinChance, FleeMaxChance)
}

// HPPercent returns hp as an integer percentage of max.
func HPPercent(hp, max int) int {
	if max <= 0 {
		return 0
	}
	return clamp(hp*100/max, 0, 100)
}
