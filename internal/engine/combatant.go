package engine

import (
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

var (
	ErrUnknownAbility     = apperr.New(apperr.CodeValidation, "unknown ability")
	ErrAbilityOnCooldown  = apperr.New(apperr.CodeValidation, "ability is on cooldown")
	ErrInsufficientEnergy = apperr.New(apperr.CodeValidation, "not enough energy")
	ErrUnknownAction      = apperr.New(apperr.CodeValidation, "unknown action")
)

// Combatant is the per-resolution snapshot of one side: persisted state plus
// values derived from the avatar. It is rebuilt for every resolution.
type Combatant struct {
	game.CombatantState
	HPMax      int
	Stats      game.Stats
	Elemento   game.Element
	Nivel      int
	Vinculo    int
	Exhaustion int
	Abilities  []game.Ability
}

// InitialState returns the state of a fresh combatant: full HP, full energy.
func InitialState(a game.AvatarSnapshot) game.CombatantState {
	return game.CombatantState{
		HP:        MaxHP(a),
		Energy:    StartingEnergy,
		Cooldowns: map[string]int{},
	}
}

// NewCombatant derives a snapshot from the avatar and its persisted state.
// Out-of-range persisted values are clamped.
func NewCombatant(a game.AvatarSnapshot, st game.CombatantState) *Combatant {
	c := &Combatant{
		CombatantState: st,
		HPMax:          MaxHP(a),
		Stats:          EffectiveStats(a),
		Elemento:       a.Elemento,
		Nivel:          a.Nivel,
		Vinculo:        a.Vinculo,
		Exhaustion:     clamp(a.Exhaustion, 0, 100),
		Abilities:      a.Abilities,
	}
	c.Cooldowns = make(map[string]int, len(st.Cooldowns))
	for k, v := range st.Cooldowns {
		if v > 0 {
			c.Cooldowns[k] = v
		}
	}
	c.normalize()
	return c
}

func (c *Combatant) normalize() {
	c.HP = clamp(c.HP, 0, c.HPMax)
	c.Energy = clamp(c.Energy, 0, MaxEnergy)
	c.Defense = nonNegative(c.Defense)
}

// State returns a copy of the persisted part.
func (c *Combatant) State() game.CombatantState {
	c.normalize()
	cds := make(map[string]int, len(c.Cooldowns))
	for k, v := range c.Cooldowns {
		if v > 0 {
			cds[k] = v
		}
	}
	return game.CombatantState{HP: c.HP, Energy: c.Energy, Defense: c.Defense, Cooldowns: cds}
}

func (c *Combatant) HPPercent() int { return HPPercent(c.HP, c.HPMax) }

func (c *Combatant) Defeated() bool { return c.HP <= 0 }

// Ability looks up one of the combatant's abilities.
func (c *Combatant) Ability(id string) (game.Ability, bool) {
	for _, ab := range c.Abilities {
		if ab.ID == id {
			return ab, true
		}
	}
	return game.Ability{}, false
}

// CanUse reports why an ability cannot be used right now, or nil.
func (c *Combatant) CanUse(id string) error {
	ab, ok := c.Ability(id)
	if !ok {
		return ErrUnknownAbility
	}
	if c.Cooldowns[ab.ID] > 0 {
		return ErrAbilityOnCooldown
	}
	if c.Energy < ab.Cost {
		return ErrInsufficientEnergy
	}
	return nil
}

// TickCooldowns decrements every positive cooldown by one.
func (c *Combatant) TickCooldowns() {
	for k, v := range c.Cooldowns {
		if v <= 1 {
			delete(c.Cooldowns, k)
			continue
		}
		c.Cooldowns[k] = v - 1
	}
}

func (c *Combatant) gainEnergy(n int) int {
	before := c.Energy
	c.Energy = clamp(c.Energy+n, 0, MaxEnergy)
	return c.Energy - before
}

func (c *Combatant) takeDamage(n int) int {
	before := c.HP
	c.HP = clamp(c.HP-n, 0, c.HPMax)
	return before - c.HP
}
