package engine

import (
	"fmt"
	"math"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

// Action is one submitted action.
type Action struct {
	Kind      game.ActionKind
	AbilityID string
}

// Result describes what a resolution did. Rejected results carry no state
// change.
type Result struct {
	Action        Action
	Rejected      error
	Hit           bool
	Critical      bool
	Damage        int
	Healed        int
	DefenseGained int
	EnergyDelta   int
	SelfDamage    int
	FleeChance    int
	Fled          bool
	Surrendered   bool
	Summary       string
}

// Ends reports whether the result terminates the battle regardless of HP.
func (r Result) Ends() bool { return r.Fled || r.Surrendered }

// Validate reports whether actor may perform act right now.
func Validate(actor *Combatant, act Action) error {
	switch act.Kind {
	case game.ActionAttack, game.ActionDefend, game.ActionFlee, game.ActionSurrender:
		return nil
	case game.ActionAbility:
		return actor.CanUse(act.AbilityID)
	default:
		return ErrUnknownAction
	}
}

// Resolve applies act from actor against target. Draws come from dice. It
// never fails: invalid actions come back as Rejected with both combatants
// untouched, and all arithmetic is clamped.
func Resolve(actor, target *Combatant, act Action, dice Dice) Result {
	res := Result{Action: act}
	if err := Validate(actor, act); err != nil {
		res.Rejected = err
		res.Summary = "action rejected: " + err.Error()
		return res
	}
	switch act.Kind {
	case game.ActionAttack:
		resolveAttack(actor, target, dice, &res)
	case game.ActionAbility:
		resolveAbility(actor, target, act.AbilityID, &res)
	case game.ActionDefend:
		resolveDefend(actor, &res)
	case game.ActionFlee:
		resolveFlee(actor, dice, &res)
	case game.ActionSurrender:
		res.Surrendered = true
		res.Summary = "surrendered"
	}
	actor.normalize()
	target.normalize()
	return res
}

func resolveAttack(actor, target *Combatant, dice Dice, res *Result) {
	res.EnergyDelta = actor.gainEnergy(AttackEnergyGain)
	if dice.Roll() >= HitChance() {
		res.Summary = "attack missed"
		return
	}
	res.Hit = true
	raw := BaseAttackDamage(actor.Stats.Forca)
	if dice.Roll() < CriticalChance {
		res.Critical = true
		raw = int(math.Floor(float64(raw) * CriticalMultiplier))
	}
	res.Damage = target.takeDamage(hitDamage(raw, target.Defense))
	target.Defense = 0
	if res.Critical {
		res.Summary = fmt.Sprintf("critical hit for %d damage", res.Damage)
	} else {
		res.Summary = fmt.Sprintf("hit for %d damage", res.Damage)
	}
}

// hitDamage subtracts defense from raw damage; a connecting hit deals at
// least 1.
func hitDamage(raw, defense int) int {
	d := nonNegative(raw) - nonNegative(defense)
	if d < 1 {
		d = 1
	}
	return d
}

func resolveAbility(actor, target *Combatant, id string, res *Result) {
	ab, _ := actor.Ability(id)
	res.EnergyDelta = -ab.Cost
	actor.Energy -= ab.Cost
	if ab.Cooldown > 0 {
		actor.Cooldowns[ab.ID] = ab.Cooldown
	}
	switch ab.Kind {
	case game.AbilityOffensive:
		res.Hit = true
		raw := AbilityDamage(ab, actor, target.Elemento)
		res.Damage = target.takeDamage(hitDamage(raw, target.Defense))
		target.Defense = 0
		res.Summary = fmt.Sprintf("%s deals %d damage", ab.Name, res.Damage)
	case game.AbilityHeal:
		amount := int(math.Floor(float64(actor.HPMax) * HealRatio))
		before := actor.HP
		actor.HP = clamp(actor.HP+amount, 0, actor.HPMax)
		res.Healed = actor.HP - before
		res.Summary = fmt.Sprintf("%s restores %d HP", ab.Name, res.Healed)
	case game.AbilityBuff:
		res.DefenseGained = raiseDefense(actor, BuffResistanceRatio)
		res.Summary = fmt.Sprintf("%s raises defense by %d", ab.Name, res.DefenseGained)
	default:
		res.Summary = ab.Name + " has no effect"
	}
}

// raiseDefense sets defense to ratio*resistencia unless it is already higher.
func raiseDefense(c *Combatant, ratio float64) int {
	grant := int(math.Floor(float64(c.Stats.Resistencia) * ratio))
	if grant <= c.Defense {
		return 0
	}
	gained := grant - c.Defense
	c.Defense = grant
	return gained
}

func resolveDefend(actor *Combatant, res *Result) {
	res.DefenseGained = raiseDefense(actor, DefendResistanceRatio)
	res.EnergyDelta = actor.gainEnergy(DefendEnergyGain)
	res.Summary = fmt.Sprintf("defends (defense %d)", actor.Defense)
}

func resolveFlee(actor *Combatant, dice Dice, res *Result) {
	res.FleeChance = FleeChance(actor.Stats.Agilidade, actor.Vinculo, actor.HPPercent())
	if dice.Roll() < float64(res.FleeChance) {
		res.Fled = true
		res.Summary = fmt.Sprintf("fled (%d%% chance)", res.FleeChance)
		return
	}
	self := int(math.Floor(float64(actor.HPMax) * FleeSelfDamageRatio))
	if self < 1 {
		self = 1
	}
	res.SelfDamage = actor.takeDamage(self)
	res.Summary = fmt.Sprintf("failed to flee (%d%% chance) and took %d damage", res.FleeChance, res.SelfDamage)
}
