package ai

import (
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

// Step is the stage of the per-turn decision that produced the action.
type Step string

const (
	StepFlee      Step = "check-flee"
	StepSurrender Step = "check-surrender"
	StepChoose    Step = "choose-action"
)

const lowEnergy = 20

// Decision is the AI's chosen action for one turn.
type Decision struct {
	Step   Step
	Action engine.Action
	Reason string
}

// Decide runs check-flee, check-surrender and choose-action in order. The
// returned action always passes engine.Validate for self.
func Decide(self, opp *engine.Combatant, p Profile, dice engine.Dice) Decision {
	if shouldFlee(self, p) {
		return Decision{Step: StepFlee, Action: engine.Action{Kind: game.ActionFlee}, Reason: "low hp"}
	}
	if shouldSurrender(self, opp, p) {
		return Decision{Step: StepSurrender, Action: engine.Action{Kind: game.ActionSurrender}, Reason: "outmatched"}
	}
	return choose(self, p, dice)
}

func shouldFlee(self *engine.Combatant, p Profile) bool {
	if p.FleeThreshold <= 0 {
		return false
	}
	hp := self.HPPercent()
	if hp < p.FleeThreshold {
		return true
	}
	return float64(hp) < 1.5*float64(p.FleeThreshold) && self.Energy < lowEnergy
}

func shouldSurrender(self, opp *engine.Combatant, p Profile) bool {
	if p.SurrenderThreshold <= 0 {
		return false
	}
	hp := self.HPPercent()
	return hp < p.SurrenderThreshold && opp.HPPercent() >= 2*hp
}

type option struct {
	action engine.Action
	weight float64
	reason string
}

func choose(self *engine.Combatant, p Profile, dice engine.Dice) Decision {
	opts := []option{{action: engine.Action{Kind: game.ActionAttack}, weight: 1 + p.Aggressiveness*2, reason: "attack"}}
	hp := self.HPPercent()
	for _, ab := range self.Abilities {
		if self.CanUse(ab.ID) != nil {
			continue
		}
		var w float64
		switch ab.Kind {
		case game.AbilityOffensive:
			w = p.Aggressiveness * 3
		case game.AbilityHeal:
			if hp < 60 {
				w = p.Caution * 3 * float64(100-hp) / 100
			}
		case game.AbilityBuff:
			if self.Defense == 0 {
				w = p.Caution * 1.5
			}
		}
		if w > 0 {
			opts = append(opts, option{action: engine.Action{Kind: game.ActionAbility, AbilityID: ab.ID}, weight: w, reason: string(ab.Kind) + " ability"})
		}
	}
	defend := p.Caution
	if hp < 50 {
		defend *= 2
	}
	opts = append(opts, option{action: engine.Action{Kind: game.ActionDefend}, weight: defend, reason: "defend"})

	picked := weighted(opts, dice)
	if engine.Validate(self, picked.action) != nil {
		return Decision{Step: StepChoose, Action: engine.Action{Kind: game.ActionAttack}, Reason: "fallback attack"}
	}
	return Decision{Step: StepChoose, Action: picked.action, Reason: picked.reason}
}

func weighted(opts []option, dice engine.Dice) option {
	var total float64
	for _, o := range opts {
		total += o.weight
	}
	if total <= 0 {
		return opts[0]
	}
	target := dice.Roll() / 100 * total
	for _, o := range opts {
		if target < o.weight {
			return o
		}
		target -= o.weight
	}
	return opts[len(opts)-1]
}
