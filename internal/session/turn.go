package session

import (
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/ai"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

// Result is one applied turn.
type Result struct {
	Resolution engine.Result
	Record     game.ActionRecord
	Finished   bool
}

// Submit applies a human action. turnNumber must match the battle's current
// turn so a resubmission of an already applied action is rejected. On error
// the battle is left untouched.
func Submit(b *game.Battle, userID string, turnNumber int, act engine.Action, now time.Time, dice engine.Dice, r Rules) (Result, error) {
	if b.Status != game.StatusActive {
		return Result{}, ErrBattleNotActive
	}
	n := b.SlotOf(userID)
	if n == 0 {
		return Result{}, ErrNotParticipant
	}
	if n != b.CurrentPlayer {
		return Result{}, ErrNotYourTurn
	}
	if turnNumber != b.TurnNumber {
		return Result{}, ErrStaleTurn
	}
	actor, _ := combatants(b, n)
	if err := engine.Validate(actor, act); err != nil {
		return Result{}, err
	}
	b.Slot(n).LastSeenAt = now
	return apply(b, n, act, now, dice, r), nil
}

// AITurn plays the AI's turn when it is due. It reports false when the
// battle is not waiting on the AI or the thinking delay has not elapsed.
func AITurn(b *game.Battle, now time.Time, dice engine.Dice, r Rules) (Result, ai.Decision, bool) {
	if b.Status != game.StatusActive || !b.Slot(b.CurrentPlayer).IsAI {
		return Result{}, ai.Decision{}, false
	}
	if now.Before(b.AIActAfter) {
		return Result{}, ai.Decision{}, false
	}
	p, err := ai.ProfileFor(ai.Personality(b.Personality))
	if err != nil {
		p = ai.All()[0]
	}
	self, opp := combatants(b, b.CurrentPlayer)
	d := ai.Decide(self, opp, p, dice)
	return apply(b, b.CurrentPlayer, d.Action, now, dice, r), d, true
}

// ApplyTimeout skips the current turn once its deadline has passed.
func ApplyTimeout(b *game.Battle, now time.Time, dice engine.Dice, r Rules) (game.ActionRecord, bool) {
	if b.Status != game.StatusActive || b.TurnDeadline.IsZero() || now.Before(b.TurnDeadline) {
		return game.ActionRecord{}, false
	}
	// the AI never times out; it acts once its delay has elapsed
	if b.Slot(b.CurrentPlayer).IsAI {
		return game.ActionRecord{}, false
	}
	slot := b.CurrentPlayer
	rec := game.ActionRecord{
		TurnNumber:  b.TurnNumber,
		ActorSlot:   slot,
		ActorUserID: b.Slot(slot).UserID,
		Kind:        game.ActionSkip,
		Summary:     "turn skipped after timeout",
		At:          now,
	}
	b.LastAction = &rec
	b.Message = rec.Summary
	advance(b, now, r)
	scheduleAI(b, now, dice)
	return rec, true
}

// ApplyCancellation cancels a battle that never got both sides ready in time
// or whose human side stopped polling.
func ApplyCancellation(b *game.Battle, now time.Time, r Rules) bool {
	switch b.Status {
	case game.StatusWaiting:
		if !b.ReadyDeadline.IsZero() && now.After(b.ReadyDeadline) {
			cancel(b, "players did not get ready in time", now)
			return true
		}
	case game.StatusActive:
		if r.DisconnectGrace <= 0 {
			return false
		}
		for _, s := range []*game.PlayerSlot{&b.Player1, &b.Player2} {
			if !s.IsAI && now.Sub(s.LastSeenAt) > r.DisconnectGrace {
				cancel(b, "player "+s.UserID+" disconnected", now)
				return true
			}
		}
	}
	return false
}

func apply(b *game.Battle, slot int, act engine.Action, now time.Time, dice engine.Dice, r Rules) Result {
	actor, target := combatants(b, slot)
	res := engine.Resolve(actor, target, act, dice)
	b.Slot(slot).State = actor.State()
	b.Slot(game.Opponent(slot)).State = target.State()

	rec := game.ActionRecord{
		TurnNumber:    b.TurnNumber,
		ActorSlot:     slot,
		ActorUserID:   b.Slot(slot).UserID,
		Kind:          act.Kind,
		AbilityID:     act.AbilityID,
		Hit:           res.Hit,
		Critical:      res.Critical,
		Damage:        res.Damage,
		Healed:        res.Healed,
		DefenseGained: res.DefenseGained,
		EnergyDelta:   res.EnergyDelta,
		SelfDamage:    res.SelfDamage,
		FleeChance:    res.FleeChance,
		Fled:          res.Fled,
		Surrendered:   res.Surrendered,
		Summary:       b.Slot(slot).Avatar.Name + " " + res.Summary,
		At:            now,
	}
	b.LastAction = &rec
	b.Message = rec.Summary
	advance(b, now, r)

	out := Result{Resolution: res, Record: rec}
	switch {
	case res.Fled:
		finish(b, game.Opponent(slot), game.EndReasonFled, now)
	case res.Surrendered:
		finish(b, game.Opponent(slot), game.EndReasonSurrendered, now)
	case target.Defeated():
		finish(b, slot, game.EndReasonKnockout, now)
	case actor.Defeated():
		finish(b, game.Opponent(slot), game.EndReasonKnockout, now)
	default:
		scheduleAI(b, now, dice)
		return out
	}
	out.Finished = true
	return out
}

// advance moves to the next turn: number, owner, cooldowns, deadline.
func advance(b *game.Battle, now time.Time, r Rules) {
	b.TurnNumber++
	b.CurrentPlayer = game.Opponent(b.CurrentPlayer)
	for _, s := range []*game.PlayerSlot{&b.Player1, &b.Player2} {
		c := engine.NewCombatant(s.Avatar, s.State)
		c.TickCooldowns()
		s.State = c.State()
	}
	b.TurnDeadline = now.Add(r.TurnTimeout)
}

func finish(b *game.Battle, winnerSlot int, reason game.EndReason, now time.Time) {
	winner := b.Slot(winnerSlot).UserID
	b.Status = game.StatusFinished
	b.WinnerUserID = &winner
	b.EndReason = reason
	b.FinishedAt = &now
	b.AIActAfter = time.Time{}
	b.TurnDeadline = time.Time{}
	b.Message = b.Message + " (" + string(reason) + ")"
}

func cancel(b *game.Battle, why string, now time.Time) {
	b.Status = game.StatusCancelled
	b.EndReason = game.EndReasonCancelled
	b.WinnerUserID = nil
	b.FinishedAt = &now
	b.AIActAfter = time.Time{}
	b.TurnDeadline = time.Time{}
	b.Message = why
}
