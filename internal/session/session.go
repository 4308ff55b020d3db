// Package session implements the battle state machine. Functions mutate a
// loaded *game.Battle in memory; persisting it (with its revision guard) is
// the caller's job.
package session

import (
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/ai"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

var (
	ErrBattleNotActive = apperr.New(apperr.CodeTurnOwnership, "battle is not active")
	ErrNotParticipant  = apperr.New(apperr.CodeTurnOwnership, "not a participant in this battle")
	ErrNotYourTurn     = apperr.New(apperr.CodeTurnOwnership, "not your turn")
	ErrStaleTurn       = apperr.New(apperr.CodeTurnOwnership, "turn already resolved")
	ErrBattleClosed    = apperr.New(apperr.CodeConflict, "battle is no longer open")
)

// Rules are the timing knobs of a session.
type Rules struct {
	TurnTimeout time.Duration
	// ReadyGrace bounds how long a waiting battle may wait for both sides.
	ReadyGrace time.Duration
	// DisconnectGrace cancels an active battle whose human side stopped
	// polling. Zero disables the check.
	DisconnectGrace time.Duration
}

func DefaultRules() Rules {
	return Rules{TurnTimeout: 30 * time.Second, ReadyGrace: 60 * time.Second, DisconnectGrace: 2 * time.Minute}
}

// Participant is one side handed to NewBattle.
type Participant struct {
	UserID string
	Avatar game.AvatarSnapshot
	IsAI   bool
}

// NewBattle creates a waiting battle between a (slot 1) and b (slot 2). AI
// slots start ready. personality is empty for human-only battles.
func NewBattle(id string, a, b Participant, stake int, personality ai.Personality, now time.Time, r Rules) *game.Battle {
	slot := func(p Participant) game.PlayerSlot {
		return game.PlayerSlot{
			UserID:     p.UserID,
			AvatarID:   p.Avatar.ID,
			IsAI:       p.IsAI,
			Ready:      p.IsAI,
			LastSeenAt: now,
			Avatar:     p.Avatar,
			State:      engine.InitialState(p.Avatar),
		}
	}
	return &game.Battle{
		ID:            id,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        game.StatusWaiting,
		Player1:       slot(a),
		Player2:       slot(b),
		ReadyDeadline: now.Add(r.ReadyGrace),
		StakedFame:    stake,
		Personality:   string(personality),
		Message:       "waiting for both players",
	}
}

// MarkReady flags userID as loaded. The battle activates once both sides are
// ready. It is idempotent and reports whether anything changed.
func MarkReady(b *game.Battle, userID string, now time.Time, dice engine.Dice, r Rules) (bool, error) {
	n := b.SlotOf(userID)
	if n == 0 {
		return false, ErrNotParticipant
	}
	if b.IsTerminal() {
		return false, ErrBattleClosed
	}
	s := b.Slot(n)
	if b.Status == game.StatusActive || s.Ready {
		return false, nil
	}
	s.Ready = true
	s.LastSeenAt = now
	if b.Player1.Ready && b.Player2.Ready {
		activate(b, now, dice, r)
	}
	return true, nil
}

func activate(b *game.Battle, now time.Time, dice engine.Dice, r Rules) {
	b.Status = game.StatusActive
	b.TurnNumber = 1
	b.CurrentPlayer = firstMover(b)
	b.TurnDeadline = now.Add(r.TurnTimeout)
	b.Message = "battle started"
	b.Player1.LastSeenAt = now
	b.Player2.LastSeenAt = now
	scheduleAI(b, now, dice)
}

// firstMover is the slot with higher effective agilidade; ties go to slot 1.
func firstMover(b *game.Battle) int {
	a1 := engine.EffectiveStats(b.Player1.Avatar).Agilidade
	a2 := engine.EffectiveStats(b.Player2.Avatar).Agilidade
	if a2 > a1 {
		return 2
	}
	return 1
}

// scheduleAI sets the thinking deadline when the current slot is the AI.
func scheduleAI(b *game.Battle, now time.Time, dice engine.Dice) {
	if b.Status != game.StatusActive || !b.Slot(b.CurrentPlayer).IsAI {
		b.AIActAfter = time.Time{}
		return
	}
	p, err := ai.ProfileFor(ai.Personality(b.Personality))
	if err != nil {
		p = ai.All()[0]
	}
	b.AIActAfter = now.Add(ai.ThinkingDelay(p, dice))
}

func combatants(b *game.Battle, actorSlot int) (*engine.Combatant, *engine.Combatant) {
	actor := b.Slot(actorSlot)
	target := b.Slot(game.Opponent(actorSlot))
	return engine.NewCombatant(actor.Avatar, actor.State), engine.NewCombatant(target.Avatar, target.State)
}
