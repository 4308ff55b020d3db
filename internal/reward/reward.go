// Package reward turns a finished battle into outcome records for the
// economy layer.
package reward

import (
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

// Delta is the reward rule for one cause.
type Delta struct {
	Victory    bool
	Fame       int
	Bond       int
	Exhaustion int
	Died       bool
}

// ForCause maps a cause to its deltas. vsAI reduces the fame of a win by
// surrender, since AI opponents give up more readily.
func ForCause(cause game.OutcomeCause, stake int, vsAI bool) Delta {
	if stake < 0 {
		stake = 0
	}
	switch cause {
	case game.CauseKnockoutWin:
		return Delta{Victory: true, Fame: stake, Bond: 5, Exhaustion: 20}
	case game.CauseKnockoutLoss:
		return Delta{Fame: -stake, Died: true}
	case game.CauseSurrendered:
		return Delta{Fame: -stake / 2, Bond: -5, Exhaustion: 10}
	case game.CauseOpponentSurrendered:
		fame := stake
		if vsAI {
			fame = stake / 2
		}
		return Delta{Victory: true, Fame: fame, Bond: 3, Exhaustion: 15}
	case game.CauseFled:
		return Delta{Fame: -stake / 3, Bond: -3, Exhaustion: 15}
	case game.CauseOpponentFled:
		return Delta{Victory: true, Fame: stake / 2, Bond: 2, Exhaustion: 15}
	}
	return Delta{}
}

// CauseFor classifies a finished battle from slot's point of view.
func CauseFor(b *game.Battle, slot int) (game.OutcomeCause, bool) {
	if b.Status != game.StatusFinished || b.WinnerUserID == nil {
		return "", false
	}
	won := *b.WinnerUserID == b.Slot(slot).UserID
	switch b.EndReason {
	case game.EndReasonKnockout:
		if won {
			return game.CauseKnockoutWin, true
		}
		return game.CauseKnockoutLoss, true
	case game.EndReasonSurrendered:
		if won {
			return game.CauseOpponentSurrendered, true
		}
		return game.CauseSurrendered, true
	case game.EndReasonFled:
		if won {
			return game.CauseOpponentFled, true
		}
		return game.CauseFled, true
	}
	return "", false
}

// Outcomes returns one record per human participant of a finished battle.
// Cancelled or unfinished battles produce none.
func Outcomes(b *game.Battle) []game.Outcome {
	var out []game.Outcome
	for n := 1; n <= 2; n++ {
		s := b.Slot(n)
		if s.IsAI {
			continue
		}
		cause, ok := CauseFor(b, n)
		if !ok {
			continue
		}
		d := ForCause(cause, b.StakedFame, b.Slot(game.Opponent(n)).IsAI)
		out = append(out, game.Outcome{
			MatchID:         b.ID,
			UserID:          s.UserID,
			AvatarID:        s.AvatarID,
			Victory:         d.Victory,
			Cause:           cause,
			FameDelta:       d.Fame,
			BondDelta:       d.Bond,
			ExhaustionDelta: d.Exhaustion,
			AvatarDied:      d.Died,
		})
	}
	return out
}
