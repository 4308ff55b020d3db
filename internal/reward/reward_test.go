package reward

import (
	"testing"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

func finished(reason game.EndReason, winner string, p2AI bool) *game.Battle {
	w := winner
	return &game.Battle{
		ID:           "m",
		Status:       game.StatusFinished,
		EndReason:    reason,
		WinnerUserID: &w,
		StakedFame:   90,
		Player1:      game.PlayerSlot{UserID: "u1", AvatarID: "a1"},
		Player2:      game.PlayerSlot{UserID: "u2", AvatarID: "a2", IsAI: p2AI},
	}
}

func byUser(outs []game.Outcome) map[string]game.Outcome {
	m := map[string]game.Outcome{}
	for _, o := range outs {
		m[o.UserID] = o
	}
	return m
}

func TestKnockoutOutcomes(t *testing.T) {
	outs := byUser(Outcomes(finished(game.EndReasonKnockout, "u1", false)))
	if w := outs["u1"]; !w.Victory || w.FameDelta != 90 || w.Cause != game.CauseKnockoutWin || w.AvatarDied {
		t.Fatalf("unexpected winner outcome %+v", w)
	}
	if l := outs["u2"]; l.Victory || l.FameDelta != -90 || !l.AvatarDied {
		t.Fatalf("unexpected loser outcome %+v", l)
	}
}

func TestSurrenderAndFleeFractions(t *testing.T) {
	outs := byUser(Outcomes(finished(game.EndReasonSurrendered, "u2", false)))
	if o := outs["u1"]; o.FameDelta != -45 || o.ExhaustionDelta != 10 || o.AvatarDied {
		t.Fatalf("surrender: %+v", o)
	}
	if o := outs["u2"]; o.FameDelta != 90 || !o.Victory {
		t.Fatalf("opponent surrendered: %+v", o)
	}
	outs = byUser(Outcomes(finished(game.EndReasonFled, "u1", false)))
	if o := outs["u2"]; o.FameDelta != -30 || o.Cause != game.CauseFled {
		t.Fatalf("fled: %+v", o)
	}
	if o := outs["u1"]; o.FameDelta != 45 || o.Cause != game.CauseOpponentFled {
		t.Fatalf("opponent fled: %+v", o)
	}
}

func TestAIOpponentGetsNoOutcome(t *testing.T) {
	outs := Outcomes(finished(game.EndReasonSurrendered, "u1", true))
	if len(outs) != 1 || outs[0].UserID != "u1" {
		t.Fatalf("expected one human outcome, got %+v", outs)
	}
	if outs[0].FameDelta != 45 {
		t.Fatalf("ai surrender gives reduced fame, got %d", outs[0].FameDelta)
	}
}

func TestCancelledBattleProducesNothing(t *testing.T) {
	b := finished(game.EndReasonCancelled, "u1", false)
	b.Status = game.StatusCancelled
	b.WinnerUserID = nil
	if outs := Outcomes(b); len(outs) != 0 {
		t.Fatalf("expected no outcomes, got %+v", outs)
	}
}
