package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/dedupe"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/keys"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/reward"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/session"
)

// settlePasses bounds the lazy transitions applied in one settle.
const settlePasses = 4

// ActionRequest is a client's action for one turn.
type ActionRequest struct {
	TurnNumber int
	Kind       game.ActionKind
	AbilityID  string
}

// MarkReady flags the caller as loaded into the match.
func (s *BattleService) MarkReady(ctx context.Context, matchID, userID string) (*BattleView, error) {
	if _, _, err := s.touch(ctx, matchID, userID); err != nil {
		return nil, err
	}
	if _, err := s.Settle(ctx, matchID); err != nil {
		return nil, err
	}
	started := false
	b, err := s.mutate(ctx, matchID, func(b *game.Battle, now time.Time) (bool, error) {
		changed, err := session.MarkReady(b, userID, now, s.opts.Dice, s.opts.Rules)
		started = changed && b.Status == game.StatusActive
		return changed, err
	})
	if err != nil {
		return nil, err
	}
	if started {
		logging.Info("battle started", logging.Fields{
			constants.LogFieldMatchID: b.ID,
			constants.LogFieldSlot:    b.CurrentPlayer,
		})
	}
	return s.GetStatus(ctx, matchID, userID)
}

// SubmitAction applies the caller's action for req.TurnNumber.
func (s *BattleService) SubmitAction(ctx context.Context, matchID, userID string, req ActionRequest) (*BattleView, error) {
	if _, _, err := s.touch(ctx, matchID, userID); err != nil {
		return nil, err
	}
	if _, err := s.Settle(ctx, matchID); err != nil {
		return nil, err
	}
	act := engine.Action{Kind: req.Kind, AbilityID: req.AbilityID}
	var applied session.Result
	_, err := s.mutate(ctx, matchID, func(b *game.Battle, now time.Time) (bool, error) {
		res, err := session.Submit(b, userID, req.TurnNumber, act, now, s.opts.Dice, s.opts.Rules)
		if err != nil {
			return false, err
		}
		applied = res
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	logging.Info("action applied", logging.Fields{
		constants.LogFieldMatchID: matchID,
		constants.LogFieldUserID:  userID,
		constants.LogFieldTurn:    applied.Record.TurnNumber,
		constants.LogFieldAction:  string(act.Kind),
		"damage":                  applied.Record.Damage,
		"finished":                applied.Finished,
	})
	return s.GetStatus(ctx, matchID, userID)
}

// GetStatus settles the battle and returns the caller's view of it.
func (s *BattleService) GetStatus(ctx context.Context, matchID, userID string) (*BattleView, error) {
	if _, _, err := s.touch(ctx, matchID, userID); err != nil {
		return nil, err
	}
	b, err := s.Settle(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return NewBattleView(b, userID, s.now()), nil
}

// Settle applies every transition that is due (cancellation, AI turn,
// timeout skip) and delivers outcomes of a finished battle. Concurrent calls
// for one match share a single run; the returned battle must not be mutated.
func (s *BattleService) Settle(ctx context.Context, matchID string) (*game.Battle, error) {
	v, err, _ := dedupe.SettleGroup.Do(keys.SettleKey(matchID), func() (interface{}, error) {
		// the result is shared by every waiting caller; detach from this one's cancellation
		return s.settle(context.WithoutCancel(ctx), matchID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Battle), nil
}

func (s *BattleService) settle(ctx context.Context, matchID string) (*game.Battle, error) {
	b, err := s.mutate(ctx, matchID, func(b *game.Battle, now time.Time) (bool, error) {
		changed := false
		for i := 0; i < settlePasses; i++ {
			if !s.settleStep(b, now) {
				break
			}
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if b.Status == game.StatusFinished && !b.OutcomeDelivered {
		return s.deliver(ctx, b)
	}
	return b, nil
}

func (s *BattleService) settleStep(b *game.Battle, now time.Time) bool {
	r := s.opts.Rules
	fields := logging.Fields{constants.LogFieldMatchID: b.ID}
	if session.ApplyCancellation(b, now, r) {
		fields[constants.LogFieldReason] = b.Message
		logging.Info("battle cancelled", fields)
		return true
	}
	if res, d, ok := session.AITurn(b, now, s.opts.Dice, r); ok {
		fields[constants.LogFieldTurn] = res.Record.TurnNumber
		fields[constants.LogFieldAction] = string(d.Action.Kind)
		fields[constants.LogFieldReason] = d.Reason
		fields[constants.LogFieldPersonality] = b.Personality
		logging.Info("ai turn applied", fields)
		return true
	}
	if rec, ok := session.ApplyTimeout(b, now, s.opts.Dice, r); ok {
		fields[constants.LogFieldTurn] = rec.TurnNumber
		fields[constants.LogFieldSlot] = rec.ActorSlot
		logging.Info("turn skipped after timeout", fields)
		return true
	}
	return false
}

// deliver hands outcomes to the ledger and marks the battle delivered. A
// failed delivery is logged and retried by the next settle.
func (s *BattleService) deliver(ctx context.Context, b *game.Battle) (*game.Battle, error) {
	for _, o := range reward.Outcomes(b) {
		if err := s.ledger.ApplyOutcome(ctx, o); err != nil {
			logging.Error("outcome delivery failed", err, logging.Fields{
				constants.LogFieldMatchID: b.ID,
				constants.LogFieldUserID:  o.UserID,
			})
			return b, nil
		}
	}
	updated, err := s.mutate(ctx, b.ID, func(b *game.Battle, now time.Time) (bool, error) {
		if b.OutcomeDelivered {
			return false, nil
		}
		b.OutcomeDelivered = true
		return true, nil
	})
	if err != nil {
		if errors.Is(err, ErrBattleBusy) {
			return b, nil
		}
		return nil, fmt.Errorf("mark outcome delivered: %w", err)
	}
	return updated, nil
}
