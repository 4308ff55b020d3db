// Package economy is the boundary to the account/economy layer, which owns
// fame, bond, exhaustion and avatar death. The battle core only hands it
// outcome records.
package economy

//go:generate go tool mockgen -destination=./mocks/ledger_mock.go -package=mocks . Ledger

import (
	"context"
	"fmt"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/keys"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
)

// Ledger receives outcome records. ApplyOutcome must be idempotent per
// (MatchID, UserID) because delivery is retried until it succeeds.
type Ledger interface {
	ApplyOutcome(ctx context.Context, o game.Outcome) error
}

// OutcomeStore persists outcome records.
type OutcomeStore interface {
	SaveOutcome(ctx context.Context, o *game.Outcome) error
	GetOutcome(ctx context.Context, matchID, userID string) (*game.Outcome, error)
}

// Outbox is a Ledger that writes outcomes to a table the economy service
// consumes.
type Outbox struct {
	store OutcomeStore
}

func NewOutbox(store OutcomeStore) (*Outbox, error) {
	if store == nil {
		return nil, fmt.Errorf("economy: outcome store is required")
	}
	return &Outbox{store: store}, nil
}

func (o *Outbox) ApplyOutcome(ctx context.Context, out game.Outcome) error {
	if out.MatchID == "" || out.UserID == "" {
		return fmt.Errorf("economy: outcome needs match and user")
	}
	prev, err := o.store.GetOutcome(ctx, out.MatchID, out.UserID)
	if err != nil {
		return fmt.Errorf("economy: load outcome: %w", err)
	}
	if prev != nil {
		return nil
	}
	if err := o.store.SaveOutcome(ctx, &out); err != nil {
		return fmt.Errorf("economy: save outcome: %w", err)
	}
	logging.Info("battle outcome recorded", logging.Fields{
		"outcome_key":              keys.OutcomeKey(out.MatchID, out.UserID),
		constants.LogFieldMatchID:  out.MatchID,
		constants.LogFieldUserID:   out.UserID,
		constants.LogFieldAvatarID: out.AvatarID,
		constants.LogFieldReason:   string(out.Cause),
		"fame_delta":               out.FameDelta,
		"avatar_died":              out.AvatarDied,
	})
	return nil
}
