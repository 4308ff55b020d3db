package storage

import (
	"context"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
)

var (
	ErrBattleNotFound   = apperr.New(apperr.CodeSessionNotFound, "battle not found")
	ErrAvatarNotFound   = apperr.New(apperr.CodeValidation, "avatar not found")
	ErrAlreadyQueued    = apperr.New(apperr.CodeConflict, "already waiting in the queue")
	ErrAlreadyInBattle  = apperr.New(apperr.CodeConflict, "already in a battle")
	ErrRevisionConflict = apperr.New(apperr.CodeTurnOwnership, "battle was modified concurrently")
)

// PairFunc decides, inside the queue transaction, whether entrant can be
// matched with one of the waiting entries (oldest first). When ok it returns
// the chosen partner and the battle to create.
type PairFunc func(entrant game.QueueEntry, waiting []game.QueueEntry) (partner game.QueueEntry, b *game.Battle, ok bool)

type Repository interface {
	// JoinQueue either matches entry against the waiting pool, removing
	// the partner and creating the battle in one transaction, or inserts
	// entry. The returned battle is nil when no match was made.
	JoinQueue(ctx context.Context, entry *game.QueueEntry, pair PairFunc) (*game.Battle, error)
	// LeaveQueue removes the user's entry. It is a no-op when absent.
	LeaveQueue(ctx context.Context, userID string) error
	// GetQueueEntry returns nil, nil when the user is not queued.
	GetQueueEntry(ctx context.Context, userID string) (*game.QueueEntry, error)
	TouchQueueEntry(ctx context.Context, userID string, now time.Time) error
	// ClaimQueueEntry removes the user's entry and stores the battle built
	// from it atomically. It returns nil, nil when the entry is gone.
	ClaimQueueEntry(ctx context.Context, userID string, build func(game.QueueEntry) *game.Battle) (*game.Battle, error)
	// PurgeStaleQueueEntries drops entries not polled since before.
	PurgeStaleQueueEntries(ctx context.Context, before time.Time) (int64, error)

	GetBattle(ctx context.Context, id string) (*game.Battle, error)
	// FindActiveBattleForUser returns the user's waiting or active battle,
	// or nil, nil.
	FindActiveBattleForUser(ctx context.Context, userID string) (*game.Battle, error)
	// UpdateBattle writes b if the stored revision still equals expected and
	// bumps b.Revision. It returns ErrRevisionConflict otherwise.
	UpdateBattle(ctx context.Context, b *game.Battle, expected int) error
	// TouchPlayer records that the player in slot polled. It does not bump
	// the revision.
	TouchPlayer(ctx context.Context, matchID string, slot int, now time.Time) error

	SaveOutcome(ctx context.Context, o *game.Outcome) error
	// GetOutcome returns nil, nil when there is none.
	GetOutcome(ctx context.Context, matchID, userID string) (*game.Outcome, error)

	GetAvatar(ctx context.Context, id string) (*game.AvatarSnapshot, error)
	UpsertAvatars(ctx context.Context, avatars []game.Avatar) error
}
