// Package service orchestrates matchmaking, battle sessions and outcome
// delivery over the store. Every read settles the battle first, so turn
// timeouts, cancellations and AI turns happen lazily inside the requests
// that observe them.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/economy"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/engine"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/matchmaking"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/session"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/storage"
)

var (
	ErrAvatarNotOwned = apperr.New(apperr.CodeValidation, "avatar does not belong to this player")
	ErrAvatarDead     = apperr.New(apperr.CodeValidation, "avatar is dead")
	ErrBattleBusy     = apperr.New(apperr.CodeTransientStore, "battle is busy, retry shortly")
)

// maxAttempts bounds optimistic retries of one read-modify-write.
const maxAttempts = 5

// BattleStore is the part of storage.Repository the service needs.
type BattleStore interface {
	JoinQueue(ctx context.Context, entry *game.QueueEntry, pair storage.PairFunc) (*game.Battle, error)
	LeaveQueue(ctx context.Context, userID string) error
	GetQueueEntry(ctx context.Context, userID string) (*game.QueueEntry, error)
	TouchQueueEntry(ctx context.Context, userID string, now time.Time) error
	ClaimQueueEntry(ctx context.Context, userID string, build func(game.QueueEntry) *game.Battle) (*game.Battle, error)
	PurgeStaleQueueEntries(ctx context.Context, before time.Time) (int64, error)
	GetBattle(ctx context.Context, id string) (*game.Battle, error)
	FindActiveBattleForUser(ctx context.Context, userID string) (*game.Battle, error)
	UpdateBattle(ctx context.Context, b *game.Battle, expected int) error
	TouchPlayer(ctx context.Context, matchID string, slot int, now time.Time) error
}

// AvatarProvider is the read-only avatar source.
type AvatarProvider interface {
	GetAvatar(ctx context.Context, id string) (*game.AvatarSnapshot, error)
}

type Options struct {
	Rules     session.Rules
	Tolerance float64
	Stake     int
	// AIFallbackAfter pairs a waiting player with an AI opponent once they
	// have waited this long. Zero disables it.
	AIFallbackAfter time.Duration
	Now             func() time.Time
	Dice            engine.Dice
	NewID           func() string
}

type BattleService struct {
	store   BattleStore
	avatars AvatarProvider
	ledger  economy.Ledger
	opts    Options
}

func NewBattleService(store BattleStore, avatars AvatarProvider, ledger economy.Ledger, opts Options) (*BattleService, error) {
	if store == nil || avatars == nil || ledger == nil {
		return nil, errors.New("service: store, avatars and ledger are required")
	}
	if opts.Rules.TurnTimeout <= 0 {
		opts.Rules = session.DefaultRules()
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = matchmaking.DefaultTolerance
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dice == nil {
		seed, err := engine.NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Dice = engine.NewDice(seed)
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &BattleService{store: store, avatars: avatars, ledger: ledger, opts: opts}, nil
}

func (s *BattleService) now() time.Time { return s.opts.Now().UTC() }

// mutate loads the battle, applies fn and persists the result under the
// revision read. Conflicting writers cause a reload and another attempt; fn
// must therefore be safe to run more than once.
func (s *BattleService) mutate(ctx context.Context, matchID string, fn func(b *game.Battle, now time.Time) (bool, error)) (*game.Battle, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		b, err := s.store.GetBattle(ctx, matchID)
		if err != nil {
			return nil, err
		}
		rev := b.Revision
		changed, err := fn(b, s.now())
		if err != nil {
			return nil, err
		}
		if !changed {
			return b, nil
		}
		err = s.store.UpdateBattle(ctx, b, rev)
		if errors.Is(err, storage.ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, ErrBattleBusy
}

// touch loads the battle, checks userID takes part and records the poll.
func (s *BattleService) touch(ctx context.Context, matchID, userID string) (*game.Battle, int, error) {
	b, err := s.store.GetBattle(ctx, matchID)
	if err != nil {
		return nil, 0, err
	}
	slot := b.SlotOf(userID)
	if slot == 0 {
		return nil, 0, session.ErrNotParticipant
	}
	if b.IsLive() {
		if err := s.store.TouchPlayer(ctx, matchID, slot, s.now()); err != nil {
			return nil, 0, err
		}
	}
	return b, slot, nil
}
