package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/storage"
)

// fakeStore is an in-memory BattleStore with the same semantics as the
// SQLite repository: copies in and out, revision-checked updates and
// last-seen columns that updates do not overwrite.
type fakeStore struct {
	mu        sync.Mutex
	battles   map[string]game.Battle
	queue     []game.QueueEntry
	nextID    uint
	conflicts int
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{battles: map[string]game.Battle{}}
}

func cloneSlot(s game.PlayerSlot) game.PlayerSlot {
	cds := make(map[string]int, len(s.State.Cooldowns))
	for k, v := range s.State.Cooldowns {
		cds[k] = v
	}
	s.State.Cooldowns = cds
	s.Avatar.Abilities = append([]game.Ability(nil), s.Avatar.Abilities...)
	return s
}

func cloneBattle(b game.Battle) game.Battle {
	b.Player1 = cloneSlot(b.Player1)
	b.Player2 = cloneSlot(b.Player2)
	if b.LastAction != nil {
		la := *b.LastAction
		b.LastAction = &la
	}
	if b.WinnerUserID != nil {
		w := *b.WinnerUserID
		b.WinnerUserID = &w
	}
	if b.FinishedAt != nil {
		f := *b.FinishedAt
		b.FinishedAt = &f
	}
	return b
}

func (f *fakeStore) liveFor(userID string) *game.Battle {
	for _, b := range f.battles {
		if b.IsLive() && (b.Player1.UserID == userID || b.Player2.UserID == userID) {
			c := cloneBattle(b)
			return &c
		}
	}
	return nil
}

func (f *fakeStore) JoinQueue(ctx context.Context, entry *game.QueueEntry, pair storage.PairFunc) (*game.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.queue {
		if e.UserID == entry.UserID {
			return nil, storage.ErrAlreadyQueued
		}
	}
	if f.liveFor(entry.UserID) != nil {
		return nil, storage.ErrAlreadyInBattle
	}
	waiting := append([]game.QueueEntry(nil), f.queue...)
	sort.SliceStable(waiting, func(i, j int) bool { return waiting[i].EnqueuedAt.Before(waiting[j].EnqueuedAt) })
	partner, b, ok := pair(*entry, waiting)
	if !ok {
		f.nextID++
		entry.ID = f.nextID
		f.queue = append(f.queue, *entry)
		return nil, nil
	}
	f.removeLocked(partner.UserID)
	f.battles[b.ID] = cloneBattle(*b)
	return b, nil
}

func (f *fakeStore) removeLocked(userID string) bool {
	for i, e := range f.queue {
		if e.UserID == userID {
			f.queue = append(f.queue[:i], f.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeStore) LeaveQueue(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(userID)
	return nil
}

func (f *fakeStore) GetQueueEntry(ctx context.Context, userID string) (*game.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.queue {
		if e.UserID == userID {
			c := e
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) TouchQueueEntry(ctx context.Context, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.queue {
		if f.queue[i].UserID == userID {
			f.queue[i].LastPolledAt = now
		}
	}
	return nil
}

func (f *fakeStore) ClaimQueueEntry(ctx context.Context, userID string, build func(game.QueueEntry) *game.Battle) (*game.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.queue {
		if e.UserID == userID {
			f.removeLocked(userID)
			b := build(e)
			f.battles[b.ID] = cloneBattle(*b)
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) PurgeStaleQueueEntries(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.queue[:0]
	var n int64
	for _, e := range f.queue {
		if e.LastPolledAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.queue = kept
	return n, nil
}

func (f *fakeStore) GetBattle(ctx context.Context, id string) (*game.Battle, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Transient("get battle", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.battles[id]
	if !ok {
		return nil, storage.ErrBattleNotFound
	}
	c := cloneBattle(b)
	return &c, nil
}

func (f *fakeStore) FindActiveBattleForUser(ctx context.Context, userID string) (*game.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.liveFor(userID), nil
}

func (f *fakeStore) UpdateBattle(ctx context.Context, b *game.Battle, expected int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.battles[b.ID]
	if !ok {
		return storage.ErrBattleNotFound
	}
	if f.conflicts > 0 {
		f.conflicts--
		cur.Revision++
		f.battles[b.ID] = cur
		return storage.ErrRevisionConflict
	}
	if cur.Revision != expected {
		return storage.ErrRevisionConflict
	}
	b.Revision = expected + 1
	next := cloneBattle(*b)
	next.Player1.LastSeenAt = cur.Player1.LastSeenAt
	next.Player2.LastSeenAt = cur.Player2.LastSeenAt
	f.battles[b.ID] = next
	f.updates++
	return nil
}

func (f *fakeStore) TouchPlayer(ctx context.Context, matchID string, slot int, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.battles[matchID]
	if !ok {
		return nil
	}
	b.Slot(slot).LastSeenAt = now
	f.battles[matchID] = b
	return nil
}

type fakeAvatars map[string]game.AvatarSnapshot

func (f fakeAvatars) GetAvatar(ctx context.Context, id string) (*game.AvatarSnapshot, error) {
	a, ok := f[id]
	if !ok {
		return nil, storage.ErrAvatarNotFound
	}
	return &a, nil
}
