package service

import (
	"context"
	"strings"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/ai"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/keys"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/matchmaking"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/session"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/storage"
)

// QueueStatus is what a queue join or poll reports to the client.
type QueueStatus struct {
	Queued       bool       `json:"queued"`
	Matched      bool       `json:"matched"`
	MatchID      string     `json:"match_id,omitempty"`
	PowerRating  float64    `json:"power_rating,omitempty"`
	WaitingSince *time.Time `json:"waiting_since,omitempty"`
}

func matchedStatus(b *game.Battle) QueueStatus {
	return QueueStatus{Matched: true, MatchID: b.ID}
}

func waitingStatus(e *game.QueueEntry) QueueStatus {
	since := e.EnqueuedAt
	return QueueStatus{Queued: true, PowerRating: e.PowerRating, WaitingSince: &since}
}

// JoinQueue enqueues userID with one of their avatars.
func (s *BattleService) JoinQueue(ctx context.Context, userID, avatarID string) (QueueStatus, error) {
	if strings.TrimSpace(avatarID) == "" {
		return QueueStatus{}, apperr.New(apperr.CodeValidation, constants.ErrAvatarIDRequired)
	}
	avatar, err := s.avatars.GetAvatar(ctx, avatarID)
	if err != nil {
		return QueueStatus{}, err
	}
	if avatar.OwnerUserID != userID {
		return QueueStatus{}, ErrAvatarNotOwned
	}
	if !avatar.Alive {
		return QueueStatus{}, ErrAvatarDead
	}
	return s.Join(ctx, userID, *avatar, matchmaking.PowerRating(*avatar))
}

// Join matches userID against the waiting pool or enqueues them.
func (s *BattleService) Join(ctx context.Context, userID string, avatar game.AvatarSnapshot, power float64) (QueueStatus, error) {
	now := s.now()
	entry := &game.QueueEntry{
		UserID:       userID,
		AvatarID:     avatar.ID,
		Avatar:       avatar,
		PowerRating:  power,
		EnqueuedAt:   now,
		LastPolledAt: now,
	}
	pair := func(entrant game.QueueEntry, waiting []game.QueueEntry) (game.QueueEntry, *game.Battle, bool) {
		partner, ok := matchmaking.FindMatch(entrant, waiting, s.opts.Tolerance)
		if !ok {
			return game.QueueEntry{}, nil, false
		}
		b := session.NewBattle(s.opts.NewID(),
			session.Participant{UserID: partner.UserID, Avatar: partner.Avatar},
			session.Participant{UserID: entrant.UserID, Avatar: entrant.Avatar},
			s.opts.Stake, "", now, s.opts.Rules)
		return partner, b, true
	}
	if err := s.settleLiveBattle(ctx, userID); err != nil {
		return QueueStatus{}, err
	}
	b, err := s.store.JoinQueue(ctx, entry, pair)
	if err != nil {
		return QueueStatus{}, err
	}
	if b == nil {
		logging.Info("player queued", logging.Fields{
			constants.LogFieldUserID:   userID,
			constants.LogFieldAvatarID: avatar.ID,
			constants.LogFieldPower:    power,
		})
		return waitingStatus(entry), nil
	}
	logging.Info("players matched", logging.Fields{
		constants.LogFieldMatchID: b.ID,
		"player1":                 b.Player1.UserID,
		"player2":                 b.Player2.UserID,
	})
	return matchedStatus(b), nil
}

// settleLiveBattle settles the user's last waiting or active battle so an
// expired one is cancelled before the queue checks for it.
func (s *BattleService) settleLiveBattle(ctx context.Context, userID string) error {
	b, err := s.store.FindActiveBattleForUser(ctx, userID)
	if err != nil || b == nil {
		return err
	}
	settled, err := s.Settle(ctx, b.ID)
	if err != nil {
		return err
	}
	if settled.Status == game.StatusWaiting || settled.Status == game.StatusActive {
		return storage.ErrAlreadyInBattle
	}
	return nil
}

// LeaveQueue removes the user from the queue. It is a no-op when absent.
func (s *BattleService) LeaveQueue(ctx context.Context, userID string) error {
	return s.store.LeaveQueue(ctx, userID)
}

// PollQueue reports whether userID was matched. Long waits fall back to an
// AI opponent when enabled.
func (s *BattleService) PollQueue(ctx context.Context, userID string) (QueueStatus, error) {
	if st, err := s.liveStatus(ctx, userID); err != nil || st.Matched {
		return st, err
	}
	entry, err := s.store.GetQueueEntry(ctx, userID)
	if err != nil {
		return QueueStatus{}, err
	}
	if entry == nil {
		return QueueStatus{}, nil
	}
	now := s.now()
	if err := s.store.TouchQueueEntry(ctx, userID, now); err != nil {
		return QueueStatus{}, err
	}
	if s.opts.AIFallbackAfter <= 0 || now.Sub(entry.EnqueuedAt) < s.opts.AIFallbackAfter {
		return waitingStatus(entry), nil
	}

	b, err := s.store.ClaimQueueEntry(ctx, userID, func(e game.QueueEntry) *game.Battle {
		return s.newAIBattle(e, now)
	})
	if err != nil {
		return QueueStatus{}, err
	}
	if b == nil {
		// entry disappeared concurrently; a regular match may have won
		return s.liveStatus(ctx, userID)
	}
	logging.Info("player matched with ai", logging.Fields{
		constants.LogFieldMatchID:     b.ID,
		constants.LogFieldUserID:      userID,
		constants.LogFieldPersonality: b.Personality,
	})
	return matchedStatus(b), nil
}

func (s *BattleService) liveStatus(ctx context.Context, userID string) (QueueStatus, error) {
	live, err := s.store.FindActiveBattleForUser(ctx, userID)
	if err != nil {
		return QueueStatus{}, err
	}
	if live != nil {
		return matchedStatus(live), nil
	}
	return QueueStatus{}, nil
}

func (s *BattleService) newAIBattle(e game.QueueEntry, now time.Time) *game.Battle {
	id := s.opts.NewID()
	profile := ai.Pick(s.opts.Dice)
	aiUser := keys.AIUserID(string(profile.Personality))
	mirror := ai.MirrorAvatar(keys.AIAvatarID(id), aiUser, e.Avatar, profile, s.opts.Dice)
	return session.NewBattle(id,
		session.Participant{UserID: e.UserID, Avatar: e.Avatar},
		session.Participant{UserID: aiUser, Avatar: mirror, IsAI: true},
		s.opts.Stake, profile.Personality, now, s.opts.Rules)
}

// PurgeStaleQueue drops entries nobody polled within staleAfter.
func (s *BattleService) PurgeStaleQueue(ctx context.Context, staleAfter time.Duration) (int64, error) {
	n, err := s.store.PurgeStaleQueueEntries(ctx, s.now().Add(-staleAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Info("stale queue entries purged", logging.Fields{constants.LogFieldCount: n})
	}
	return n, nil
}

// RunQueueJanitor purges stale entries every interval until ctx is done.
func (s *BattleService) RunQueueJanitor(ctx context.Context, interval, staleAfter time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.PurgeStaleQueue(ctx, staleAfter); err != nil {
				logging.Error("queue janitor failed", err, nil)
			}
		}
	}
}
