package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/apperr"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
	// queueMu serialises matching so two joins never claim the same entry.
	queueMu sync.Mutex
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

// transient wraps driver errors. Domain errors pass through untouched.
func transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Transient(op, err)
}

var liveStatuses = []game.BattleStatus{game.StatusWaiting, game.StatusActive}

func liveBattleFor(tx *gorm.DB, userID string) (*game.Battle, error) {
	var b game.Battle
	err := tx.Where("status IN ?", liveStatuses).
		Where("p1_user_id = ? OR p2_user_id = ?", userID, userID).
		Order("created_at DESC").
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) JoinQueue(ctx context.Context, entry *game.QueueEntry, pair PairFunc) (*game.Battle, error) {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()

	var created *game.Battle
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&game.QueueEntry{}).Where("user_id = ?", entry.UserID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyQueued
		}
		live, err := liveBattleFor(tx, entry.UserID)
		if err != nil {
			return err
		}
		if live != nil {
			return ErrAlreadyInBattle
		}

		var waiting []game.QueueEntry
		if err := tx.Order("enqueued_at ASC").Order("id ASC").Find(&waiting).Error; err != nil {
			return err
		}
		partner, b, ok := pair(*entry, waiting)
		if !ok {
			return tx.Create(entry).Error
		}
		res := tx.Where("user_id = ?", partner.UserID).Delete(&game.QueueEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return apperr.New(apperr.CodeTransientStore, "queue entry vanished during match")
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, transient("join queue", err)
	}
	return created, nil
}

func (r *sqliteRepository) LeaveQueue(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&game.QueueEntry{}).Error
	return transient("leave queue", err)
}

func (r *sqliteRepository) GetQueueEntry(ctx context.Context, userID string) (*game.QueueEntry, error) {
	var e game.QueueEntry
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, transient("get queue entry", err)
	}
	return &e, nil
}

func (r *sqliteRepository) TouchQueueEntry(ctx context.Context, userID string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&game.QueueEntry{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_polled_at", now).Error
	return transient("touch queue entry", err)
}

func (r *sqliteRepository) ClaimQueueEntry(ctx context.Context, userID string, build func(game.QueueEntry) *game.Battle) (*game.Battle, error) {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()

	var created *game.Battle
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e game.QueueEntry
		err := tx.Where("user_id = ?", userID).First(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res := tx.Delete(&game.QueueEntry{}, e.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return nil
		}
		b := build(e)
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, transient("claim queue entry", err)
	}
	return created, nil
}

func (r *sqliteRepository) PurgeStaleQueueEntries(ctx context.Context, before time.Time) (int64, error) {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()
	res := r.db.WithContext(ctx).Where("last_polled_at < ?", before).Delete(&game.QueueEntry{})
	if res.Error != nil {
		return 0, transient("purge queue", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *sqliteRepository) GetBattle(ctx context.Context, id string) (*game.Battle, error) {
	var b game.Battle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBattleNotFound
	}
	if err != nil {
		return nil, transient("get battle", err)
	}
	return &b, nil
}

func (r *sqliteRepository) FindActiveBattleForUser(ctx context.Context, userID string) (*game.Battle, error) {
	b, err := liveBattleFor(r.db.WithContext(ctx), userID)
	if err != nil {
		return nil, transient("find active battle", err)
	}
	return b, nil
}

func (r *sqliteRepository) UpdateBattle(ctx context.Context, b *game.Battle, expected int) error {
	b.Revision = expected + 1
	res := r.db.WithContext(ctx).Model(&game.Battle{}).
		Where("id = ? AND revision = ?", b.ID, expected).
		Select("*").
		Omit("id", "created_at", "p1_last_seen_at", "p2_last_seen_at").
		Updates(b)
	if res.Error != nil {
		b.Revision = expected
		return transient("update battle", res.Error)
	}
	if res.RowsAffected == 0 {
		b.Revision = expected
		return ErrRevisionConflict
	}
	return nil
}

func (r *sqliteRepository) TouchPlayer(ctx context.Context, matchID string, slot int, now time.Time) error {
	col := "p1_last_seen_at"
	if slot == 2 {
		col = "p2_last_seen_at"
	}
	err := r.db.WithContext(ctx).Model(&game.Battle{}).
		Where("id = ?", matchID).
		UpdateColumn(col, now).Error
	return transient("touch player", err)
}

func (r *sqliteRepository) SaveOutcome(ctx context.Context, o *game.Outcome) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(o).Error
	return transient("save outcome", err)
}

func (r *sqliteRepository) GetOutcome(ctx context.Context, matchID, userID string) (*game.Outcome, error) {
	var o game.Outcome
	err := r.db.WithContext(ctx).Where("match_id = ? AND user_id = ?", matchID, userID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, transient("get outcome", err)
	}
	return &o, nil
}

func (r *sqliteRepository) GetAvatar(ctx context.Context, id string) (*game.AvatarSnapshot, error) {
	var a game.Avatar
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAvatarNotFound
	}
	if err != nil {
		return nil, transient("get avatar", err)
	}
	s := a.Snapshot()
	return &s, nil
}

func (r *sqliteRepository) UpsertAvatars(ctx context.Context, avatars []game.Avatar) error {
	if len(avatars) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&avatars).Error
	return transient("upsert avatars", err)
}
