package storage

import (
	"context"
	"fmt"

	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/constants"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/game"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenAndMigrate opens the SQLite database, migrates the schema and upserts
// the avatars listed in the config file.
func OpenAndMigrate(dataSourceName string, avatarsFromConfig []game.Avatar) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection keeps the queue
	// transaction and revision checks serialised.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&game.Avatar{}, &game.Battle{}, &game.QueueEntry{}, &game.Outcome{})
	if err != nil {
		return nil, err
	}
	if err := seedAvatars(db, avatarsFromConfig); err != nil {
		return nil, fmt.Errorf("seed avatars: %w", err)
	}
	return db, nil
}

func seedAvatars(db *gorm.DB, avatars []game.Avatar) error {
	if len(avatars) == 0 {
		return nil
	}
	repo := &sqliteRepository{db: db}
	if err := repo.UpsertAvatars(context.Background(), avatars); err != nil {
		return err
	}
	logging.Info("avatars seeded", logging.Fields{constants.LogFieldCount: len(avatars)})
	return nil
}
