package localcache

import (
	"context"
	"errors"

	"github.com/angelmondragon/jewelry-admin/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLiteBackend stores one row per key through gorm.
type SQLiteBackend struct {
	db *gorm.DB
}

func NewSQLiteBackend(db *gorm.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (s *SQLiteBackend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

func (s *SQLiteBackend) Write(ctx context.Context, key string, value []byte) error {
	entry := models.CacheEntry{Key: key, Value: string(value)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&models.CacheEntry{}).Error
}
