package models

import "time"

// CacheEntry is one key of the persisted local cache. Value holds the raw JSON payload.
type CacheEntry struct {
	Key       string    `gorm:"column:cache_key;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (CacheEntry) TableName() string {
	return "cache_entries"
}
