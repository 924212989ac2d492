package models

import "time"

// StorageEntry is one key of the client's durable local storage.
type StorageEntry struct {
	Key       string    `gorm:"column:key;primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageEntry) TableName() string { return "local_storage" }
