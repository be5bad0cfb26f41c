package model

import "time"

// CollectionSnapshot is one persisted recipe collection (history or
// favorites) stored as a JSON blob under a stable key. Used by the
// sqlite storage backend.
type CollectionSnapshot struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Data      []byte    `gorm:"not null" json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}
