package models

import (
	"time"

	"rigforge/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for keyed records. Deletes in this
// system are real deletes (a removed build or account must not
// resurface), so there is deliberately no soft-delete column.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
