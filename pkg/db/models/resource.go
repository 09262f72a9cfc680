package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a trackable good or material type. Archived resources reject
// new receipt line items but keep their existing balances.
type Resource struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name       string    `gorm:"column:name;not null;uniqueIndex"`
	IsArchived bool      `gorm:"column:is_archived;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
