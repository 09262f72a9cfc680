package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentItem is one line of a document. Items belong to exactly one
// document and are replaced wholesale when a draft is edited.
type DocumentItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	DocumentID uuid.UUID       `gorm:"column:document_id;type:uuid;not null;index"`
	ResourceID uuid.UUID       `gorm:"column:resource_id;type:uuid;not null"`
	UnitID     uuid.UUID       `gorm:"column:unit_id;type:uuid;not null"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric(18,3);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
