package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
)

// Document is a receipt or shipment, discriminated by Kind. Receipts apply
// their items to balances on create/edit and are never signed; shipments
// leave balances untouched until signed.
type Document struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Kind      enums.DocumentKind  `gorm:"column:kind;type:text;not null;index"`
	Number    string              `gorm:"column:number;not null"`
	Date      time.Time           `gorm:"column:date;not null"`
	State     enums.DocumentState `gorm:"column:state;type:text;not null;default:'draft'"`
	Items     []DocumentItem      `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
