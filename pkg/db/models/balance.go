package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the on-hand quantity for one (resource, unit) pair. At most one
// row exists per pair; rows are created lazily and never deleted, so a
// zero-quantity balance persists. All mutation happens under a row lock
// inside a ledger transaction.
type Balance struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ResourceID uuid.UUID       `gorm:"column:resource_id;type:uuid;not null;uniqueIndex:idx_balances_resource_unit"`
	UnitID     uuid.UUID       `gorm:"column:unit_id;type:uuid;not null;uniqueIndex:idx_balances_resource_unit"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric(18,3);not null"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
