package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
)

// DocumentItemInput is one requested line of a receipt or shipment.
type DocumentItemInput struct {
	ResourceID uuid.UUID
	UnitID     uuid.UUID
	Quantity   decimal.Decimal
}

// DocumentInput carries the caller-supplied header and lines for a document.
type DocumentInput struct {
	Number string
	Date   time.Time
	Items  []DocumentItemInput
}

// DocumentItemView is a read model for one document line.
type DocumentItemView struct {
	ResourceID   uuid.UUID       `json:"resource_id"`
	ResourceName string          `json:"resource_name,omitempty"`
	UnitID       uuid.UUID       `json:"unit_id"`
	UnitName     string          `json:"unit_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// DocumentView is a read model for a document with its lines.
type DocumentView struct {
	ID     uuid.UUID           `json:"id"`
	Kind   enums.DocumentKind  `json:"kind"`
	Number string              `json:"number"`
	Date   time.Time           `json:"date"`
	State  enums.DocumentState `json:"state"`
	Items  []DocumentItemView  `json:"items"`
}

// BalanceView is a read model for one on-hand balance row.
type BalanceView struct {
	ID           uuid.UUID       `json:"id"`
	ResourceID   uuid.UUID       `json:"resource_id"`
	ResourceName string          `json:"resource_name"`
	UnitID       uuid.UUID       `json:"unit_id"`
	UnitName     string          `json:"unit_name"`
	Quantity     decimal.Decimal `json:"quantity"`
}
