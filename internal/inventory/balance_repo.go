package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceRepository manages persistence for on-hand balances. All mutating
// reads go through GetForUpdate so concurrent ledger transactions touching
// the same (resource, unit) pair serialize on the row lock.
type BalanceRepository interface {
	WithTx(tx *gorm.DB) BalanceRepository
	GetForUpdate(ctx context.Context, resourceID, unitID uuid.UUID) (*models.Balance, error)
	Create(ctx context.Context, balance *models.Balance) error
	Save(ctx context.Context, balance *models.Balance) error
	ApplyDelta(ctx context.Context, resourceID, unitID uuid.UUID, delta decimal.Decimal) error
	List(ctx context.Context) ([]BalanceView, error)
}

type balanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository returns a balance repository bound to the provided database.
func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) WithTx(tx *gorm.DB) BalanceRepository {
	if tx == nil {
		return r
	}
	return &balanceRepository{db: tx}
}

// GetForUpdate reads the balance row for the pair under an exclusive lock
// held until the enclosing transaction commits or rolls back. Returns nil
// when no row exists. Must only be called inside a transaction.
func (r *balanceRepository) GetForUpdate(ctx context.Context, resourceID, unitID uuid.UUID) (*models.Balance, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no FOR UPDATE; its single-writer transaction lock already
	// serializes mutations there.
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var balance models.Balance
	err := q.First(&balance, "resource_id = ? AND unit_id = ?", resourceID, unitID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *balanceRepository) Create(ctx context.Context, balance *models.Balance) error {
	return r.db.WithContext(ctx).Create(balance).Error
}

func (r *balanceRepository) Save(ctx context.Context, balance *models.Balance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// ApplyDelta adds delta to the pair's balance, creating the row lazily on
// the first positive delta. A negative delta against a missing row is a
// programming error: balance rows are only created on credit paths.
func (r *balanceRepository) ApplyDelta(ctx context.Context, resourceID, unitID uuid.UUID, delta decimal.Decimal) error {
	balance, err := r.GetForUpdate(ctx, resourceID, unitID)
	if err != nil {
		return err
	}
	if balance == nil {
		if delta.Sign() <= 0 {
			return pkgerrors.New(pkgerrors.CodeInternal, "non-positive delta against missing balance row")
		}
		return r.Create(ctx, &models.Balance{
			ID:         uuid.New(),
			ResourceID: resourceID,
			UnitID:     unitID,
			Quantity:   delta,
		})
	}
	balance.Quantity = balance.Quantity.Add(delta)
	return r.Save(ctx, balance)
}

// List returns every balance row with resource and unit names resolved.
func (r *balanceRepository) List(ctx context.Context) ([]BalanceView, error) {
	var views []BalanceView
	err := r.db.WithContext(ctx).
		Table("balances b").
		Select("b.id, b.resource_id, r.name AS resource_name, b.unit_id, u.name AS unit_name, b.quantity").
		Joins("JOIN resources r ON r.id = b.resource_id").
		Joins("JOIN units u ON u.id = b.unit_id").
		Order("r.name ASC, u.name ASC").
		Scan(&views).
		Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
