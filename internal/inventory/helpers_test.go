package inventory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/internal/catalog"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Resource{},
		&models.Unit{},
		&models.Document{},
		&models.DocumentItem{},
		&models.Balance{},
	))
	return conn
}

func newLedger(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc := NewService(
		testTxRunner{db: conn},
		NewBalanceRepository(conn),
		NewDocumentRepository(conn),
		catalog.NewRepository(conn),
		nil,
	)
	return svc, conn
}

func seedResource(t *testing.T, conn *gorm.DB, name string, archived bool) uuid.UUID {
	t.Helper()
	resource := models.Resource{ID: uuid.New(), Name: name, IsArchived: archived}
	require.NoError(t, conn.Create(&resource).Error)
	return resource.ID
}

func seedUnit(t *testing.T, conn *gorm.DB, name string) uuid.UUID {
	t.Helper()
	unit := models.Unit{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(&unit).Error)
	return unit.ID
}

func fetchQuantity(t *testing.T, conn *gorm.DB, resourceID, unitID uuid.UUID) decimal.Decimal {
	t.Helper()
	var balance models.Balance
	err := conn.First(&balance, "resource_id = ? AND unit_id = ?", resourceID, unitID).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero
	}
	require.NoError(t, err)
	return balance.Quantity
}

func balanceRowCount(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.Balance{}).Count(&count).Error)
	return count
}

func documentRowCount(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.Document{}).Count(&count).Error)
	return count
}

func qty(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func docInput(number string, items ...DocumentItemInput) DocumentInput {
	return DocumentInput{
		Number: number,
		Date:   time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		Items:  items,
	}
}

func line(resourceID, unitID uuid.UUID, quantity string) DocumentItemInput {
	return DocumentItemInput{ResourceID: resourceID, UnitID: unitID, Quantity: qty(quantity)}
}
