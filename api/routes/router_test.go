package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stockroomhq/warehouse-backend/internal/catalog"
	"github.com/stockroomhq/warehouse-backend/internal/inventory"
	"github.com/stockroomhq/warehouse-backend/pkg/config"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
	"github.com/stockroomhq/warehouse-backend/pkg/types"
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

func newTestRouter(t *testing.T) http.Handler {
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

	catalogRepo := catalog.NewRepository(conn)
	documentRepo := inventory.NewDocumentRepository(conn)
	balanceRepo := inventory.NewBalanceRepository(conn)

	inventoryService := inventory.NewService(testTxRunner{db: conn}, balanceRepo, documentRepo, catalogRepo, nil)
	catalogService := catalog.NewService(catalogRepo, documentRepo)

	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	return NewRouter(cfg, logg, nil, inventoryService, catalogService)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	obj, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "expected object payload, got %v", envelope.Data)
	value, ok := obj[key].(string)
	require.True(t, ok, "expected string %q in payload %v", key, obj)
	return value
}

func TestRouterLedgerFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/catalog/resources", map[string]any{"name": "steel"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resourceID := dataField(t, rec, "ID")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/catalog/units", map[string]any{"name": "kg"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unitID := dataField(t, rec, "ID")

	receipt := map[string]any{
		"number": "RCV-1",
		"date":   "2026-03-14T00:00:00Z",
		"items": []map[string]any{
			{"resource_id": resourceID, "unit_id": unitID, "quantity": "10"},
		},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/inventory/receipts", receipt)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	shipment := map[string]any{
		"number": "SHP-1",
		"date":   "2026-03-15T00:00:00Z",
		"items": []map[string]any{
			{"resource_id": resourceID, "unit_id": unitID, "quantity": "7"},
		},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/inventory/shipments", shipment)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	shipmentID := dataField(t, rec, "id")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/inventory/shipments/"+shipmentID+"/sign", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/inventory/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"quantity":"3"`)

	// A second shipment over the remaining stock is rejected with 422.
	over := map[string]any{
		"number": "SHP-2",
		"date":   "2026-03-16T00:00:00Z",
		"items": []map[string]any{
			{"resource_id": resourceID, "unit_id": unitID, "quantity": "5"},
		},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/inventory/shipments", over)
	require.Equal(t, http.StatusCreated, rec.Code)
	overID := dataField(t, rec, "id")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/inventory/shipments/"+overID+"/sign", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "INSUFFICIENT_STOCK")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/inventory/shipments/"+shipmentID+"/unsign", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/inventory/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"quantity":"10"`)
}

func TestRouterValidationAndNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/catalog/resources", map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/inventory/receipts/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/inventory/receipts/6a7e79f5-6f0f-49c4-8a2e-54a22c0fa4b2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
