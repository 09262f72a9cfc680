package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedDocument(t *testing.T, repo DocumentRepository, kind enums.DocumentKind, state enums.DocumentState, items ...models.DocumentItem) *models.Document {
	t.Helper()
	doc := &models.Document{
		ID:     uuid.New(),
		Kind:   kind,
		Number: "DOC-1",
		Date:   time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		State:  state,
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].DocumentID = doc.ID
	}
	doc.Items = items
	require.NoError(t, repo.Create(context.Background(), doc))
	return doc
}

func TestDocumentFindByIDFiltersKind(t *testing.T) {
	conn := newTestDB(t)
	repo := NewDocumentRepository(conn)
	ctx := context.Background()

	doc := seedDocument(t, repo, enums.DocumentKindReceipt, enums.DocumentStateDraft,
		models.DocumentItem{ResourceID: uuid.New(), UnitID: uuid.New(), Quantity: qty("1")},
	)

	found, err := repo.FindByID(ctx, doc.ID, enums.DocumentKindReceipt)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)

	_, err = repo.FindByID(ctx, doc.ID, enums.DocumentKindShipment)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentReplaceItems(t *testing.T) {
	conn := newTestDB(t)
	repo := NewDocumentRepository(conn)
	ctx := context.Background()

	doc := seedDocument(t, repo, enums.DocumentKindReceipt, enums.DocumentStateDraft,
		models.DocumentItem{ResourceID: uuid.New(), UnitID: uuid.New(), Quantity: qty("1")},
		models.DocumentItem{ResourceID: uuid.New(), UnitID: uuid.New(), Quantity: qty("2")},
	)

	next := []models.DocumentItem{{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		ResourceID: uuid.New(),
		UnitID:     uuid.New(),
		Quantity:   qty("9"),
	}}
	require.NoError(t, repo.ReplaceItems(ctx, doc.ID, next))

	found, err := repo.FindByID(ctx, doc.ID, enums.DocumentKindReceipt)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	require.True(t, found.Items[0].Quantity.Equal(qty("9")))

	require.NoError(t, repo.ReplaceItems(ctx, doc.ID, nil))
	found, err = repo.FindByID(ctx, doc.ID, enums.DocumentKindReceipt)
	require.NoError(t, err)
	require.Empty(t, found.Items)
}

func TestDocumentUpdateHeaderAndState(t *testing.T) {
	conn := newTestDB(t)
	repo := NewDocumentRepository(conn)
	ctx := context.Background()

	doc := seedDocument(t, repo, enums.DocumentKindShipment, enums.DocumentStateDraft)

	newDate := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateHeader(ctx, doc.ID, "DOC-2", newDate))
	require.NoError(t, repo.UpdateState(ctx, doc.ID, enums.DocumentStateSigned))

	found, err := repo.FindByID(ctx, doc.ID, enums.DocumentKindShipment)
	require.NoError(t, err)
	require.Equal(t, "DOC-2", found.Number)
	require.Equal(t, enums.DocumentStateSigned, found.State)
	require.True(t, found.Date.Equal(newDate))
}

func TestDocumentAnyDraftReferences(t *testing.T) {
	conn := newTestDB(t)
	repo := NewDocumentRepository(conn)
	ctx := context.Background()

	resourceID := uuid.New()
	unitID := uuid.New()

	doc := seedDocument(t, repo, enums.DocumentKindShipment, enums.DocumentStateDraft,
		models.DocumentItem{ResourceID: resourceID, UnitID: unitID, Quantity: qty("1")},
	)

	used, err := repo.AnyDraftWithResource(ctx, resourceID)
	require.NoError(t, err)
	require.True(t, used)

	used, err = repo.AnyDraftWithUnit(ctx, unitID)
	require.NoError(t, err)
	require.True(t, used)

	require.NoError(t, repo.UpdateState(ctx, doc.ID, enums.DocumentStateSigned))

	used, err = repo.AnyDraftWithResource(ctx, resourceID)
	require.NoError(t, err)
	require.False(t, used)

	used, err = repo.AnyDraftWithUnit(ctx, unitID)
	require.NoError(t, err)
	require.False(t, used)
}
