package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"gorm.io/gorm"
)

// DocumentRepository manages persistence for documents and their items.
type DocumentRepository interface {
	WithTx(tx *gorm.DB) DocumentRepository
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id uuid.UUID, kind enums.DocumentKind) (*models.Document, error)
	ReplaceItems(ctx context.Context, documentID uuid.UUID, items []models.DocumentItem) error
	UpdateHeader(ctx context.Context, id uuid.UUID, number string, date time.Time) error
	UpdateState(ctx context.Context, id uuid.UUID, state enums.DocumentState) error
	List(ctx context.Context, kind enums.DocumentKind, state *enums.DocumentState) ([]models.Document, error)
	ItemViews(ctx context.Context, documentID uuid.UUID) ([]DocumentItemView, error)
	AnyDraftWithResource(ctx context.Context, resourceID uuid.UUID) (bool, error)
	AnyDraftWithUnit(ctx context.Context, unitID uuid.UUID) (bool, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository returns a document repository bound to the provided database.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) WithTx(tx *gorm.DB) DocumentRepository {
	if tx == nil {
		return r
	}
	return &documentRepository{db: tx}
}

// Create persists the document together with its items.
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// FindByID loads a document of the given kind with its items. Returns
// gorm.ErrRecordNotFound when no such document exists.
func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID, kind enums.DocumentKind) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&doc, "id = ? AND kind = ?", id, kind).
		Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReplaceItems deletes the document's current items and inserts the new set.
func (r *documentRepository) ReplaceItems(ctx context.Context, documentID uuid.UUID, items []models.DocumentItem) error {
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DocumentItem{}).
		Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *documentRepository) UpdateHeader(ctx context.Context, id uuid.UUID, number string, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{"number": number, "date": date}).
		Error
}

func (r *documentRepository) UpdateState(ctx context.Context, id uuid.UUID, state enums.DocumentState) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Update("state", state).
		Error
}

// List returns documents of the given kind, optionally filtered by state,
// newest first, with items preloaded.
func (r *documentRepository) List(ctx context.Context, kind enums.DocumentKind, state *enums.DocumentState) ([]models.Document, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("kind = ?", kind).
		Order("date DESC, created_at DESC")
	if state != nil {
		q = q.Where("state = ?", *state)
	}

	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// ItemViews returns the document's items with resource and unit names resolved.
func (r *documentRepository) ItemViews(ctx context.Context, documentID uuid.UUID) ([]DocumentItemView, error) {
	var views []DocumentItemView
	err := r.db.WithContext(ctx).
		Table("document_items i").
		Select("i.resource_id, r.name AS resource_name, i.unit_id, u.name AS unit_name, i.quantity").
		Joins("JOIN resources r ON r.id = i.resource_id").
		Joins("JOIN units u ON u.id = i.unit_id").
		Where("i.document_id = ?", documentID).
		Order("i.created_at ASC").
		Scan(&views).
		Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *documentRepository) AnyDraftWithResource(ctx context.Context, resourceID uuid.UUID) (bool, error) {
	return r.anyDraftWhere(ctx, "i.resource_id = ?", resourceID)
}

func (r *documentRepository) AnyDraftWithUnit(ctx context.Context, unitID uuid.UUID) (bool, error) {
	return r.anyDraftWhere(ctx, "i.unit_id = ?", unitID)
}

func (r *documentRepository) anyDraftWhere(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("documents d").
		Joins("JOIN document_items i ON i.document_id = d.id").
		Where("d.state = ?", enums.DocumentStateDraft).
		Where(cond, arg).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
