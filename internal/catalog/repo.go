package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for resources and units of measure.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	CreateResource(ctx context.Context, resource *models.Resource) error
	SaveResource(ctx context.Context, resource *models.Resource) error
	DeleteResource(ctx context.Context, id uuid.UUID) error
	ListResources(ctx context.Context, includeArchived bool) ([]models.Resource, error)

	FindUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	CreateUnit(ctx context.Context, unit *models.Unit) error
	SaveUnit(ctx context.Context, unit *models.Unit) error
	DeleteUnit(ctx context.Context, id uuid.UUID) error
	ListUnits(ctx context.Context, includeArchived bool) ([]models.Unit, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *repository) CreateResource(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *repository) SaveResource(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Save(resource).Error
}

func (r *repository) DeleteResource(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Resource{}, "id = ?", id).Error
}

func (r *repository) ListResources(ctx context.Context, includeArchived bool) ([]models.Resource, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var resources []models.Resource
	if err := q.Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *repository) FindUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *repository) CreateUnit(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *repository) SaveUnit(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

func (r *repository) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Unit{}, "id = ?", id).Error
}

func (r *repository) ListUnits(ctx context.Context, includeArchived bool) ([]models.Unit, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	var units []models.Unit
	if err := q.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
