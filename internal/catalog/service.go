package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the resource and unit dictionaries. Entries referenced by
// draft documents cannot be archived or deleted: drafts are still editable
// and must keep resolving their lines.
type Service interface {
	CreateResource(ctx context.Context, name string) (*models.Resource, error)
	UpdateResource(ctx context.Context, id uuid.UUID, name string, isArchived bool) (*models.Resource, error)
	DeleteResource(ctx context.Context, id uuid.UUID) error
	GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	ListResources(ctx context.Context, includeArchived bool) ([]models.Resource, error)

	CreateUnit(ctx context.Context, name string) (*models.Unit, error)
	UpdateUnit(ctx context.Context, id uuid.UUID, name string, isArchived bool) (*models.Unit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error
	GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	ListUnits(ctx context.Context, includeArchived bool) ([]models.Unit, error)
}

// draftUsageChecker reports whether draft documents still reference a
// dictionary entry.
type draftUsageChecker interface {
	AnyDraftWithResource(ctx context.Context, resourceID uuid.UUID) (bool, error)
	AnyDraftWithUnit(ctx context.Context, unitID uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	drafts draftUsageChecker
}

// NewService wires the catalog service.
func NewService(repo Repository, drafts draftUsageChecker) Service {
	return &service{repo: repo, drafts: drafts}
}

func (s *service) CreateResource(ctx context.Context, name string) (*models.Resource, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	resource := &models.Resource{ID: uuid.New(), Name: name}
	if err := s.repo.CreateResource(ctx, resource); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("resource %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating resource")
	}
	return resource, nil
}

func (s *service) UpdateResource(ctx context.Context, id uuid.UUID, name string, isArchived bool) (*models.Resource, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	if isArchived && !resource.IsArchived {
		used, err := s.drafts.AnyDraftWithResource(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking draft usage")
		}
		if used {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "resource is referenced by draft documents")
		}
	}

	resource.Name = name
	resource.IsArchived = isArchived
	if err := s.repo.SaveResource(ctx, resource); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("resource %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating resource")
	}
	return resource, nil
}

func (s *service) DeleteResource(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetResource(ctx, id); err != nil {
		return err
	}
	used, err := s.drafts.AnyDraftWithResource(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking draft usage")
	}
	if used {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "resource is referenced by draft documents")
	}
	if err := s.repo.DeleteResource(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "resource is still referenced")
	}
	return nil
}

func (s *service) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	resource, err := s.repo.FindResource(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("resource %s not found", id))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading resource")
	}
	return resource, nil
}

func (s *service) ListResources(ctx context.Context, includeArchived bool) ([]models.Resource, error) {
	resources, err := s.repo.ListResources(ctx, includeArchived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing resources")
	}
	return resources, nil
}

func (s *service) CreateUnit(ctx context.Context, name string) (*models.Unit, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	unit := &models.Unit{ID: uuid.New(), Name: name}
	if err := s.repo.CreateUnit(ctx, unit); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("unit %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating unit")
	}
	return unit, nil
}

func (s *service) UpdateUnit(ctx context.Context, id uuid.UUID, name string, isArchived bool) (*models.Unit, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	unit, err := s.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	if isArchived && !unit.IsArchived {
		used, err := s.drafts.AnyDraftWithUnit(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking draft usage")
		}
		if used {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "unit is referenced by draft documents")
		}
	}

	unit.Name = name
	unit.IsArchived = isArchived
	if err := s.repo.SaveUnit(ctx, unit); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("unit %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating unit")
	}
	return unit, nil
}

func (s *service) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetUnit(ctx, id); err != nil {
		return err
	}
	used, err := s.drafts.AnyDraftWithUnit(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking draft usage")
	}
	if used {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "unit is referenced by draft documents")
	}
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "unit is still referenced")
	}
	return nil
}

func (s *service) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	unit, err := s.repo.FindUnit(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unit %s not found", id))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading unit")
	}
	return unit, nil
}

func (s *service) ListUnits(ctx context.Context, includeArchived bool) ([]models.Unit, error) {
	units, err := s.repo.ListUnits(ctx, includeArchived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing units")
	}
	return units, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return name, nil
}
