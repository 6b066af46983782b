package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ispnet/backend/internal/domain/catalog"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/infrastructure/persistence/models"
)

// GormPackageRepository implements catalog.PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// FindByID finds a package by its ID
func (r *GormPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	var model models.PackageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive finds all packages currently offered
func (r *GormPackageRepository) FindActive(ctx context.Context) ([]catalog.Package, error) {
	var packageModels []models.PackageModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("monthly_price ASC").
		Find(&packageModels).Error; err != nil {
		return nil, err
	}

	packages := make([]catalog.Package, len(packageModels))
	for i, model := range packageModels {
		packages[i] = *model.ToDomain()
	}
	return packages, nil
}

// Save creates or updates a package
func (r *GormPackageRepository) Save(ctx context.Context, pkg *catalog.Package) error {
	model := models.PackageModelFromDomain(pkg)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormPackageRepository implements PackageRepository
var _ catalog.PackageRepository = (*GormPackageRepository)(nil)
