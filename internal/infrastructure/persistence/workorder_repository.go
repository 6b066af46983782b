package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/workorder"
	"github.com/ispnet/backend/internal/infrastructure/persistence/models"
)

// GormWorkOrderRepository implements workorder.Repository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID finds a work order by its ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySubscription lists work orders for a subscription, newest first
func (r *GormWorkOrderRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]*workorder.WorkOrder, error) {
	var workOrderModels []models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&workOrderModels).Error; err != nil {
		return nil, err
	}
	return toWorkOrders(workOrderModels), nil
}

// FindByStatus lists work orders in the given status, oldest scheduled first
func (r *GormWorkOrderRepository) FindByStatus(ctx context.Context, status workorder.WorkOrderStatus, limit int) ([]*workorder.WorkOrder, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("scheduled_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var workOrderModels []models.WorkOrderModel
	if err := query.Find(&workOrderModels).Error; err != nil {
		return nil, err
	}
	return toWorkOrders(workOrderModels), nil
}

// Save creates or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, wo *workorder.WorkOrder) error {
	model := models.WorkOrderModelFromDomain(wo)
	return r.db.WithContext(ctx).Save(model).Error
}

func toWorkOrders(workOrderModels []models.WorkOrderModel) []*workorder.WorkOrder {
	workOrders := make([]*workorder.WorkOrder, len(workOrderModels))
	for i, model := range workOrderModels {
		workOrders[i] = model.ToDomain()
	}
	return workOrders
}

// Ensure GormWorkOrderRepository implements Repository
var _ workorder.Repository = (*GormWorkOrderRepository)(nil)
