package workorder

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the work order persistence port
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]*WorkOrder, error)
	FindByStatus(ctx context.Context, status WorkOrderStatus, limit int) ([]*WorkOrder, error)
	Save(ctx context.Context, wo *WorkOrder) error
}
