package catalog

import (
	"context"

	"github.com/google/uuid"
)

// PackageRepository provides read access to service packages
type PackageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Package, error)
	FindActive(ctx context.Context) ([]Package, error)
}
