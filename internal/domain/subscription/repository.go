package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows subscription listings
type Filter struct {
	Status     *Status
	CustomerID *uuid.UUID
	PackageID  *uuid.UUID
	Page       int
	PageSize   int
}

// Repository defines persistence for subscriptions
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	FindByServiceNumber(ctx context.Context, serviceNumber string) (*Subscription, error)
	FindAll(ctx context.Context, filter Filter) ([]Subscription, int64, error)

	// FindDueForBilling returns ACTIVE subscriptions whose billing anchor day
	// matches dayToBill, or rolls past it into the last day of a short month.
	// The filtering happens in a single indexed day-of-month query.
	FindDueForBilling(ctx context.Context, dayToBill int, isLastDayOfMonth bool) ([]Subscription, error)

	// LatestServiceNumber returns the highest service number with the given
	// prefix, or empty string when none exists.
	LatestServiceNumber(ctx context.Context, prefix string) (string, error)

	Save(ctx context.Context, sub *Subscription) error

	// SaveWithLock persists the subscription only if the stored version still
	// matches the version observed before the mutation.
	SaveWithLock(ctx context.Context, sub *Subscription) error
}
