package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/catalog"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// CreateRequest carries the inputs for opening a new subscription
type CreateRequest struct {
	CustomerID          uuid.UUID `json:"customer_id" binding:"required"`
	PackageID           uuid.UUID `json:"package_id" binding:"required"`
	InstallationAddress string    `json:"installation_address" binding:"required"`
	GeoLat              float64   `json:"geo_lat"`
	GeoLong             float64   `json:"geo_long"`
}

// LifecycleService drives subscriptions through their lifecycle. Every
// transition goes through the aggregate's own methods, so an invalid
// transition surfaces as INVALID_TRANSITION before anything is written.
// Transition events are staged in the outbox by the repository; customer
// notices flow from there through the event relay.
type LifecycleService struct {
	subscriptions subscription.Repository
	packages      catalog.PackageRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	subscriptions subscription.Repository,
	packages catalog.PackageRepository,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		subscriptions: subscriptions,
		packages:      packages,
		logger:        logger,
		now:           time.Now,
	}
}

// Create opens a subscription awaiting installation. The service number is
// allocated from the monthly sequence.
func (s *LifecycleService) Create(ctx context.Context, req CreateRequest) (*subscription.Subscription, error) {
	pkg, err := s.packages.FindByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Subscriptions can only be opened on active packages")
	}

	now := s.now()
	latest, err := s.subscriptions.LatestServiceNumber(ctx, subscription.ServiceNumberPrefix(now))
	if err != nil {
		return nil, err
	}
	number := subscription.NextServiceNumber(latest, now)

	sub, err := subscription.New(req.CustomerID, req.PackageID, number, req.InstallationAddress)
	if err != nil {
		return nil, err
	}
	sub.GeoLat = req.GeoLat
	sub.GeoLong = req.GeoLong

	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("service_number", sub.ServiceNumber),
		zap.String("package", pkg.Name),
	)
	return sub, nil
}

// Activate puts a pending subscription into service, typically after the
// installation work order completes. The activation timestamp becomes the
// billing anchor and the contract end date comes from the package.
func (s *LifecycleService) Activate(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg, err := s.packages.FindByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}

	if err := sub.Activate(s.now(), pkg.ContractMonths()); err != nil {
		return nil, err
	}

	if err := s.subscriptions.SaveWithLock(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription activated",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("service_number", sub.ServiceNumber),
		zap.Int("anchor_day", sub.AnchorDay()),
	)
	return sub, nil
}

// Isolate suspends an active subscription
func (s *LifecycleService) Isolate(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return s.transition(ctx, id, (*subscription.Subscription).Isolate)
}

// Reactivate restores an isolated subscription to service
func (s *LifecycleService) Reactivate(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return s.transition(ctx, id, (*subscription.Subscription).Reactivate)
}

// Terminate permanently ends a subscription
func (s *LifecycleService) Terminate(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return s.transition(ctx, id, (*subscription.Subscription).Terminate)
}

// GetByID returns one subscription
func (s *LifecycleService) GetByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return s.subscriptions.FindByID(ctx, id)
}

// List returns subscriptions matching the filter with the total count
func (s *LifecycleService) List(ctx context.Context, filter subscription.Filter) ([]subscription.Subscription, int64, error) {
	return s.subscriptions.FindAll(ctx, filter)
}

func (s *LifecycleService) transition(ctx context.Context, id uuid.UUID, apply func(*subscription.Subscription) error) (*subscription.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(sub); err != nil {
		return nil, err
	}

	if err := s.subscriptions.SaveWithLock(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription status changed",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("service_number", sub.ServiceNumber),
		zap.String("status", sub.Status.String()),
	)
	return sub, nil
}
