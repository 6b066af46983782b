package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
	"github.com/ispnet/backend/internal/infrastructure/persistence/models"
)

// GormSubscriptionRepository implements subscription.Repository using GORM.
// Lifecycle transitions carry domain events; both save paths stage them in
// the outbox within the same transaction through the injected event saver.
type GormSubscriptionRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db, events: events}
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByServiceNumber finds a subscription by its service number
func (r *GormSubscriptionRepository) FindByServiceNumber(ctx context.Context, serviceNumber string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("service_number = ?", serviceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds subscriptions matching the filter, with total count
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, filter subscription.Filter) ([]subscription.Subscription, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SubscriptionModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PackageID != nil {
		query = query.Where("package_id = ?", *filter.PackageID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var subscriptionModels []models.SubscriptionModel
	if err := query.Order("created_at DESC").Find(&subscriptionModels).Error; err != nil {
		return nil, 0, err
	}

	subs := make([]subscription.Subscription, len(subscriptionModels))
	for i, model := range subscriptionModels {
		subs[i] = *model.ToDomain()
	}
	return subs, total, nil
}

// FindDueForBilling returns ACTIVE subscriptions billed on dayToBill. When
// the target date is the last day of a short month, anchors past it roll
// into the same run so nobody anchored on the 29th-31st is skipped.
func (r *GormSubscriptionRepository) FindDueForBilling(ctx context.Context, dayToBill int, isLastDayOfMonth bool) ([]subscription.Subscription, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("status = ?", subscription.StatusActive).
		Where("activation_date IS NOT NULL")

	if isLastDayOfMonth {
		query = query.Where("EXTRACT(DAY FROM activation_date) >= ?", dayToBill)
	} else {
		query = query.Where("EXTRACT(DAY FROM activation_date) = ?", dayToBill)
	}

	var subscriptionModels []models.SubscriptionModel
	if err := query.Order("created_at ASC").Find(&subscriptionModels).Error; err != nil {
		return nil, err
	}

	subs := make([]subscription.Subscription, len(subscriptionModels))
	for i, model := range subscriptionModels {
		subs[i] = *model.ToDomain()
	}
	return subs, nil
}

// LatestServiceNumber returns the highest service number with the prefix
func (r *GormSubscriptionRepository) LatestServiceNumber(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Select("service_number").
		Where("service_number LIKE ?", prefix+"%").
		Order("service_number DESC").
		Limit(1).
		Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

// Save creates or updates a subscription and stages its pending domain
// events in the outbox within the same transaction
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SubscriptionModelFromDomain(sub)
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if r.events != nil {
			if err := r.events.SaveEvents(ctx, tx, sub.GetDomainEvents()...); err != nil {
				return err
			}
		}
		sub.ClearDomainEvents()
		return nil
	})
}

// SaveWithLock saves a subscription with optimistic locking (version check)
// Returns ErrConcurrencyConflict if the stored version has moved on. The
// transition's domain events go to the outbox only when the update wins.
func (r *GormSubscriptionRepository) SaveWithLock(ctx context.Context, sub *subscription.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SubscriptionModelFromDomain(sub)
		result := tx.
			Model(model).
			Where("id = ? AND version = ?", sub.ID, sub.Version-1).
			Updates(model)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		if r.events != nil {
			if err := r.events.SaveEvents(ctx, tx, sub.GetDomainEvents()...); err != nil {
				return err
			}
		}
		sub.ClearDomainEvents()
		return nil
	})
}

// Ensure GormSubscriptionRepository implements Repository
var _ subscription.Repository = (*GormSubscriptionRepository)(nil)
