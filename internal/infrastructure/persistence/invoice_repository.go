package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM.
// Writes that carry domain events stage them in the outbox within the same
// transaction through the injected event saver.
type GormInvoiceRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, events: events}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForPeriod returns the non-cancelled invoice for the subscription's
// billing-period window, or ErrNotFound
func (r *GormInvoiceRepository) FindForPeriod(ctx context.Context, subscriptionID uuid.UUID, periodStart, periodEnd time.Time) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND billing_period >= ? AND billing_period <= ? AND status <> ?",
			subscriptionID, periodStart, periodEnd, billing.InvoiceStatusCancelled).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's invoices, newest first
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Joins("JOIN subscriptions ON subscriptions.id = invoices.subscription_id").
		Where("subscriptions.customer_id = ?", customerID)

	if filter.Status != nil {
		query = query.Where("invoices.status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Order("invoices.billing_period DESC").Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindCurrentUnpaid returns the customer's unpaid invoice due soonest
func (r *GormInvoiceRepository) FindCurrentUnpaid(ctx context.Context, customerID uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.id = invoices.subscription_id").
		Where("subscriptions.customer_id = ? AND invoices.status = ?", customerID, billing.InvoiceStatusUnpaid).
		Order("invoices.due_date ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOverdue returns UNPAID invoices whose due date is before the cutoff
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, before time.Time) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", billing.InvoiceStatusUnpaid, before).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindUnpaidDueBetween returns UNPAID invoices due inside [from, to]
func (r *GormInvoiceRepository) FindUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date >= ? AND due_date <= ?", billing.InvoiceStatusUnpaid, from, to).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// LatestInvoiceNumber returns the highest invoice number with the prefix
func (r *GormInvoiceRepository) LatestInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

// Create inserts a new invoice and stages its pending domain events in the
// outbox within the same transaction
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.InvoiceModelFromDomain(inv)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		if r.events != nil {
			if err := r.events.SaveEvents(ctx, tx, inv.GetDomainEvents()...); err != nil {
				return err
			}
		}
		inv.ClearDomainEvents()
		return nil
	})
}

// SettlePayment applies a reconciled status transition atomically. The
// conditional update matches on (id, status=UNPAID, version): it takes
// effect at most once per observed version, so concurrent deliveries of the
// same notification collapse to a single transition. raced reports that the
// row was already gone from that state, which callers treat as idempotent
// success.
func (r *GormInvoiceRepository) SettlePayment(ctx context.Context, invoiceID uuid.UUID, observedVersion int, target billing.InvoiceStatus, payment *billing.Payment, events ...shared.DomainEvent) (*billing.Invoice, bool, error) {
	var (
		raced bool
		model models.InvoiceModel
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND status = ? AND version = ?", invoiceID, billing.InvoiceStatusUnpaid, observedVersion).
			Updates(map[string]interface{}{
				"status":     target,
				"version":    observedVersion + 1,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			raced = true
			return nil
		}

		if payment != nil && target == billing.InvoiceStatusPaid {
			if err := tx.Create(models.PaymentModelFromDomain(payment)).Error; err != nil {
				return err
			}
		}

		if r.events != nil && len(events) > 0 {
			if err := r.events.SaveEvents(ctx, tx, events...); err != nil {
				return err
			}
		}

		return tx.First(&model, "id = ?", invoiceID).Error
	})
	if err != nil {
		return nil, false, err
	}
	if raced {
		return nil, true, nil
	}
	return model.ToDomain(), false, nil
}

func toInvoices(invoiceModels []models.InvoiceModel) []billing.Invoice {
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
