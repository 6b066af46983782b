package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ispnet/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	Status *InvoiceStatus
	Limit  int
}

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindForPeriod returns the non-cancelled invoice covering the given
	// billing-period window for a subscription, or ErrNotFound. At most one
	// such invoice exists per window.
	FindForPeriod(ctx context.Context, subscriptionID uuid.UUID, periodStart, periodEnd time.Time) (*Invoice, error)

	// FindByCustomer lists a customer's invoices, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindCurrentUnpaid returns the customer's unpaid invoice due soonest
	FindCurrentUnpaid(ctx context.Context, customerID uuid.UUID) (*Invoice, error)

	// FindOverdue returns UNPAID invoices whose due date is before the cutoff
	FindOverdue(ctx context.Context, before time.Time) ([]Invoice, error)

	// FindUnpaidDueBetween returns UNPAID invoices with a due date inside
	// [from, to], the window the reminder/alert job scans.
	FindUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]Invoice, error)

	// LatestInvoiceNumber returns the highest invoice number with the given
	// prefix, or empty string when none exists.
	LatestInvoiceNumber(ctx context.Context, prefix string) (string, error)

	// Create inserts a new invoice and stages its pending domain events in
	// the outbox within the same transaction.
	Create(ctx context.Context, inv *Invoice) error

	// SettlePayment applies a reconciled status transition atomically.
	// Within a single transaction it runs the conditional update matching
	// (id, status=UNPAID, version=observedVersion); when the update takes
	// effect and target is PAID it inserts the payment row and stages the
	// events in the outbox. raced reports a zero-row update: another
	// delivery already transitioned the invoice, which callers treat as
	// idempotent success.
	SettlePayment(ctx context.Context, invoiceID uuid.UUID, observedVersion int, target InvoiceStatus, payment *Payment, events ...shared.DomainEvent) (inv *Invoice, raced bool, err error)
}

// PaymentRepository defines persistence for payment records
type PaymentRepository interface {
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
}
