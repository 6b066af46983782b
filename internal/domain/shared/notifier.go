package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceNotice carries the fields a customer-facing invoice message needs
type InvoiceNotice struct {
	InvoiceID      uuid.UUID
	InvoiceNumber  string
	SubscriptionID uuid.UUID
	TotalAmount    decimal.Decimal
	DueDate        time.Time
}

// PaymentNotice announces a settled payment
type PaymentNotice struct {
	InvoiceID      uuid.UUID
	InvoiceNumber  string
	SubscriptionID uuid.UUID
	AmountPaid     decimal.Decimal
	Method         string
	PaidAt         time.Time
}

// ReminderNotice is a pre-due reminder or post-due alert for an unpaid
// invoice. DaysUntilDue is negative once the due date has passed.
type ReminderNotice struct {
	InvoiceID      uuid.UUID
	InvoiceNumber  string
	SubscriptionID uuid.UUID
	TotalAmount    decimal.Decimal
	DueDate        time.Time
	DaysUntilDue   int
}

// ServiceNotice announces a subscription status change
type ServiceNotice struct {
	SubscriptionID uuid.UUID
	CustomerID     uuid.UUID
	ServiceNumber  string
}

// Notifier is the outbound port for customer notifications. Implementations
// deliver asynchronously; callers treat delivery as best-effort.
type Notifier interface {
	// InvoiceIssued announces a freshly generated invoice
	InvoiceIssued(ctx context.Context, notice InvoiceNotice) error

	// PaymentReceived confirms a settled payment
	PaymentReceived(ctx context.Context, notice PaymentNotice) error

	// PaymentReminder nudges the customer before the due date
	PaymentReminder(ctx context.Context, notice ReminderNotice) error

	// OverdueAlert warns the customer after the due date has passed
	OverdueAlert(ctx context.Context, notice ReminderNotice) error

	// ServiceIsolated informs the customer their service was suspended
	ServiceIsolated(ctx context.Context, notice ServiceNotice) error

	// ServiceReactivated informs the customer their service was restored
	ServiceReactivated(ctx context.Context, notice ServiceNotice) error
}
