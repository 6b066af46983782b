package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ispnet/backend/internal/domain/shared"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed.
// UNPAID is the only status an invoice can leave.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Invoice is the aggregate root for one month of subscription charges.
// Version starts at zero and is incremented exactly once per successful
// status transition; the payment reconciler matches on it to serialize
// concurrent webhook deliveries without locks.
type Invoice struct {
	shared.BaseAggregateRoot
	SubscriptionID uuid.UUID
	InvoiceNumber  string
	BillingPeriod  time.Time
	DueDate        time.Time
	AmountBasic    decimal.Decimal
	AmountTax      decimal.Decimal
	AmountDiscount decimal.Decimal
	PenaltyFee     decimal.Decimal
	TotalAmount    decimal.Decimal
	Status         InvoiceStatus
}

// DueDateOffset is the grace window between billing date and due date
const DueDateOffset = 7 * 24 * time.Hour

// NewInvoice creates an UNPAID invoice for one billing period.
// Tax, discount and penalty are zero placeholders for now, so the total
// equals the basic package price.
func NewInvoice(subscriptionID uuid.UUID, invoiceNumber string, billingPeriod time.Time, monthlyPrice decimal.Decimal) (*Invoice, error) {
	if subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBSCRIPTION", "Subscription ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if monthlyPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Monthly price cannot be negative")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SubscriptionID:    subscriptionID,
		InvoiceNumber:     invoiceNumber,
		BillingPeriod:     billingPeriod,
		DueDate:           billingPeriod.Add(DueDateOffset),
		AmountBasic:       monthlyPrice,
		AmountTax:         decimal.Zero,
		AmountDiscount:    decimal.Zero,
		PenaltyFee:        decimal.Zero,
		TotalAmount:       monthlyPrice,
		Status:            InvoiceStatusUnpaid,
	}
	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return inv, nil
}

// CanTransition reports whether the invoice may move to target. Only
// UNPAID invoices transition; PAID and CANCELLED are terminal.
func (i *Invoice) CanTransition(target InvoiceStatus) bool {
	return i.Status == InvoiceStatusUnpaid && target.IsValid() && target != InvoiceStatusUnpaid
}

// MarkPaid transitions the invoice to PAID
func (i *Invoice) MarkPaid() error {
	if !i.CanTransition(InvoiceStatusPaid) {
		return shared.NewInvalidTransitionError(i.Status.String(), InvoiceStatusPaid.String())
	}
	i.Status = InvoiceStatusPaid
	i.IncrementVersion()
	return nil
}

// Cancel transitions the invoice to CANCELLED
func (i *Invoice) Cancel() error {
	if !i.CanTransition(InvoiceStatusCancelled) {
		return shared.NewInvalidTransitionError(i.Status.String(), InvoiceStatusCancelled.String())
	}
	i.Status = InvoiceStatusCancelled
	i.IncrementVersion()
	return nil
}

// IsOverdue reports whether an unpaid invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusUnpaid && i.DueDate.Before(now)
}
