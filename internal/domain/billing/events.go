package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ispnet/backend/internal/domain/shared"
)

// Event type names for billing events
const (
	EventTypeInvoiceIssued    = "InvoiceIssued"
	EventTypeInvoicePaid      = "InvoicePaid"
	EventTypeInvoiceCancelled = "InvoiceCancelled"
)

const aggregateType = "Invoice"

// InvoiceIssuedEvent is raised when a new invoice is created
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	BillingPeriod  time.Time       `json:"billing_period"`
	DueDate        time.Time       `json:"due_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string { return EventTypeInvoiceIssued }

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, aggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SubscriptionID:  inv.SubscriptionID,
		BillingPeriod:   inv.BillingPeriod,
		DueDate:         inv.DueDate,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoicePaidEvent is raised when an invoice settles
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Method         string          `json:"method"`
	GatewayTrxID   string          `json:"gateway_trx_id"`
	PaidAt         time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string { return EventTypeInvoicePaid }

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, p *Payment) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, aggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SubscriptionID:  inv.SubscriptionID,
		AmountPaid:      p.AmountPaid,
		Method:          p.Method,
		GatewayTrxID:    p.GatewayTrxID,
		PaidAt:          p.PaidAt,
	}
}

// InvoiceCancelledEvent is raised when the gateway reports a denied,
// cancelled or expired transaction
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	InvoiceNumber  string    `json:"invoice_number"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Reason         string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string { return EventTypeInvoiceCancelled }

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, aggregateType, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SubscriptionID:  inv.SubscriptionID,
		Reason:          reason,
	}
}
