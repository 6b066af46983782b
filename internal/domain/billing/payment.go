package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ispnet/backend/internal/domain/shared"
)

// Payment records the settlement of an invoice. It is created exactly once,
// inside the same transaction as the invoice's transition to PAID, and is
// immutable thereafter.
type Payment struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID
	AmountPaid   decimal.Decimal
	Method       string
	GatewayTrxID string
	PaidAt       time.Time
}

// NewPayment creates a payment record for a settled invoice
func NewPayment(invoiceID uuid.UUID, amount decimal.Decimal, method, gatewayTrxID string, paidAt time.Time) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}
	if method == "" {
		method = "unknown"
	}

	return &Payment{
		BaseEntity:   shared.NewBaseEntity(),
		InvoiceID:    invoiceID,
		AmountPaid:   amount,
		Method:       method,
		GatewayTrxID: gatewayTrxID,
		PaidAt:       paidAt,
	}, nil
}
