package billing

import (
	"context"
	"time"
)

// Gateway transaction statuses as delivered in notifications
const (
	GatewayStatusCapture    = "capture"
	GatewayStatusSettlement = "settlement"
	GatewayStatusPending    = "pending"
	GatewayStatusDeny       = "deny"
	GatewayStatusCancel     = "cancel"
	GatewayStatusExpire     = "expire"

	FraudStatusAccept = "accept"
)

// GatewayNotification is a payment status notice from the gateway, either
// pushed by webhook or pulled by the manual status poll. Both paths feed
// the same reconciliation code.
type GatewayNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	ApprovalCode      string `json:"approval_code,omitempty"`
	SettlementTime    string `json:"settlement_time,omitempty"`
}

// TargetStatus maps the gateway transaction status to the invoice status it
// settles into. Card captures carry a fraud verdict: only accepted (or
// absent) fraud status counts as paid. Pending stays UNPAID.
func (n *GatewayNotification) TargetStatus() InvoiceStatus {
	switch n.TransactionStatus {
	case GatewayStatusCapture, GatewayStatusSettlement:
		if n.FraudStatus == FraudStatusAccept || n.FraudStatus == "" {
			return InvoiceStatusPaid
		}
		return InvoiceStatusUnpaid
	case GatewayStatusDeny, GatewayStatusCancel, GatewayStatusExpire:
		return InvoiceStatusCancelled
	default:
		return InvoiceStatusUnpaid
	}
}

// GatewayReference returns the gateway transaction identifier, falling back
// to the approval code for card payments.
func (n *GatewayNotification) GatewayReference() string {
	if n.TransactionID != "" {
		return n.TransactionID
	}
	return n.ApprovalCode
}

// PaidAt resolves the settlement timestamp, defaulting to now when the
// notification omits or mangles it.
func (n *GatewayNotification) PaidAt(now time.Time) time.Time {
	if n.SettlementTime == "" {
		return now
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, n.SettlementTime, now.Location()); err == nil {
			return t
		}
	}
	return now
}

// CheckoutSession is the redirect/token payload returned by the gateway
// when a payment is created.
type CheckoutSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutRequest carries the order details for a gateway payment creation
type CheckoutRequest struct {
	OrderID       string
	GrossAmount   string
	CustomerName  string
	CustomerEmail string
	ItemName      string
	ItemPrice     string
}

// PaymentGateway is the outbound port to the payment provider
type PaymentGateway interface {
	// CreateTransaction opens a checkout session for an order
	CreateTransaction(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// FetchStatus pulls the current transaction status for an order; the
	// response has the same shape as a webhook notification so it can be
	// reconciled by the same path.
	FetchStatus(ctx context.Context, orderID string) (*GatewayNotification, error)

	// VerifySignature checks the notification's signature key against the
	// value recomputed from the order fields and the server secret.
	VerifySignature(n *GatewayNotification) bool

	// ComputeSignature returns the signature the gateway should have sent
	// for the notification, so rejections can log expected vs received.
	ComputeSignature(n *GatewayNotification) string
}
