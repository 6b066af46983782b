package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
)

// PaymentService opens gateway checkout sessions for unpaid invoices
type PaymentService struct {
	invoices billing.InvoiceRepository
	gateway  billing.PaymentGateway
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(invoices billing.InvoiceRepository, gateway billing.PaymentGateway, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		invoices: invoices,
		gateway:  gateway,
		logger:   logger,
	}
}

// CreateCheckout opens a gateway checkout session for the invoice. The
// invoice number doubles as the gateway order id, which is what ties the
// later notification back to the invoice.
func (s *PaymentService) CreateCheckout(ctx context.Context, invoiceID uuid.UUID) (*billing.CheckoutSession, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.Status != billing.InvoiceStatusUnpaid {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Checkout is only available for unpaid invoices")
	}

	session, err := s.gateway.CreateTransaction(ctx, billing.CheckoutRequest{
		OrderID:     inv.InvoiceNumber,
		GrossAmount: inv.TotalAmount.String(),
		ItemName:    "Internet service " + inv.BillingPeriod.Format("January 2006"),
		ItemPrice:   inv.TotalAmount.String(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("token", session.Token),
	)
	return session, nil
}
