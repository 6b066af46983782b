package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
	"github.com/ispnet/backend/internal/domain/workorder"
)

// Reconcile outcomes
const (
	OutcomeSettled     = "settled"      // invoice transitioned to PAID
	OutcomeCancelled   = "cancelled"    // invoice transitioned to CANCELLED
	OutcomeAlreadyPaid = "already_paid" // duplicate delivery for a paid invoice
	OutcomeRaced       = "raced"        // lost the conditional update to a concurrent delivery
	OutcomeIgnored     = "ignored"      // pending or unrecognized status, no transition
)

// ReconcileResult reports what a notification did to the invoice
type ReconcileResult struct {
	InvoiceNumber string                `json:"invoice_number"`
	Outcome       string                `json:"outcome"`
	Status        billing.InvoiceStatus `json:"status"`
}

// Reconciler applies payment gateway notifications to invoices. Webhook
// deliveries and manual status polls both funnel through HandleNotification,
// so retries, duplicates and out-of-order deliveries all hit the same
// guards.
type Reconciler struct {
	invoices      billing.InvoiceRepository
	subscriptions subscription.Repository
	workOrders    workorder.Repository
	gateway       billing.PaymentGateway
	logger        *zap.Logger
	now           func() time.Time
}

// NewReconciler creates a new payment Reconciler
func NewReconciler(
	invoices billing.InvoiceRepository,
	subscriptions subscription.Repository,
	workOrders workorder.Repository,
	gateway billing.PaymentGateway,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		invoices:      invoices,
		subscriptions: subscriptions,
		workOrders:    workOrders,
		gateway:       gateway,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleNotification reconciles one gateway notification.
//
// The signature is verified before anything is read from the database: a
// forged notification must never touch state. After that the flow is
// lookup, already-paid short-circuit, status mapping, then a single
// conditional transaction keyed on the version observed here. A zero-row
// update means another delivery won the race, which is reported as an
// idempotent success.
func (r *Reconciler) HandleNotification(ctx context.Context, n *billing.GatewayNotification) (*ReconcileResult, error) {
	if !r.gateway.VerifySignature(n) {
		// Both signatures go to the log for the audit trail
		r.logger.Warn("Rejected gateway notification with invalid signature",
			zap.String("order_id", n.OrderID),
			zap.String("expected_signature", r.gateway.ComputeSignature(n)),
			zap.String("received_signature", n.SignatureKey),
		)
		return nil, shared.ErrInvalidSignature
	}

	inv, err := r.invoices.FindByNumber(ctx, n.OrderID)
	if err != nil {
		return nil, err
	}

	if inv.Status == billing.InvoiceStatusPaid {
		return &ReconcileResult{
			InvoiceNumber: inv.InvoiceNumber,
			Outcome:       OutcomeAlreadyPaid,
			Status:        inv.Status,
		}, nil
	}

	target := n.TargetStatus()
	if target == billing.InvoiceStatusUnpaid {
		// Pending or challenge verdict: nothing to transition yet
		return &ReconcileResult{
			InvoiceNumber: inv.InvoiceNumber,
			Outcome:       OutcomeIgnored,
			Status:        inv.Status,
		}, nil
	}

	var payment *billing.Payment
	var events []shared.DomainEvent

	switch target {
	case billing.InvoiceStatusPaid:
		amount, err := decimal.NewFromString(n.GrossAmount)
		if err != nil {
			return nil, fmt.Errorf("parse gross amount %q: %w", n.GrossAmount, err)
		}
		payment, err = billing.NewPayment(inv.ID, amount, n.PaymentType, n.GatewayReference(), n.PaidAt(r.now()))
		if err != nil {
			return nil, err
		}
		events = append(events, billing.NewInvoicePaidEvent(inv, payment))
	case billing.InvoiceStatusCancelled:
		events = append(events, billing.NewInvoiceCancelledEvent(inv, n.TransactionStatus))
	}

	settled, raced, err := r.invoices.SettlePayment(ctx, inv.ID, inv.Version, target, payment, events...)
	if err != nil {
		return nil, err
	}
	if raced {
		r.logger.Info("Concurrent delivery already settled invoice",
			zap.String("invoice_number", inv.InvoiceNumber),
		)
		return &ReconcileResult{
			InvoiceNumber: inv.InvoiceNumber,
			Outcome:       OutcomeRaced,
			Status:        inv.Status,
		}, nil
	}

	outcome := OutcomeCancelled
	if target == billing.InvoiceStatusPaid {
		outcome = OutcomeSettled
		r.scheduleInstallation(ctx, settled)
	}

	r.logger.Info("Invoice reconciled",
		zap.String("invoice_number", settled.InvoiceNumber),
		zap.String("status", settled.Status.String()),
		zap.String("transaction_status", n.TransactionStatus),
	)

	return &ReconcileResult{
		InvoiceNumber: settled.InvoiceNumber,
		Outcome:       outcome,
		Status:        settled.Status,
	}, nil
}

// PollStatus pulls the order's status from the gateway and reconciles it
// through the same path as a webhook delivery
func (r *Reconciler) PollStatus(ctx context.Context, orderID string) (*ReconcileResult, error) {
	n, err := r.gateway.FetchStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return r.HandleNotification(ctx, n)
}

// scheduleInstallation creates the installation work order when the first
// payment for a pending-install subscription arrives. This is a side
// effect of settlement: failures are logged and swallowed so they can
// never undo or block the payment.
func (r *Reconciler) scheduleInstallation(ctx context.Context, inv *billing.Invoice) {
	sub, err := r.subscriptions.FindByID(ctx, inv.SubscriptionID)
	if err != nil {
		r.logger.Error("Failed to load subscription for installation scheduling",
			zap.String("subscription_id", inv.SubscriptionID.String()),
			zap.Error(err),
		)
		return
	}

	if sub.Status != subscription.StatusPendingInstall {
		return
	}

	slot := workorder.InstallationSlot(r.now())
	wo, err := workorder.NewWorkOrder(sub.ID, workorder.TypeNewInstallation, slot,
		fmt.Sprintf("Installation for %s after payment of %s", sub.ServiceNumber, inv.InvoiceNumber))
	if err != nil {
		r.logger.Error("Failed to build installation work order",
			zap.String("subscription_id", sub.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := r.workOrders.Save(ctx, wo); err != nil {
		r.logger.Error("Failed to save installation work order",
			zap.String("subscription_id", sub.ID.String()),
			zap.Error(err),
		)
		return
	}

	r.logger.Info("Installation work order scheduled",
		zap.String("subscription_id", sub.ID.String()),
		zap.Time("scheduled_at", slot),
	)
}
