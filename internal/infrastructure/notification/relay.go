package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// EventRelay consumes domain events from the bus and turns them into
// customer notifications. Reminder and overdue-alert jobs are produced by
// the scheduled dispatcher instead, since those are driven by the calendar
// rather than by state changes.
type EventRelay struct {
	notifier shared.Notifier
	logger   *zap.Logger
}

// NewEventRelay creates a relay publishing through the given notifier
func NewEventRelay(notifier shared.Notifier, logger *zap.Logger) *EventRelay {
	return &EventRelay{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (r *EventRelay) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceIssued,
		billing.EventTypeInvoicePaid,
		subscription.EventTypeIsolated,
		subscription.EventTypeReactivated,
	}
}

// Handle maps a domain event to its outbound notification
func (r *EventRelay) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.InvoiceIssuedEvent:
		return r.notifier.InvoiceIssued(ctx, shared.InvoiceNotice{
			InvoiceID:      e.InvoiceID,
			InvoiceNumber:  e.InvoiceNumber,
			SubscriptionID: e.SubscriptionID,
			TotalAmount:    e.TotalAmount,
			DueDate:        e.DueDate,
		})
	case *billing.InvoicePaidEvent:
		return r.notifier.PaymentReceived(ctx, shared.PaymentNotice{
			InvoiceID:      e.InvoiceID,
			InvoiceNumber:  e.InvoiceNumber,
			SubscriptionID: e.SubscriptionID,
			AmountPaid:     e.AmountPaid,
			Method:         e.Method,
			PaidAt:         e.PaidAt,
		})
	case *subscription.IsolatedEvent:
		return r.notifier.ServiceIsolated(ctx, shared.ServiceNotice{
			SubscriptionID: e.SubscriptionID,
			CustomerID:     e.CustomerID,
			ServiceNumber:  e.ServiceNumber,
		})
	case *subscription.ReactivatedEvent:
		return r.notifier.ServiceReactivated(ctx, shared.ServiceNotice{
			SubscriptionID: e.SubscriptionID,
			CustomerID:     e.CustomerID,
			ServiceNumber:  e.ServiceNumber,
		})
	default:
		r.logger.Debug("ignoring unhandled event type",
			zap.String("event_type", event.EventType()))
		return nil
	}
}

// Ensure EventRelay implements EventHandler
var _ shared.EventHandler = (*EventRelay)(nil)
