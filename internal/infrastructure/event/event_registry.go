package event

import (
	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Billing domain events
	serializer.Register(billing.EventTypeInvoiceIssued, &billing.InvoiceIssuedEvent{})
	serializer.Register(billing.EventTypeInvoicePaid, &billing.InvoicePaidEvent{})
	serializer.Register(billing.EventTypeInvoiceCancelled, &billing.InvoiceCancelledEvent{})

	// Subscription lifecycle events
	serializer.Register(subscription.EventTypeCreated, &subscription.CreatedEvent{})
	serializer.Register(subscription.EventTypeActivated, &subscription.ActivatedEvent{})
	serializer.Register(subscription.EventTypeIsolated, &subscription.IsolatedEvent{})
	serializer.Register(subscription.EventTypeReactivated, &subscription.ReactivatedEvent{})
	serializer.Register(subscription.EventTypeTerminated, &subscription.TerminatedEvent{})
}
