package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/ispnet/backend/internal/domain/shared"
)

// Event type names for subscription lifecycle events
const (
	EventTypeCreated     = "SubscriptionCreated"
	EventTypeActivated   = "SubscriptionActivated"
	EventTypeIsolated    = "SubscriptionIsolated"
	EventTypeReactivated = "SubscriptionReactivated"
	EventTypeTerminated  = "SubscriptionTerminated"
)

const aggregateType = "Subscription"

// CreatedEvent is raised when a new subscription is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	PackageID      uuid.UUID `json:"package_id"`
	ServiceNumber  string    `json:"service_number"`
}

// EventType returns the event type name
func (e *CreatedEvent) EventType() string { return EventTypeCreated }

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(s *Subscription) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, aggregateType, s.ID),
		SubscriptionID:  s.ID,
		CustomerID:      s.CustomerID,
		PackageID:       s.PackageID,
		ServiceNumber:   s.ServiceNumber,
	}
}

// ActivatedEvent is raised when a subscription goes into service
type ActivatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID  uuid.UUID  `json:"subscription_id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	ServiceNumber   string     `json:"service_number"`
	ActivationDate  time.Time  `json:"activation_date"`
	ContractEndDate *time.Time `json:"contract_end_date,omitempty"`
}

// EventType returns the event type name
func (e *ActivatedEvent) EventType() string { return EventTypeActivated }

// NewActivatedEvent creates a new ActivatedEvent
func NewActivatedEvent(s *Subscription) *ActivatedEvent {
	var activated time.Time
	if s.ActivationDate != nil {
		activated = *s.ActivationDate
	}
	return &ActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActivated, aggregateType, s.ID),
		SubscriptionID:  s.ID,
		CustomerID:      s.CustomerID,
		ServiceNumber:   s.ServiceNumber,
		ActivationDate:  activated,
		ContractEndDate: s.ContractEndDate,
	}
}

// IsolatedEvent is raised when a subscription is suspended for non-payment
type IsolatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	ServiceNumber  string    `json:"service_number"`
}

// EventType returns the event type name
func (e *IsolatedEvent) EventType() string { return EventTypeIsolated }

// NewIsolatedEvent creates a new IsolatedEvent
func NewIsolatedEvent(s *Subscription) *IsolatedEvent {
	return &IsolatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIsolated, aggregateType, s.ID),
		SubscriptionID:  s.ID,
		CustomerID:      s.CustomerID,
		ServiceNumber:   s.ServiceNumber,
	}
}

// ReactivatedEvent is raised when an isolated subscription is restored
type ReactivatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	ServiceNumber  string    `json:"service_number"`
}

// EventType returns the event type name
func (e *ReactivatedEvent) EventType() string { return EventTypeReactivated }

// NewReactivatedEvent creates a new ReactivatedEvent
func NewReactivatedEvent(s *Subscription) *ReactivatedEvent {
	return &ReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReactivated, aggregateType, s.ID),
		SubscriptionID:  s.ID,
		CustomerID:      s.CustomerID,
		ServiceNumber:   s.ServiceNumber,
	}
}

// TerminatedEvent is raised when a subscription is permanently ended
type TerminatedEvent struct {
	shared.BaseDomainEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	ServiceNumber  string    `json:"service_number"`
}

// EventType returns the event type name
func (e *TerminatedEvent) EventType() string { return EventTypeTerminated }

// NewTerminatedEvent creates a new TerminatedEvent
func NewTerminatedEvent(s *Subscription) *TerminatedEvent {
	return &TerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTerminated, aggregateType, s.ID),
		SubscriptionID:  s.ID,
		CustomerID:      s.CustomerID,
		ServiceNumber:   s.ServiceNumber,
	}
}
