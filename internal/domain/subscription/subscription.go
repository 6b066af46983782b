package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/ispnet/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a subscription
type Status string

const (
	StatusPendingInstall Status = "PENDING_INSTALL" // Created, waiting for installation
	StatusActive         Status = "ACTIVE"          // Service is delivered and billed
	StatusIsolated       Status = "ISOLATED"        // Suspended for non-payment
	StatusTerminated     Status = "TERMINATED"      // Permanently ended
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingInstall, StatusActive, StatusIsolated, StatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusTerminated
}

// Subscription is the aggregate root for a customer's internet service.
// It is mutated only through the lifecycle transitions below and is never
// deleted, only terminated. ActivationDate doubles as the billing anchor:
// its day-of-month decides when the subscription is billed each cycle.
type Subscription struct {
	shared.BaseAggregateRoot
	CustomerID          uuid.UUID
	PackageID           uuid.UUID
	ServiceNumber       string
	Status              Status
	InstallationAddress string
	GeoLat              float64
	GeoLong             float64
	ActivationDate      *time.Time
	ContractEndDate     *time.Time
}

// New creates a subscription awaiting installation
func New(customerID, packageID uuid.UUID, serviceNumber, address string) (*Subscription, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if packageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}
	if serviceNumber == "" {
		return nil, shared.NewDomainError("INVALID_SERVICE_NUMBER", "Service number cannot be empty")
	}

	sub := &Subscription{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		CustomerID:          customerID,
		PackageID:           packageID,
		ServiceNumber:       serviceNumber,
		Status:              StatusPendingInstall,
		InstallationAddress: address,
	}
	sub.AddDomainEvent(NewCreatedEvent(sub))
	return sub, nil
}

// Activate moves a pending subscription into service. It stamps the
// activation date (the billing anchor) and computes the contract end date
// from the package contract duration.
func (s *Subscription) Activate(now time.Time, contractMonths int) error {
	if s.Status != StatusPendingInstall {
		return shared.NewInvalidTransitionError(s.Status.String(), StatusActive.String())
	}
	if contractMonths < 1 {
		contractMonths = 1
	}

	end := now.AddDate(0, contractMonths, 0)
	s.Status = StatusActive
	s.ActivationDate = &now
	s.ContractEndDate = &end
	s.IncrementVersion()
	s.AddDomainEvent(NewActivatedEvent(s))
	return nil
}

// Isolate suspends an active subscription, typically for non-payment
func (s *Subscription) Isolate() error {
	if s.Status != StatusActive {
		return shared.NewInvalidTransitionError(s.Status.String(), StatusIsolated.String())
	}
	s.Status = StatusIsolated
	s.IncrementVersion()
	s.AddDomainEvent(NewIsolatedEvent(s))
	return nil
}

// Reactivate restores an isolated subscription to service
func (s *Subscription) Reactivate() error {
	if s.Status != StatusIsolated {
		return shared.NewInvalidTransitionError(s.Status.String(), StatusActive.String())
	}
	s.Status = StatusActive
	s.IncrementVersion()
	s.AddDomainEvent(NewReactivatedEvent(s))
	return nil
}

// Terminate permanently ends the subscription. Allowed from any
// non-terminal state.
func (s *Subscription) Terminate() error {
	if s.Status == StatusTerminated {
		return shared.NewInvalidTransitionError(s.Status.String(), StatusTerminated.String())
	}
	s.Status = StatusTerminated
	s.IncrementVersion()
	s.AddDomainEvent(NewTerminatedEvent(s))
	return nil
}

// AnchorDay returns the day-of-month the subscription is billed on,
// or 0 if it has never been activated.
func (s *Subscription) AnchorDay() int {
	if s.ActivationDate == nil {
		return 0
	}
	return s.ActivationDate.Day()
}
