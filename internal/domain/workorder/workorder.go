package workorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/ispnet/backend/internal/domain/shared"
)

// WorkOrderType classifies field work
type WorkOrderType string

const (
	TypeNewInstallation WorkOrderType = "NEW_INSTALLATION"
	TypeRepair          WorkOrderType = "REPAIR"
	TypeDismantle       WorkOrderType = "DISMANTLE"
)

func (t WorkOrderType) IsValid() bool {
	switch t {
	case TypeNewInstallation, TypeRepair, TypeDismantle:
		return true
	}
	return false
}

// WorkOrderStatus is the field work lifecycle
type WorkOrderStatus string

const (
	StatusDraft      WorkOrderStatus = "DRAFT"
	StatusAssigned   WorkOrderStatus = "ASSIGNED"
	StatusInProgress WorkOrderStatus = "IN_PROGRESS"
	StatusCompleted  WorkOrderStatus = "COMPLETED"
	StatusFailed     WorkOrderStatus = "FAILED"
)

func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusAssigned, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s WorkOrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// WorkOrder is a unit of field work tied to a subscription, created as a
// DRAFT and picked up by dispatch.
type WorkOrder struct {
	shared.BaseAggregateRoot
	SubscriptionID uuid.UUID
	Type           WorkOrderType
	Status         WorkOrderStatus
	ScheduledAt    time.Time
	Notes          string
	TechnicianID   *uuid.UUID
	CompletedAt    *time.Time
}

// NewWorkOrder creates a DRAFT work order scheduled at the given time.
func NewWorkOrder(subscriptionID uuid.UUID, woType WorkOrderType, scheduledAt time.Time, notes string) (*WorkOrder, error) {
	if subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "subscription id is required")
	}
	if !woType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid work order type: "+string(woType))
	}
	return &WorkOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SubscriptionID:    subscriptionID,
		Type:              woType,
		Status:            StatusDraft,
		ScheduledAt:       scheduledAt,
		Notes:             notes,
	}, nil
}

// Assign hands the order to a technician.
func (w *WorkOrder) Assign(technicianID uuid.UUID) error {
	if w.Status != StatusDraft {
		return shared.NewInvalidTransitionError(string(w.Status), string(StatusAssigned))
	}
	if technicianID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "technician id is required")
	}
	w.TechnicianID = &technicianID
	w.Status = StatusAssigned
	w.IncrementVersion()
	return nil
}

// Start marks the work as underway.
func (w *WorkOrder) Start() error {
	if w.Status != StatusAssigned {
		return shared.NewInvalidTransitionError(string(w.Status), string(StatusInProgress))
	}
	w.Status = StatusInProgress
	w.IncrementVersion()
	return nil
}

// Complete closes the order successfully.
func (w *WorkOrder) Complete(now time.Time, notes string) error {
	if w.Status != StatusInProgress {
		return shared.NewInvalidTransitionError(string(w.Status), string(StatusCompleted))
	}
	w.Status = StatusCompleted
	w.CompletedAt = &now
	if notes != "" {
		w.Notes = notes
	}
	w.IncrementVersion()
	return nil
}

// Fail closes the order unsuccessfully, keeping the reason in the notes.
func (w *WorkOrder) Fail(now time.Time, reason string) error {
	if w.Status.IsTerminal() {
		return shared.NewInvalidTransitionError(string(w.Status), string(StatusFailed))
	}
	w.Status = StatusFailed
	w.CompletedAt = &now
	w.Notes = reason
	w.IncrementVersion()
	return nil
}
