package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/workorder"
)

// WorkOrderModel is the persistence model for field work orders
type WorkOrderModel struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Type           workorder.WorkOrderType   `gorm:"type:varchar(32);not null"`
	Status         workorder.WorkOrderStatus `gorm:"type:varchar(32);not null;index"`
	ScheduledAt    time.Time                 `gorm:"not null"`
	Notes          string                    `gorm:"type:text"`
	TechnicianID   *uuid.UUID                `gorm:"type:uuid"`
	CompletedAt    *time.Time
	Version        int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder
func (m *WorkOrderModel) ToDomain() *workorder.WorkOrder {
	return &workorder.WorkOrder{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SubscriptionID: m.SubscriptionID,
		Type:           m.Type,
		Status:         m.Status,
		ScheduledAt:    m.ScheduledAt,
		Notes:          m.Notes,
		TechnicianID:   m.TechnicianID,
		CompletedAt:    m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain WorkOrder
func (m *WorkOrderModel) FromDomain(w *workorder.WorkOrder) {
	m.ID = w.ID
	m.SubscriptionID = w.SubscriptionID
	m.Type = w.Type
	m.Status = w.Status
	m.ScheduledAt = w.ScheduledAt
	m.Notes = w.Notes
	m.TechnicianID = w.TechnicianID
	m.CompletedAt = w.CompletedAt
	m.Version = w.Version
	m.CreatedAt = w.CreatedAt
	m.UpdatedAt = w.UpdatedAt
}

// WorkOrderModelFromDomain creates a new persistence model from a domain WorkOrder
func WorkOrderModelFromDomain(w *workorder.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{}
	m.FromDomain(w)
	return m
}
