package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// SubscriptionModel is the persistence model for subscriptions. The
// activation date doubles as the billing anchor, so the billing query
// filters on its day-of-month.
type SubscriptionModel struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CustomerID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	PackageID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	ServiceNumber       string              `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status              subscription.Status `gorm:"type:varchar(20);not null;index:idx_subscriptions_status_activation,priority:1"`
	InstallationAddress string              `gorm:"type:text"`
	GeoLat              float64             `gorm:"type:double precision"`
	GeoLong             float64             `gorm:"type:double precision"`
	ActivationDate      *time.Time          `gorm:"index:idx_subscriptions_status_activation,priority:2"`
	ContractEndDate     *time.Time
	Version             int       `gorm:"not null;default:0"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *subscription.Subscription {
	return &subscription.Subscription{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CustomerID:          m.CustomerID,
		PackageID:           m.PackageID,
		ServiceNumber:       m.ServiceNumber,
		Status:              m.Status,
		InstallationAddress: m.InstallationAddress,
		GeoLat:              m.GeoLat,
		GeoLong:             m.GeoLong,
		ActivationDate:      m.ActivationDate,
		ContractEndDate:     m.ContractEndDate,
	}
}

// FromDomain populates the persistence model from a domain Subscription
func (m *SubscriptionModel) FromDomain(s *subscription.Subscription) {
	m.ID = s.ID
	m.CustomerID = s.CustomerID
	m.PackageID = s.PackageID
	m.ServiceNumber = s.ServiceNumber
	m.Status = s.Status
	m.InstallationAddress = s.InstallationAddress
	m.GeoLat = s.GeoLat
	m.GeoLong = s.GeoLong
	m.ActivationDate = s.ActivationDate
	m.ContractEndDate = s.ContractEndDate
	m.Version = s.Version
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// SubscriptionModelFromDomain creates a new persistence model from a domain Subscription
func SubscriptionModelFromDomain(s *subscription.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{}
	m.FromDomain(s)
	return m
}
