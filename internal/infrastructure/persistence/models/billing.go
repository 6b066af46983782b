package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
)

// InvoiceModel is the persistence model for invoices. Version backs the
// conditional update the payment reconciler issues, so it must round-trip
// exactly.
type InvoiceModel struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoices_subscription_period,priority:1"`
	InvoiceNumber  string                `gorm:"type:varchar(32);not null;uniqueIndex"`
	BillingPeriod  time.Time             `gorm:"not null;index:idx_invoices_subscription_period,priority:2"`
	DueDate        time.Time             `gorm:"not null;index:idx_invoices_status_due,priority:2"`
	AmountBasic    decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	AmountTax      decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	AmountDiscount decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	PenaltyFee     decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;index:idx_invoices_status_due,priority:1"`
	Version        int                   `gorm:"not null;default:0"`
	CreatedAt      time.Time             `gorm:"not null"`
	UpdatedAt      time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		SubscriptionID: m.SubscriptionID,
		InvoiceNumber:  m.InvoiceNumber,
		BillingPeriod:  m.BillingPeriod,
		DueDate:        m.DueDate,
		AmountBasic:    m.AmountBasic,
		AmountTax:      m.AmountTax,
		AmountDiscount: m.AmountDiscount,
		PenaltyFee:     m.PenaltyFee,
		TotalAmount:    m.TotalAmount,
		Status:         m.Status,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(i *billing.Invoice) {
	m.ID = i.ID
	m.SubscriptionID = i.SubscriptionID
	m.InvoiceNumber = i.InvoiceNumber
	m.BillingPeriod = i.BillingPeriod
	m.DueDate = i.DueDate
	m.AmountBasic = i.AmountBasic
	m.AmountTax = i.AmountTax
	m.AmountDiscount = i.AmountDiscount
	m.PenaltyFee = i.PenaltyFee
	m.TotalAmount = i.TotalAmount
	m.Status = i.Status
	m.Version = i.Version
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(i *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(i)
	return m
}

// PaymentModel is the persistence model for payment records
type PaymentModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method       string          `gorm:"type:varchar(50);not null"`
	GatewayTrxID string          `gorm:"type:varchar(100)"`
	PaidAt       time.Time       `gorm:"not null"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		InvoiceID:    m.InvoiceID,
		AmountPaid:   m.AmountPaid,
		Method:       m.Method,
		GatewayTrxID: m.GatewayTrxID,
		PaidAt:       m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.ID = p.ID
	m.InvoiceID = p.InvoiceID
	m.AmountPaid = p.AmountPaid
	m.Method = p.Method
	m.GatewayTrxID = p.GatewayTrxID
	m.PaidAt = p.PaidAt
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
