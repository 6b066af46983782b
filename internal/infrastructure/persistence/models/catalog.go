package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ispnet/backend/internal/domain/catalog"
	"github.com/ispnet/backend/internal/domain/shared"
)

// PackageModel is the persistence model for service packages
type PackageModel struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                   string          `gorm:"type:varchar(255);not null"`
	Description            string          `gorm:"type:text"`
	DownloadSpeedMbps      int             `gorm:"not null"`
	UploadSpeedMbps        int             `gorm:"not null"`
	MonthlyPrice           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SLAPercentage          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ContractDurationMonths int             `gorm:"not null;default:12"`
	IsActive               bool            `gorm:"not null;default:true;index"`
	CreatedAt              time.Time       `gorm:"not null"`
	UpdatedAt              time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PackageModel) TableName() string {
	return "packages"
}

// ToDomain converts the persistence model to a domain Package
func (m *PackageModel) ToDomain() *catalog.Package {
	return &catalog.Package{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Name:                   m.Name,
		Description:            m.Description,
		DownloadSpeedMbps:      m.DownloadSpeedMbps,
		UploadSpeedMbps:        m.UploadSpeedMbps,
		MonthlyPrice:           m.MonthlyPrice,
		SLAPercentage:          m.SLAPercentage,
		ContractDurationMonths: m.ContractDurationMonths,
		IsActive:               m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Package
func (m *PackageModel) FromDomain(p *catalog.Package) {
	m.ID = p.ID
	m.Name = p.Name
	m.Description = p.Description
	m.DownloadSpeedMbps = p.DownloadSpeedMbps
	m.UploadSpeedMbps = p.UploadSpeedMbps
	m.MonthlyPrice = p.MonthlyPrice
	m.SLAPercentage = p.SLAPercentage
	m.ContractDurationMonths = p.ContractDurationMonths
	m.IsActive = p.IsActive
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// PackageModelFromDomain creates a new persistence model from a domain Package
func PackageModelFromDomain(p *catalog.Package) *PackageModel {
	m := &PackageModel{}
	m.FromDomain(p)
	return m
}
