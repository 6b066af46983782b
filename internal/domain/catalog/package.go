package catalog

import (
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Package is an internet service plan. The billing core treats it as
// read-only pricing/contract reference data.
type Package struct {
	shared.BaseEntity
	Name                   string
	Description            string
	DownloadSpeedMbps      int
	UploadSpeedMbps        int
	MonthlyPrice           decimal.Decimal
	SLAPercentage          decimal.Decimal
	ContractDurationMonths int
	IsActive               bool
}

// ContractMonths returns the contract duration used when computing a
// subscription's contract end date. Packages without an explicit duration
// fall back to the one-month minimum.
func (p *Package) ContractMonths() int {
	if p.ContractDurationMonths < 1 {
		return 1
	}
	return p.ContractDurationMonths
}
