package units

import "github.com/shopspring/decimal"

// MainUnit is a base unit of measure (e.g. piece, kilogram).
type MainUnit struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
}

// Unit is a sellable unit, optionally derived from a main unit by a
// conversion factor (e.g. carton = 12 pieces).
type Unit struct {
	ID         int64           `json:"id"`
	CompanyID  int64           `json:"companyId"`
	Name       string          `json:"name"`
	MainUnitID *int64          `json:"mainUnitId,omitempty"`
	Factor     decimal.Decimal `json:"factor"`
}
