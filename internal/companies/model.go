// Package companies manages tenants, their fiscal years and trade-type gating.
package companies

import "time"

// Trade types gate which route groups a company may use.
const (
	TradeTypeRetailer    = "retailer"
	TradeTypeWholesaler  = "wholesaler"
	TradeTypeDistributor = "distributor"
)

// Company is a tenant.
type Company struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	TradeType           string    `json:"tradeType"`
	Address             string    `json:"address"`
	Phone               string    `json:"phone"`
	PAN                 string    `json:"pan"`
	CurrentFiscalYearID *int64    `json:"currentFiscalYearId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Membership links a user to a company with a role.
type Membership struct {
	CompanyID int64  `json:"companyId"`
	UserID    int64  `json:"userId"`
	Role      string `json:"role"`
}
