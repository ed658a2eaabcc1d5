package items

import "github.com/shopspring/decimal"

// Item is a sellable/purchasable good.
type Item struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"companyId"`
	Name          string          `json:"name"`
	UnitID        *int64          `json:"unitId,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	Vatable       bool            `json:"vatable"`
	// CompositionIDs link the item to its compositions (e.g. generic drug
	// contents for pharma retailers).
	CompositionIDs []int64 `json:"compositionIds,omitempty"`
}
