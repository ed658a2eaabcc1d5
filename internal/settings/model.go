// Package settings stores per-(company, user, fiscal-year) preferences.
package settings

// Key identifies a settings record. FiscalYearID zero selects the legacy
// record keyed only by company and user; settings written before fiscal-year
// scoping live there and the two paths are deliberately kept apart.
type Key struct {
	CompanyID    int64
	UserID       int64
	FiscalYearID int64
}

// Legacy reports whether the key addresses the pre-fiscal-year record.
func (k Key) Legacy() bool {
	return k.FiscalYearID == 0
}

// Settings is one preference record.
type Settings struct {
	ID           int64  `json:"id"`
	CompanyID    int64  `json:"companyId"`
	UserID       int64  `json:"userId"`
	FiscalYearID *int64 `json:"fiscalYearId,omitempty"`

	RoundOffSales          bool `json:"roundOffSales"`
	RoundOffPurchase       bool `json:"roundOffPurchase"`
	RoundOffSalesReturn    bool `json:"roundOffSalesReturn"`
	RoundOffPurchaseReturn bool `json:"roundOffPurchaseReturn"`

	DisplayTransactions                  bool `json:"displayTransactions"`
	DisplayTransactionsForPurchase       bool `json:"displayTransactionsForPurchase"`
	DisplayTransactionsForSalesReturn    bool `json:"displayTransactionsForSalesReturn"`
	DisplayTransactionsForPurchaseReturn bool `json:"displayTransactionsForPurchaseReturn"`

	StoreManagement bool `json:"storeManagement"`

	// Extra is an open-ended value bag for preferences that have no
	// dedicated column yet.
	Extra map[string]any `json:"extra,omitempty"`
}

// Defaults returns the zero-value record for a key. Reads of absent records
// hand this back instead of erroring, and never create anything.
func Defaults(key Key) Settings {
	s := Settings{CompanyID: key.CompanyID, UserID: key.UserID}
	if key.FiscalYearID != 0 {
		fy := key.FiscalYearID
		s.FiscalYearID = &fy
	}
	return s
}

// Patch carries the fields of an upsert. Nil pointers leave the stored value
// untouched; on first write unset flags default to false.
type Patch struct {
	RoundOffSales          *bool `json:"roundOffSales,omitempty"`
	RoundOffPurchase       *bool `json:"roundOffPurchase,omitempty"`
	RoundOffSalesReturn    *bool `json:"roundOffSalesReturn,omitempty"`
	RoundOffPurchaseReturn *bool `json:"roundOffPurchaseReturn,omitempty"`

	DisplayTransactions                  *bool `json:"displayTransactions,omitempty"`
	DisplayTransactionsForPurchase       *bool `json:"displayTransactionsForPurchase,omitempty"`
	DisplayTransactionsForSalesReturn    *bool `json:"displayTransactionsForSalesReturn,omitempty"`
	DisplayTransactionsForPurchaseReturn *bool `json:"displayTransactionsForPurchaseReturn,omitempty"`

	StoreManagement *bool `json:"storeManagement,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// IsEmpty reports whether the patch carries nothing to write.
func (p Patch) IsEmpty() bool {
	return p.RoundOffSales == nil &&
		p.RoundOffPurchase == nil &&
		p.RoundOffSalesReturn == nil &&
		p.RoundOffPurchaseReturn == nil &&
		p.DisplayTransactions == nil &&
		p.DisplayTransactionsForPurchase == nil &&
		p.DisplayTransactionsForSalesReturn == nil &&
		p.DisplayTransactionsForPurchaseReturn == nil &&
		p.StoreManagement == nil &&
		len(p.Extra) == 0
}

func (p Patch) apply(s *Settings) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&s.RoundOffSales, p.RoundOffSales)
	setBool(&s.RoundOffPurchase, p.RoundOffPurchase)
	setBool(&s.RoundOffSalesReturn, p.RoundOffSalesReturn)
	setBool(&s.RoundOffPurchaseReturn, p.RoundOffPurchaseReturn)
	setBool(&s.DisplayTransactions, p.DisplayTransactions)
	setBool(&s.DisplayTransactionsForPurchase, p.DisplayTransactionsForPurchase)
	setBool(&s.DisplayTransactionsForSalesReturn, p.DisplayTransactionsForSalesReturn)
	setBool(&s.DisplayTransactionsForPurchaseReturn, p.DisplayTransactionsForPurchaseReturn)
	setBool(&s.StoreManagement, p.StoreManagement)
	if len(p.Extra) > 0 {
		if s.Extra == nil {
			s.Extra = make(map[string]any, len(p.Extra))
		}
		for k, v := range p.Extra {
			s.Extra[k] = v
		}
	}
}
