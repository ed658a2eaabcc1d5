// Package accounts manages party ledger accounts (suppliers and customers)
// referenced by vouchers and transaction history.
package accounts

// Account types.
const (
	TypeSupplier = "supplier"
	TypeCustomer = "customer"
	TypeBoth     = "both"
)

type Account struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"-"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	PAN         string `json:"pan,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func validType(t string) bool {
	switch t {
	case TypeSupplier, TypeCustomer, TypeBoth:
		return true
	}
	return false
}
