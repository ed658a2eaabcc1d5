package compositions

// Composition is a named ingredient items can be tagged with.
type Composition struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"companyId"`
	Name      string `json:"name"`
}
