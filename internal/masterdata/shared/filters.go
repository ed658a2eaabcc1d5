// Package shared holds list filters common to master-data packages.
package shared

// ListFilters represents standard list filters. CompanyID is always set by
// the handler from the session; master data is tenant scoped.
type ListFilters struct {
	CompanyID int64
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortDir   string
}

// Normalize applies defaults in place.
func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 25
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
}

// Offset returns the SQL offset for the current page.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}
