// Package fiscal resolves the active fiscal year for a session.
package fiscal

import (
	"time"

	"github.com/merobill/merobill/internal/shared"
)

// Year is a company-configured accounting period.
type Year struct {
	ID         int64     `json:"id"`
	CompanyID  int64     `json:"companyId"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	DateFormat string    `json:"dateFormat"`
	IsActive   bool      `json:"isActive"`
}

// Snapshot converts the year into the denormalized form cached on sessions.
func (y Year) Snapshot() *shared.FiscalSnapshot {
	return &shared.FiscalSnapshot{
		ID:         y.ID,
		Name:       y.Name,
		StartDate:  y.StartDate,
		EndDate:    y.EndDate,
		DateFormat: y.DateFormat,
		IsActive:   y.IsActive,
	}
}
