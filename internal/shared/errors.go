package shared

import "errors"

var (
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation on a name or settings key.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInUse indicates an entity cannot be deleted because others reference it.
	ErrInUse = errors.New("record is in use")
	// ErrValidation indicates missing or malformed required fields.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates a cross-tenant or role violation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or expired login session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTradeType indicates the company's trade type does not permit the route group.
	ErrTradeType = errors.New("company trade type does not allow this operation")
	// ErrNoFiscalYear is returned when neither session nor company carries a fiscal year.
	// The exact text is part of the API contract; clients match on it to redirect
	// into the fiscal-year selection flow.
	ErrNoFiscalYear = errors.New("No fiscal year found in session or company.")
	// ErrNoCompany is returned when the session has no selected company.
	ErrNoCompany = errors.New("No company selected in session.")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
