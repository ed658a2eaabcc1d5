package httpx

import (
	"errors"
	"net/http"

	"github.com/merobill/merobill/internal/shared"
)

// exposeDetail lets unclassified errors carry their message instead of the
// generic body. Production keeps it off.
var exposeDetail bool

// ExposeErrorDetail toggles detail in 500 responses. Wired once at startup
// from the environment config.
func ExposeErrorDetail(v bool) {
	exposeDetail = v
}

// Error maps a domain error to the envelope response taxonomy.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrInUse):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNoFiscalYear):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNoCompany):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrTradeType):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	default:
		msg := "Internal server error."
		if exposeDetail && err != nil {
			msg = err.Error()
		}
		Fail(w, http.StatusInternalServerError, msg)
	}
}
