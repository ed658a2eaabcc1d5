package companies

import (
	"net/http"

	"github.com/merobill/merobill/internal/platform/httpx"
	"github.com/merobill/merobill/internal/shared"
)

// TradeGate produces middleware restricting route groups to companies of a
// given trade type. A mismatch is an authorization failure, not a validation
// one.
type TradeGate struct {
	service *Service
}

func NewTradeGate(service *Service) *TradeGate {
	return &TradeGate{service: service}
}

// Require rejects requests whose selected company is not of tradeType.
func (g *TradeGate) Require(tradeType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.Company() == 0 {
				httpx.Fail(w, http.StatusBadRequest, shared.ErrNoCompany.Error())
				return
			}
			company, err := g.service.Get(r.Context(), sess.Company())
			if err != nil {
				httpx.Error(w, err)
				return
			}
			if company.TradeType != tradeType {
				httpx.Fail(w, http.StatusForbidden, shared.ErrTradeType.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
