package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/merobill/merobill/internal/shared"
)

func TestErrorMapsSentinels(t *testing.T) {
	cases := map[int]error{
		http.StatusNotFound:   fmt.Errorf("unit: %w", shared.ErrNotFound),
		http.StatusConflict:   fmt.Errorf("name taken: %w", shared.ErrDuplicate),
		http.StatusBadRequest: fmt.Errorf("quantity: %w", shared.ErrValidation),
		http.StatusForbidden:  shared.ErrTradeType,
	}
	for status, err := range cases {
		rec := httptest.NewRecorder()
		Error(rec, err)
		assert.Equal(t, status, rec.Code, err.Error())
	}
}

func TestErrorHidesDetailByDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: relation purchase_vouchers does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error.")
	assert.NotContains(t, rec.Body.String(), "purchase_vouchers")
}

func TestErrorExposesDetailInDevelopment(t *testing.T) {
	ExposeErrorDetail(true)
	defer ExposeErrorDetail(false)

	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: relation purchase_vouchers does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "purchase_vouchers")
}
