package purchases

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merobill/merobill/internal/shared"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "purchase_vouchers_company_id_fiscal_year_id_class_voucher_number_key"}
}

func TestRetryVoucherCollisionReplaysUntilClean(t *testing.T) {
	calls := 0
	err := retryVoucherCollision(voucherAttempts, func() error {
		calls++
		if calls < 3 {
			return uniqueViolation()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryVoucherCollisionStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := retryVoucherCollision(voucherAttempts, func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryVoucherCollisionGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := retryVoucherCollision(voucherAttempts, func() error {
		calls++
		return uniqueViolation()
	})
	require.Error(t, err)
	assert.Equal(t, voucherAttempts, calls)
	assert.True(t, shared.IsUniqueViolation(err))
}
