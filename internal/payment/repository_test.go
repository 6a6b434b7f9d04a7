package payment

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackLedger_RecordCallback(t *testing.T) {
	payload := json.RawMessage(`{"code":"PAYMENT_SUCCESS"}`)

	t.Run("first delivery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ledger := NewCallbackLedger(db)

		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (merchant_transaction_id, payload_digest)")).
			WithArgs("SNCT_ord-1", "digest-1", []byte(payload), true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(7, false))

		id, processed, err := ledger.RecordCallback(context.Background(), "SNCT_ord-1", "digest-1", payload, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.False(t, processed)
	})

	t.Run("redelivery of a processed callback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ledger := NewCallbackLedger(db)

		mock.ExpectQuery(regexp.QuoteMeta("RETURNING id, processed_at IS NOT NULL")).
			WithArgs("SNCT_ord-1", "digest-1", []byte(payload), true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(7, true))

		id, processed, err := ledger.RecordCallback(context.Background(), "SNCT_ord-1", "digest-1", payload, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.True(t, processed)
	})

	t.Run("redelivery of a failed callback stays replayable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ledger := NewCallbackLedger(db)

		// the failed row exists but carries no processed_at
		mock.ExpectQuery(regexp.QuoteMeta("RETURNING id, processed_at IS NOT NULL")).
			WithArgs("SNCT_ord-1", "digest-1", []byte(payload), true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(7, false))

		_, processed, err := ledger.RecordCallback(context.Background(), "SNCT_ord-1", "digest-1", payload, true)
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestCallbackLedger_Marks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewCallbackLedger(db)

	mock.ExpectExec(regexp.QuoteMeta("SET processed_at = now()")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, ledger.MarkCallbackProcessed(context.Background(), 7))

	mock.ExpectExec(regexp.QuoteMeta("SET process_error = $2")).
		WithArgs(int64(7), "order not found").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, ledger.MarkCallbackFailed(context.Background(), 7, "order not found"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
