package payment

import (
	"context"
	"database/sql"
	"encoding/json"
)

// CallbackLedger records every inbound gateway callback so redeliveries of an
// already-processed payload can be acknowledged without touching the order row
// again.
type CallbackLedger interface {
	// RecordCallback stores one callback keyed by (transaction id, payload
	// digest). A redelivery returns the existing row's id and reports
	// alreadyProcessed=true only when that earlier delivery was fully
	// processed; a retry after a failed attempt must be replayed, not
	// swallowed.
	RecordCallback(
		ctx context.Context,
		merchantTransactionID string,
		payloadDigest string,
		payload json.RawMessage,
		signatureValid bool,
	) (ledgerID int64, alreadyProcessed bool, err error)

	MarkCallbackProcessed(ctx context.Context, ledgerID int64) error
	MarkCallbackFailed(ctx context.Context, ledgerID int64, reason string) error
}

type ledger struct {
	db *sql.DB
}

func NewCallbackLedger(db *sql.DB) CallbackLedger {
	return &ledger{db: db}
}

func (l *ledger) RecordCallback(
	ctx context.Context,
	merchantTransactionID string,
	payloadDigest string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	// The conflict arm updates received_at so RETURNING always yields the
	// row; processed_at tells a settled delivery apart from a failed one.
	const q = `
	INSERT INTO payment_callbacks (
		merchant_transaction_id,
		payload_digest,
		payload,
		signature_valid
	)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (merchant_transaction_id, payload_digest)
	DO UPDATE SET received_at = now()
	RETURNING id, processed_at IS NOT NULL;
	`

	var (
		id        int64
		processed bool
	)
	err := l.db.QueryRowContext(ctx, q,
		merchantTransactionID,
		payloadDigest,
		payload,
		signatureValid,
	).Scan(&id, &processed)
	if err != nil {
		return 0, false, err
	}

	return id, processed, nil
}

func (l *ledger) MarkCallbackProcessed(ctx context.Context, ledgerID int64) error {
	const q = `
	UPDATE payment_callbacks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := l.db.ExecContext(ctx, q, ledgerID)
	return err
}

func (l *ledger) MarkCallbackFailed(ctx context.Context, ledgerID int64, reason string) error {
	const q = `
	UPDATE payment_callbacks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := l.db.ExecContext(ctx, q, ledgerID, reason)
	return err
}
