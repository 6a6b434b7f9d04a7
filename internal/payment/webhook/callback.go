// Package webhook receives the payment gateway's asynchronous
// server-to-server callback and reconciles it with the matching order.
package webhook

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"snacket-be/internal/logger"
	"snacket-be/internal/order"
	"snacket-be/internal/payment"
	"snacket-be/internal/signature"

	"go.uber.org/zap"
)

// OrderReconciler is the slice of the order service the callback needs.
type OrderReconciler interface {
	ApplyPaymentResult(ctx context.Context, merchantTxnID string, success bool, details json.RawMessage) error
}

type Handler struct {
	Orders  OrderReconciler
	Gateway payment.Gateway
	Ledger  payment.CallbackLedger
}

func NewCallbackHandler(orders OrderReconciler, gateway payment.Gateway, ledger payment.CallbackLedger) *Handler {
	return &Handler{
		Orders:  orders,
		Gateway: gateway,
		Ledger:  ledger,
	}
}

// HandleCallback is the route handler for POST /payment/callback.
//
// The x-verify signature check is the sole authentication mechanism for this
// endpoint; the gateway delivers at-least-once, so everything past the
// signature must be idempotent.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var envelope payment.CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == "" {
		http.Error(w, "invalid callback body", http.StatusBadRequest)
		return
	}

	if !h.Gateway.VerifyCallback([]byte(envelope.Response), r.Header.Get("X-VERIFY")) {
		// Security event: reject, log, leave the order untouched.
		log.Warn("callback signature verification failed",
			zap.String("ip", r.RemoteAddr),
		)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Response)
	if err != nil {
		log.Error("callback payload is not valid base64", zap.Error(err))
		http.Error(w, "unprocessable callback", http.StatusInternalServerError)
		return
	}

	var cb payment.CallbackPayload
	if err := json.Unmarshal(decoded, &cb); err != nil {
		log.Error("callback payload is not valid JSON", zap.Error(err))
		http.Error(w, "unprocessable callback", http.StatusInternalServerError)
		return
	}

	mtid := cb.Data.MerchantTransactionID
	log = log.With(
		zap.String("merchant_transaction_id", mtid),
		zap.String("code", cb.Code),
	)

	ledgerID, alreadyProcessed, err := h.Ledger.RecordCallback(
		ctx, mtid, signature.Sign(decoded, ""), json.RawMessage(decoded), true,
	)
	if err != nil {
		log.Error("failed to record callback", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if alreadyProcessed {
		// This exact delivery was already applied end to end; acknowledge
		// without reprocessing. A redelivery after a failed attempt falls
		// through and is replayed against the idempotent transition.
		log.Info("duplicate callback delivery acknowledged")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
		return
	}

	err = h.Orders.ApplyPaymentResult(ctx, mtid, payment.IsSuccess(cb.Code), json.RawMessage(decoded))
	if errors.Is(err, order.ErrOrderNotFound) {
		// Gateway/merchant mismatch, or the order write had not committed
		// yet; logged for manual reconciliation.
		log.Warn("callback for unknown transaction")
		_ = h.Ledger.MarkCallbackFailed(ctx, ledgerID, "order not found")
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		// Non-200 makes the gateway retry; full context logged for manual
		// reconciliation if it never succeeds.
		log.Error("failed to apply payment result", zap.Error(err))
		_ = h.Ledger.MarkCallbackFailed(ctx, ledgerID, err.Error())
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	if err := h.Ledger.MarkCallbackProcessed(ctx, ledgerID); err != nil {
		log.Warn("failed to mark callback processed", zap.Error(err))
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
