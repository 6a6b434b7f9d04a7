package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"snacket-be/internal/logger"
	"snacket-be/internal/signature"
	"snacket-be/internal/utils"

	"go.uber.org/zap"
)

const payPath = "/pg/v1/pay"

// orderIDPlaceholder in the configured redirect URL template is replaced with
// the internal order id, so the client lands back on its own tracking page.
const orderIDPlaceholder = "{orderId}"

type Config struct {
	BaseURL    string
	MerchantID string
	SaltKey    string
	SaltIndex  string
	// RedirectURL is a template containing orderIDPlaceholder.
	RedirectURL string
	CallbackURL string
}

type phonePeGateway struct {
	cfg        Config
	httpClient *http.Client
}

func NewPhonePeGateway(cfg Config) Gateway {
	if cfg.MerchantID == "" || cfg.SaltKey == "" {
		logger.L().Warn("payment gateway credentials are empty")
	}

	return &phonePeGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *phonePeGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("merchant_transaction_id", req.MerchantTransactionID),
		zap.Int64("amount_paise", req.AmountPaise),
	)

	payload := payRequest{
		MerchantID:            g.cfg.MerchantID,
		MerchantTransactionID: req.MerchantTransactionID,
		MerchantUserID:        req.UserID,
		Amount:                req.AmountPaise,
		RedirectURL:           strings.ReplaceAll(g.cfg.RedirectURL, orderIDPlaceholder, req.OrderID),
		RedirectMode:          "REDIRECT",
		CallbackURL:           g.cfg.CallbackURL,
		MobileNumber:          utils.NormalizePhoneIN(req.MobileNumber),
		PaymentInstrument:     paymentInstrument{Type: "PAY_PAGE"},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal pay request", zap.Error(err))
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(jsonBody)
	xVerify := signature.Seal([]byte(encoded+payPath), g.cfg.SaltKey, g.cfg.SaltIndex)

	envelope, err := json.Marshal(payEnvelope{Request: encoded})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+payPath, bytes.NewBuffer(envelope))
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return nil, err
	}

	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", xVerify)

	log.Info("sending pay request to gateway")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("gateway request failed", zap.Error(err))
		return nil, &InitiationError{Message: err.Error()}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read gateway response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var res payResponse
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("failed decoding gateway response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, &InitiationError{Message: fmt.Sprintf("unreadable gateway response (http %d)", resp.StatusCode)}
	}

	if !res.Success {
		log.Error("gateway rejected pay request",
			zap.Int("status", resp.StatusCode),
			zap.String("code", res.Code),
			zap.String("message", res.Message),
		)
		return nil, &InitiationError{Code: res.Code, Message: res.Message}
	}

	redirectURL := res.Data.InstrumentResponse.RedirectInfo.URL
	if redirectURL == "" {
		log.Error("gateway response missing redirect url", zap.ByteString("response", bodyBytes))
		return nil, &InitiationError{Code: res.Code, Message: "gateway returned no redirect url"}
	}

	log.Info("gateway transaction created", zap.String("code", res.Code))

	return &InitiateResponse{RedirectURL: redirectURL}, nil
}

// VerifyCallback checks the x-verify header the gateway sends with its
// server-to-server notification. The digest covers the raw base64 response
// payload plus the configured salt.
func (g *phonePeGateway) VerifyCallback(payload []byte, header string) bool {
	return signature.Verify(payload, g.cfg.SaltKey, g.cfg.SaltIndex, header)
}
