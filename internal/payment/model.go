package payment

import "encoding/json"

type InitiateRequest struct {
	OrderID               string
	MerchantTransactionID string
	UserID                string
	MobileNumber          string
	// AmountPaise is the chargeable amount in minor currency units.
	AmountPaise int64
}

type InitiateResponse struct {
	RedirectURL string
}

// payRequest is the gateway wire payload, base64-encoded into the request envelope.
type payRequest struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MobileNumber          string            `json:"mobileNumber,omitempty"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type string `json:"type"`
}

type payEnvelope struct {
	Request string `json:"request"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		InstrumentResponse    struct {
			Type         string `json:"type"`
			RedirectInfo struct {
				URL    string `json:"url"`
				Method string `json:"method"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// CallbackEnvelope is the inbound callback body: {"response": "<base64 JSON>"}.
type CallbackEnvelope struct {
	Response string `json:"response"`
}

// CallbackPayload is the decoded callback content.
type CallbackPayload struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    CallbackData `json:"data"`
}

type CallbackData struct {
	MerchantID            string          `json:"merchantId"`
	MerchantTransactionID string          `json:"merchantTransactionId"`
	TransactionID         string          `json:"transactionId"`
	Amount                int64           `json:"amount"`
	State                 string          `json:"state"`
	ResponseCode          string          `json:"responseCode"`
	PaymentInstrument     json.RawMessage `json:"paymentInstrument"`
}
