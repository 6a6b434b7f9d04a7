package payment

import "context"

// Gateway is the payment provider contract. Persistence of the resulting
// transaction reference is the caller's responsibility.
type Gateway interface {
	// Initiate creates a hosted pay-page transaction and returns the URL the
	// user must be redirected to. It never returns an empty URL without error.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)

	// VerifyCallback checks the integrity header of an inbound
	// server-to-server callback against the raw base64 payload.
	VerifyCallback(payload []byte, header string) bool
}

// Gateway protocol status codes. The success code is matched here and nowhere
// else; callers go through IsSuccess.
const (
	CodePaymentSuccess  = "PAYMENT_SUCCESS"
	CodePaymentError    = "PAYMENT_ERROR"
	CodePaymentDeclined = "PAYMENT_DECLINED"
	CodePaymentPending  = "PAYMENT_PENDING"
)

// IsSuccess reports whether a gateway status code denotes a captured payment.
func IsSuccess(code string) bool {
	return code == CodePaymentSuccess
}

// InitiationError carries the gateway's own failure detail so operators can
// tell gateway-side failures apart from internal bugs.
type InitiationError struct {
	Code    string
	Message string
}

func (e *InitiationError) Error() string {
	if e.Message == "" {
		return "payment initiation failed"
	}
	return "payment initiation failed: " + e.Message
}
