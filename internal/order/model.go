package order

import (
	"encoding/json"
	"time"
)

// MerchantTxnPrefix joins the internal order id with the gateway-side
// transaction id: "<prefix><orderID>".
const MerchantTxnPrefix = "SNCT_"

type Status string

const (
	// StatusAwaitingPayment is the sole initial state for online orders.
	StatusAwaitingPayment Status = "awaiting_payment"
	// StatusPending means payment settled (or not needed); awaiting vendor action.
	StatusPending       Status = "pending"
	StatusAccepted      Status = "accepted"
	StatusPreparing     Status = "preparing"
	StatusReady         Status = "ready"
	StatusCompleted     Status = "completed"
	StatusDeclined      Status = "declined"
	StatusPaymentFailed Status = "payment_failed"
)

// paidStatuses are the states reachable only after a settled payment (or a
// zero-total/COD order). The tracker treats all of them as success.
var paidStatuses = map[Status]bool{
	StatusPending:   true,
	StatusAccepted:  true,
	StatusPreparing: true,
	StatusReady:     true,
	StatusCompleted: true,
}

// Paid reports whether the status sits on the settled-payment chain.
func (s Status) Paid() bool {
	return paidStatuses[s]
}

type Method string

const (
	MethodOnline Method = "online"
	MethodCOD    Method = "cod"
)

// ArrivalASAP is the sentinel arrival time meaning "as soon as possible".
const ArrivalASAP = "ASAP"

// Item is one cart line with its server-resolved unit price in rupees.
type Item struct {
	ItemID    string   `json:"itemId"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Size      string   `json:"size,omitempty"`
	Addons    []string `json:"addons,omitempty"`
	UnitPrice int      `json:"unitPrice"`
}

type Order struct {
	ID           string
	UserID       string
	RestaurantID string
	Items        []Item

	// Monetary fields in whole rupees. Total = max(0, Subtotal-Discount-PointsValue).
	Subtotal       int
	Discount       int
	PointsRedeemed int
	PointsValue    int
	Total          int

	CouponCode            *string
	PaymentMethod         Method
	MerchantTransactionID *string
	PaymentURL            *string
	Status                Status
	PaymentDetails        json.RawMessage
	ArrivalTime           string
	CustomerName          string
	CustomerPhone         string
	CreatedAt             time.Time
	HasReview             bool
}

// TotalPaise is the chargeable amount in minor currency units, as the
// gateway expects it.
func (o *Order) TotalPaise() int64 {
	return int64(o.Total) * 100
}
