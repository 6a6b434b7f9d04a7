package live

import "fmt"

// OrderChannel is the pub/sub channel carrying one order's status updates.
func OrderChannel(orderID string) string {
	return fmt.Sprintf("snacket:orders:updates:%s", orderID)
}
