package models

import "fmt"

type DeliveryStatus string

const (
	// DeliveryStatusDelivered means the webhook answered with HTTP 200
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	// DeliveryStatusRejected means the webhook answered with any other status
	DeliveryStatusRejected DeliveryStatus = "rejected"
	// DeliveryStatusFailed means no HTTP response was received
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// DeliveryResult is the outcome of a single webhook delivery attempt
type DeliveryResult struct {
	DeliveryID string
	Status     DeliveryStatus
	// StatusCode and Body are set for rejected deliveries
	StatusCode int
	Body       string
	// Err is set for failed deliveries
	Err error
}

func (r DeliveryResult) IsDelivered() bool {
	return r.Status == DeliveryStatusDelivered
}

func (r DeliveryResult) String() string {
	switch r.Status {
	case DeliveryStatusDelivered:
		return "delivered"
	case DeliveryStatusRejected:
		return fmt.Sprintf("rejected with status %d: %s", r.StatusCode, r.Body)
	case DeliveryStatusFailed:
		return fmt.Sprintf("failed: %v", r.Err)
	default:
		return string(r.Status)
	}
}
