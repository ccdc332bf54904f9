package appctx

import (
	"context"
)

type contextKey string

const DeliveryIDContextKey contextKey = "delivery_id"

// SetDeliveryID attaches the delivery ID used to correlate logs and outbound requests
func SetDeliveryID(ctx context.Context, deliveryID string) context.Context {
	return context.WithValue(ctx, DeliveryIDContextKey, deliveryID)
}

// GetDeliveryID extracts the delivery ID from the context
func GetDeliveryID(ctx context.Context) (string, bool) {
	deliveryID, ok := ctx.Value(DeliveryIDContextKey).(string)
	return deliveryID, ok && deliveryID != ""
}
