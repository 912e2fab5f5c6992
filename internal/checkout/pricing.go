package checkout

import (
	"fmt"
	"time"

	"backend/internal/models"
)

// DeliveryFee returns the flat fee in minor units; orders at or above the
// free-delivery threshold ship free (the boundary is inclusive).
func DeliveryFee(subtotalMinor, flatFeeMinor, freeThresholdMinor int64) int64 {
	if subtotalMinor >= freeThresholdMinor {
		return 0
	}
	return flatFeeMinor
}

// Subtotal sums the line totals of priced order items.
func Subtotal(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotalMinor
	}
	return total
}

// DateKey formats t as the YYYYMMDD key the order sequencer is scoped by.
func DateKey(t time.Time) string {
	return t.Format("20060102")
}

// FormatOrderNumber renders "ORD-YYYYMMDD-NNNNNN".
func FormatOrderNumber(dateKey string, seq int64) string {
	return fmt.Sprintf("ORD-%s-%06d", dateKey, seq)
}
