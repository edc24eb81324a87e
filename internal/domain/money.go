package domain

import "math"

// RoundCents rounds a monetary amount to two decimal places, half away from
// zero. All fee and refund arithmetic goes through this so that
// cancellationFee + refundAmount always reproduces the order total exactly.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
