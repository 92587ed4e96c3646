package pricing

import "math"

// Signal sizes a position from the gap between the model estimate and the
// traded price: zero inside a 10% band around the estimate, otherwise a
// contract count scaled by the estimate/price ratio, positive when the
// market trades below the estimate and negative above it.
func Signal(estimate, actual float64) int {
	threshold := estimate * 0.1
	const multiplier = 1

	if math.Abs(estimate-actual) < threshold {
		return 0
	}

	amount := int(math.Round(math.Abs(estimate/actual) * multiplier))
	if estimate < actual {
		return -amount
	}
	return amount
}
