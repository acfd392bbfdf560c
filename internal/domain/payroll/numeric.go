package payroll

import "math"

// safeDivide returns a/b, or 0 for a zero divisor or a non-finite
// quotient. Degenerate inputs (an empty schedule, a zero-day period)
// must quietly become zero pay, never NaN in someone's payslip.
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return sanitize(a / b)
}

// sanitize coerces NaN and ±Inf to 0.
func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
