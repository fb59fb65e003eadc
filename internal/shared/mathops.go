package shared

// Divide rejects a literal zero divisor (0 and -0). Any other divisor follows
// IEEE-754, so tiny divisors may still yield ±Inf.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, &DivisionByZeroError{}
	}
	return a / b, nil
}
