package autodiff_test

import (
	"math"
	"testing"
)

// Check that a function panics.
func assertPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("The code did not panic")
		}
	}()
	f()
}

// Test whether two values are equal up to a relative tolerance.
func almostEqual(a, b float64) bool {
	const tol = 1.0e-06
	if b == 0 {
		return math.Abs(a) < tol
	}
	return math.Abs(a-b)/math.Abs(b) < tol
}
