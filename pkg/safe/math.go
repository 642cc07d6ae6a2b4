// Package safe provides overflow-checked int64 arithmetic for the
// hotpath. Overflow in position or price math is a corruption, not a
// recoverable condition, so these panic.
package safe

import (
	"fmt"
	"math"
)

// SafeAdd returns a+b, panicking on int64 overflow.
func SafeAdd(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic(fmt.Sprintf("OVERFLOW_ADD: %d + %d", a, b))
	}
	return a + b
}

// SafeSub returns a-b, panicking on int64 overflow.
func SafeSub(a, b int64) int64 {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		panic(fmt.Sprintf("OVERFLOW_SUB: %d - %d", a, b))
	}
	return a - b
}

// SafeMul returns a*b, panicking on int64 overflow.
func SafeMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	r := a * b
	if r/b != a {
		panic(fmt.Sprintf("OVERFLOW_MUL: %d * %d", a, b))
	}
	return r
}
