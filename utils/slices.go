// Package utils implements generic helpers shared by the other packages.
package utils

import (
	"golang.org/x/exp/constraints"
)

// ConvertSlice returns a new slice whose elements are the elements of s
// converted to U. It does not check for overflow.
func ConvertSlice[U, T constraints.Integer](s []T) (r []U) {
	if s == nil {
		return nil
	}
	r = make([]U, len(s))
	for i := range s {
		r[i] = U(s[i])
	}
	return
}

// Abs returns |x|.
func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// IndexZero returns the index of the first zero element of s, or -1.
func IndexZero[T constraints.Integer](s []T) int {
	for i := range s {
		if s[i] == 0 {
			return i
		}
	}
	return -1
}

// Product returns prod(s) and false if the product overflows a uint64.
func Product[T constraints.Unsigned](s []T) (prod uint64, ok bool) {
	prod = 1
	for i := range s {
		x := uint64(s[i])
		if x != 0 && prod > ^uint64(0)/x {
			return 0, false
		}
		prod *= x
	}
	return prod, true
}
