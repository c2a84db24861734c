// Package bignum implements arbitrary precision arithmetic for integers and reals.
package bignum

import (
	"math/big"
)

// Product returns prod(moduli) as a *big.Int.
// The product of an empty slice is 1.
func Product(moduli []uint64) (y *big.Int) {
	y = big.NewInt(1)
	tmp := new(big.Int)
	for _, q := range moduli {
		y.Mul(y, tmp.SetUint64(q))
	}
	return
}
