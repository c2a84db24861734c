package bignum

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

// Log2 returns log2(x) computed with prec bits of precision.
// x must be strictly positive.
func Log2(x *big.Int, prec uint) float64 {

	if x.Sign() <= 0 {
		panic("cannot Log2: x must be strictly positive")
	}

	// Exact for powers of two and avoids bigfloat on the fast path.
	if x.BitLen() > 0 && new(big.Int).And(x, new(big.Int).Sub(x, big.NewInt(1))).Sign() == 0 {
		return float64(x.BitLen() - 1)
	}

	xf := new(big.Float).SetPrec(prec).SetInt(x)
	two := new(big.Float).SetPrec(prec).SetInt64(2)

	y, _ := new(big.Float).SetPrec(prec).Quo(bigfloat.Log(xf), bigfloat.Log(two)).Float64()

	return y
}
