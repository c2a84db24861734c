// Package ring implements the modular arithmetic of the cyclotomic rings Z[X]/(Phi_m(X)):
// primality, factorization, multiplicative orders, NTT-friendly prime generation and
// the structure of (Z/mZ)^* / <p>.
package ring

import (
	"fmt"
	"math/bits"
)

// MulMod returns x * y mod q. Inputs must be reduced modulo q.
func MulMod(x, y, q uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	_, rem := bits.Div64(hi, lo, q)
	return rem
}

// ModExp return y = x^e mod q.
func ModExp(x, e, q uint64) (y uint64) {

	if q == 1 {
		return 0
	}

	x %= q
	y = 1

	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			y = MulMod(y, x, q)
		}
		x = MulMod(x, x, q)
	}

	return
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Factor is a prime factor and its multiplicity.
type Factor struct {
	Prime    uint64
	Exponent int
}

// Factorize returns the prime factorization of n by trial division.
// Factors are sorted in increasing order. Factorize(0) and Factorize(1)
// return an empty list.
func Factorize(n uint64) (factors []Factor) {

	if n < 2 {
		return
	}

	for _, p := range []uint64{2, 3} {
		if n%p == 0 {
			f := Factor{Prime: p}
			for n%p == 0 {
				n /= p
				f.Exponent++
			}
			factors = append(factors, f)
		}
	}

	// 6k +/- 1 wheel
	for p := uint64(5); p <= n/p; p += 6 {
		for _, q := range []uint64{p, p + 2} {
			if n%q == 0 {
				f := Factor{Prime: q}
				for n%q == 0 {
					n /= q
					f.Exponent++
				}
				factors = append(factors, f)
			}
		}
	}

	if n > 1 {
		factors = append(factors, Factor{Prime: n, Exponent: 1})
	}

	return
}

// Totient returns Euler's totient phi(n).
func Totient(n uint64) (phi uint64) {

	if n == 0 {
		return 0
	}

	phi = n
	for _, f := range Factorize(n) {
		phi = phi / f.Prime * (f.Prime - 1)
	}

	return
}

// MultiplicativeOrder returns the smallest k > 0 such that a^k = 1 mod m.
// It returns an error if a is not invertible modulo m.
func MultiplicativeOrder(a, m uint64) (k uint64, err error) {

	if m < 2 {
		return 0, fmt.Errorf("invalid modulus: m=%d < 2", m)
	}

	a %= m

	if GCD(a, m) != 1 {
		return 0, fmt.Errorf("%d is not invertible modulo %d", a, m)
	}

	// The order divides phi(m): strip prime factors of phi(m)
	// as long as a^{k/f} = 1 mod m.
	k = Totient(m)
	for _, f := range Factorize(k) {
		for i := 0; i < f.Exponent; i++ {
			if ModExp(a, k/f.Prime, m) != 1 {
				break
			}
			k /= f.Prime
		}
	}

	return k, nil
}

// PairwiseCoprime returns true if gcd(v[i], v[j]) = 1 for all i != j.
func PairwiseCoprime(v []uint64) bool {
	for i := range v {
		for j := i + 1; j < len(v); j++ {
			if GCD(v[i], v[j]) != 1 {
				return false
			}
		}
	}
	return true
}
