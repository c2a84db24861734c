package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// MaxPrimeBits is the largest bit-size of the primes returned by a PrimesGenerator.
const MaxPrimeBits = 61

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers bellow 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// PrimesGenerator generates primes q = 1 mod NthRoot around 2^{LogQ}.
// Successive calls on the same generator never return the same prime twice.
// NthRoot can be any cyclotomic order, it does not need to be a power of two.
type PrimesGenerator struct {
	LogQ    int
	NthRoot uint64

	nextPrime, previousPrime uint64

	checkNextPrime, checkPreviousPrime bool
}

// NewPrimesGenerator instantiates a new PrimesGenerator for primes of
// approximately LogQ bits that are congruent to 1 modulo NthRoot.
func NewPrimesGenerator(LogQ int, NthRoot uint64) (*PrimesGenerator, error) {

	if LogQ < 2 || LogQ > MaxPrimeBits {
		return nil, fmt.Errorf("invalid LogQ=%d: must be between 2 and %d", LogQ, MaxPrimeBits)
	}

	if NthRoot == 0 {
		return nil, fmt.Errorf("invalid NthRoot: cannot be zero")
	}

	if uint64(bits.Len64(NthRoot)) >= uint64(LogQ) {
		return nil, fmt.Errorf("invalid LogQ=%d: must be larger than log2(NthRoot)=%d", LogQ, bits.Len64(NthRoot))
	}

	Qpow2 := uint64(1) << LogQ

	// Largest x <= 2^{LogQ} such that x = 1 mod NthRoot.
	anchor := Qpow2 - ((Qpow2 - 1) % NthRoot)

	return &PrimesGenerator{
		LogQ:               LogQ,
		NthRoot:            NthRoot,
		nextPrime:          anchor,
		previousPrime:      anchor + NthRoot,
		checkNextPrime:     true,
		checkPreviousPrime: true,
	}, nil
}

// NextUpstreamPrimes returns the next n primes above 2^{LogQ}.
func (g *PrimesGenerator) NextUpstreamPrimes(n int) (primes []uint64, err error) {

	primes = make([]uint64, 0, n)

	for len(primes) < n {

		if !g.checkNextPrime {
			return nil, fmt.Errorf("cannot NextUpstreamPrimes: exhausted primes of at most %d bits for NthRoot=%d", MaxPrimeBits, g.NthRoot)
		}

		if q, ok := g.stepUp(); ok {
			primes = append(primes, q)
		}
	}

	return
}

// NextDownstreamPrimes returns the next n primes below 2^{LogQ}.
func (g *PrimesGenerator) NextDownstreamPrimes(n int) (primes []uint64, err error) {

	primes = make([]uint64, 0, n)

	for len(primes) < n {

		if !g.checkPreviousPrime {
			return nil, fmt.Errorf("cannot NextDownstreamPrimes: exhausted primes smaller than 2^%d for NthRoot=%d", g.LogQ, g.NthRoot)
		}

		if q, ok := g.stepDown(); ok {
			primes = append(primes, q)
		}
	}

	return
}

// NextAlternatingPrimes returns the next n primes closest to 2^{LogQ},
// alternating between upward and downward.
func (g *PrimesGenerator) NextAlternatingPrimes(n int) (primes []uint64, err error) {

	primes = make([]uint64, 0, n)

	for len(primes) < n {

		if !(g.checkNextPrime || g.checkPreviousPrime) {
			return nil, fmt.Errorf("cannot NextAlternatingPrimes: cannot generate enough primes for LogQ=%d and NthRoot=%d", g.LogQ, g.NthRoot)
		}

		if g.checkNextPrime {
			if q, ok := g.stepUp(); ok {
				primes = append(primes, q)
				if len(primes) == n {
					return
				}
			}
		}

		if g.checkPreviousPrime {
			if q, ok := g.stepDown(); ok {
				primes = append(primes, q)
			}
		}
	}

	return
}

func (g *PrimesGenerator) stepUp() (q uint64, ok bool) {

	if bits.Len64(g.nextPrime+g.NthRoot) > MaxPrimeBits {
		g.checkNextPrime = false
		return
	}

	g.nextPrime += g.NthRoot

	return g.nextPrime, IsPrime(g.nextPrime)
}

func (g *PrimesGenerator) stepDown() (q uint64, ok bool) {

	if g.previousPrime <= g.NthRoot+1 {
		g.checkPreviousPrime = false
		return
	}

	g.previousPrime -= g.NthRoot

	return g.previousPrime, IsPrime(g.previousPrime)
}
