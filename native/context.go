package native

import (
	"fmt"
	"math/bits"
	"strconv"

	"github.com/Pro7ech/hebind/ring"
	"go.uber.org/zap"
)

type contextState struct {
	builderState
	algebra       *ring.Algebra
	ctxtPrimes    []uint64
	specialPrimes []uint64
}

func invalid(param string, value any, format string, args ...any) error {
	return &InvalidParameterError{
		Param:  param,
		Value:  fmt.Sprint(value),
		Reason: fmt.Sprintf(format, args...),
	}
}

// construct checks the builder state and precomputes the context:
// slot structure and modulus chain.
func (e *Engine) construct(s *builderState) (cs *contextState, err error) {

	if s.m < 2 || s.m > 1<<32-1 {
		return nil, invalid("m", s.m, "must be in [2, 2^32)")
	}

	if !ring.IsPrime(s.p) {
		return nil, invalid("p", s.p, "must be prime")
	}

	if ring.GCD(s.p, s.m) != 1 {
		return nil, invalid("p", s.p, "must not divide m=%d", s.m)
	}

	if s.r == 0 {
		return nil, invalid("r", s.r, "must be at least 1")
	}

	if uint64(bits.Len64(s.p))*s.r > ring.MaxPrimeBits {
		return nil, invalid("r", s.r, "p^r exceeds 2^%d", ring.MaxPrimeBits)
	}

	if s.c == 0 {
		return nil, invalid("c", s.c, "must be at least 1")
	}

	if minBits := uint64(bits.Len64(s.m) + 2); s.bits < minBits {
		return nil, invalid("bits", s.bits, "must be at least %d for m=%d", minBits, s.m)
	}

	if s.bits > e.maxModulusBits {
		return nil, invalid("bits", s.bits, "must be at most %d", e.maxModulusBits)
	}

	if len(s.gens) != len(s.ords) {
		return nil, invalid("ords", formatInts(s.ords), "len(ords)=%d != len(gens)=%d", len(s.ords), len(s.gens))
	}

	for i := range s.gens {
		if s.gens[i] == 0 || s.gens[i] >= s.m {
			return nil, invalid("gens", formatInts(s.gens), "gens[%d] must be in [1, m)", i)
		}
		if s.ords[i] == 0 {
			return nil, invalid("ords", formatInts(s.ords), "ords[%d] cannot be zero", i)
		}
	}

	if len(s.gens) == 0 && s.m > e.maxDeriveM {
		return nil, invalid("gens", "[]", "must be provided when m > %d", e.maxDeriveM)
	}

	if s.mode != BootstrapNone && !s.bootstrappable {
		return nil, invalid("bootstrap", s.mode, "%s bootstrapping requires a bootstrappable context", s.mode)
	}

	if s.bootstrappable {

		if len(s.mvec) == 0 {
			return nil, invalid("mvec", "[]", "bootstrapping requires the factorization mvec")
		}

		for i := range s.mvec {
			if s.mvec[i] < 2 {
				return nil, invalid("mvec", formatInts(s.mvec), "mvec[%d] must be at least 2", i)
			}
		}

		if !ring.PairwiseCoprime(s.mvec) {
			return nil, invalid("mvec", formatInts(s.mvec), "factors must be pairwise coprime")
		}
	}

	cs = &contextState{builderState: *s}

	if cs.algebra, err = ring.NewAlgebra(s.m, s.p, s.gens, s.ords, e.maxDeriveM); err != nil {
		return nil, invalid("ords", formatInts(s.ords), "%s", err)
	}

	if cs.ctxtPrimes, cs.specialPrimes, err = e.genModulusChain(s); err != nil {
		return nil, err
	}

	e.logger.Debug("context constructed",
		zap.Uint64("m", s.m),
		zap.Uint64("p", s.p),
		zap.Uint64("phi(m)", cs.algebra.PhiM),
		zap.Uint64("nslots", cs.algebra.NSlots),
		zap.Int("ctxtPrimes", len(cs.ctxtPrimes)),
		zap.Int("specialPrimes", len(cs.specialPrimes)))

	return cs, nil
}

// genModulusChain generates ceil(bits/CtxtPrimeBits) ciphertext primes of
// equal size totalling approximately bits, and enough special primes to
// cover one of the min(c, #primes) key-switching digits.
// All primes are congruent to 1 modulo m.
func (e *Engine) genModulusChain(s *builderState) (ctxt, special []uint64, err error) {

	ceil := func(a, b uint64) uint64 { return (a + b - 1) / b }

	k := ceil(s.bits, CtxtPrimeBits)
	size := int(ceil(s.bits, k))

	digits := min(s.c, k)
	specialBits := ceil(k, digits) * uint64(size)
	ks := ceil(specialBits, CtxtPrimeBits)
	specialSize := int(ceil(specialBits, ks))

	generators := map[int]*ring.PrimesGenerator{}
	exclude := map[uint64]bool{s.p: true}

	draw := func(param string, value uint64, logQ int, n uint64) (primes []uint64, err error) {

		g, ok := generators[logQ]
		if !ok {
			if g, err = ring.NewPrimesGenerator(logQ, s.m); err != nil {
				return nil, invalid(param, value, "%s", err)
			}
			generators[logQ] = g
		}

		for uint64(len(primes)) < n {
			var q []uint64
			if q, err = g.NextAlternatingPrimes(1); err != nil {
				return nil, fmt.Errorf("native: modulus chain generation failed: %w", err)
			}
			if !exclude[q[0]] {
				exclude[q[0]] = true
				primes = append(primes, q[0])
			}
		}

		return
	}

	if ctxt, err = draw("bits", s.bits, size, k); err != nil {
		return
	}

	if special, err = draw("c", s.c, specialSize, ks); err != nil {
		return
	}

	return
}

func formatInts[T uint64 | int64](v []T) string {
	b := []byte{'['}
	for i := range v {
		if i > 0 {
			b = append(b, ',')
		}
		switch x := any(v[i]).(type) {
		case uint64:
			b = strconv.AppendUint(b, x, 10)
		case int64:
			b = strconv.AppendInt(b, x, 10)
		}
	}
	return string(append(b, ']'))
}

// context must be called with e.mu held.
func (e *Engine) context(c ContextHandle) (*contextState, error) {
	if c == 0 {
		return nil, ErrNullHandle
	}
	s, ok := e.contexts[c]
	if !ok {
		return nil, ErrStaleHandle
	}
	return s, nil
}

func get[T any](e *Engine, c ContextHandle, f func(s *contextState) T) (v T, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.context(c)
	if err != nil {
		return v, err
	}
	return f(s), nil
}

func (e *Engine) GetM(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.m })
}

func (e *Engine) GetP(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.p })
}

func (e *Engine) GetR(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.r })
}

func (e *Engine) GetBits(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.bits })
}

func (e *Engine) GetC(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.c })
}

// GetGens returns the generators of the slot group, either as provided
// or as derived by the engine.
func (e *Engine) GetGens(c ContextHandle) ([]uint64, error) {
	return get(e, c, func(s *contextState) []uint64 { return append([]uint64{}, s.algebra.Gens...) })
}

// GetOrds returns the orders matching GetGens.
func (e *Engine) GetOrds(c ContextHandle) ([]int64, error) {
	return get(e, c, func(s *contextState) []int64 { return append([]int64{}, s.algebra.Ords...) })
}

func (e *Engine) GetMvec(c ContextHandle) ([]uint64, error) {
	return get(e, c, func(s *contextState) []uint64 { return append([]uint64{}, s.mvec...) })
}

func (e *Engine) GetBootstrapMode(c ContextHandle) (BootstrapMode, error) {
	return get(e, c, func(s *contextState) BootstrapMode { return s.mode })
}

func (e *Engine) GetBootstrappable(c ContextHandle) (bool, error) {
	return get(e, c, func(s *contextState) bool { return s.bootstrappable })
}

func (e *Engine) GetPhiM(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.algebra.PhiM })
}

func (e *Engine) GetOrdP(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.algebra.OrdP })
}

func (e *Engine) GetNSlots(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.algebra.NSlots })
}

func (e *Engine) GetCtxtPrimes(c ContextHandle) ([]uint64, error) {
	return get(e, c, func(s *contextState) []uint64 { return append([]uint64{}, s.ctxtPrimes...) })
}

func (e *Engine) GetSpecialPrimes(c ContextHandle) ([]uint64, error) {
	return get(e, c, func(s *contextState) []uint64 { return append([]uint64{}, s.specialPrimes...) })
}

// GetBootstrapChainBits returns the modulus chain bit budget the bootstrapping
// data was prepared for. It differs from GetBits if the chain was changed after
// the context was marked bootstrappable, in which case the bootstrapping data
// is silently inconsistent with the context.
func (e *Engine) GetBootstrapChainBits(c ContextHandle) (uint64, error) {
	return get(e, c, func(s *contextState) uint64 { return s.bootChainBits })
}
