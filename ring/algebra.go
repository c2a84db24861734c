package ring

import (
	"fmt"

	"github.com/Pro7ech/hebind/utils"
)

// Algebra describes the plaintext slot structure of the m-th cyclotomic ring
// modulo a prime p: the slots are indexed by the quotient group Z_m^* / <p>,
// which is described by a list of generators and their orders.
//
// A negative order marks a "bad" dimension: the generator's order in the
// quotient differs from its order in Z_m^*.
type Algebra struct {
	M      uint64
	P      uint64
	PhiM   uint64
	OrdP   uint64
	NSlots uint64
	Gens   []uint64
	Ords   []int64
}

// NewAlgebra checks (m, p) and returns the slot structure of Z_m^* / <p>.
// If gens and ords are empty, a generating set is derived, which requires
// m <= maxDeriveM. Otherwise gens and ords are checked for consistency:
// same length, gens in [1, m), non-zero ords whose absolute product divides
// the number of slots.
func NewAlgebra(m, p uint64, gens []uint64, ords []int64, maxDeriveM uint64) (a *Algebra, err error) {

	if m < 2 {
		return nil, fmt.Errorf("invalid cyclotomic order m=%d: must be at least 2", m)
	}

	if !IsPrime(p) {
		return nil, fmt.Errorf("invalid plaintext modulus p=%d: must be prime", p)
	}

	if GCD(p, m) != 1 {
		return nil, fmt.Errorf("invalid parameters: p=%d divides m=%d", p, m)
	}

	a = &Algebra{
		M:    m,
		P:    p,
		PhiM: Totient(m),
	}

	if a.OrdP, err = MultiplicativeOrder(p, m); err != nil {
		return nil, err
	}

	a.NSlots = a.PhiM / a.OrdP

	if len(gens) != len(ords) {
		return nil, fmt.Errorf("invalid structure: len(gens)=%d != len(ords)=%d", len(gens), len(ords))
	}

	if len(gens) == 0 {

		if m > maxDeriveM {
			return nil, fmt.Errorf("cannot derive generators: m=%d exceeds %d, gens and ords must be provided", m, maxDeriveM)
		}

		a.Gens, a.Ords = a.deriveGenerators()

		return a, nil
	}

	for i := range gens {

		if gens[i] == 0 || gens[i] >= m {
			return nil, fmt.Errorf("invalid generator gens[%d]=%d: must be in [1, %d)", i, gens[i], m)
		}

		if ords[i] == 0 {
			return nil, fmt.Errorf("invalid order ords[%d]=0", i)
		}
	}

	abs := make([]uint64, len(ords))
	for i := range ords {
		abs[i] = uint64(utils.Abs(ords[i]))
	}

	prod, ok := utils.Product(abs)
	if !ok || prod > a.NSlots {
		return nil, fmt.Errorf("invalid structure: product of |ords| exceeds the number of slots %d", a.NSlots)
	}

	if a.NSlots%prod != 0 {
		return nil, fmt.Errorf("invalid structure: product of |ords|=%d does not divide the number of slots %d", prod, a.NSlots)
	}

	a.Gens = append([]uint64{}, gens...)
	a.Ords = append([]int64{}, ords...)

	return a, nil
}

// deriveGenerators greedily builds a generating set of Z_m^* / <p>:
// it repeatedly adds the smallest unit outside of the current subgroup H,
// together with its order relative to H, until |H| = phi(m).
func (a *Algebra) deriveGenerators() (gens []uint64, ords []int64) {

	m := a.M

	inH := make([]bool, m)

	// H = <p>
	members := make([]uint64, 0, a.PhiM)
	for x, i := uint64(1), uint64(0); i < a.OrdP; i++ {
		inH[x] = true
		members = append(members, x)
		x = MulMod(x, a.P%m, m)
	}

	for g := uint64(2); uint64(len(members)) < a.PhiM && g < m; g++ {

		if inH[g] || GCD(g, m) != 1 {
			continue
		}

		// Order of g relative to H.
		k := uint64(1)
		gk := g
		for !inH[gk] {
			gk = MulMod(gk, g, m)
			k++
		}

		// H <- H * <g>
		base := members
		coset := uint64(1)
		for j := uint64(1); j < k; j++ {
			coset = MulMod(coset, g, m)
			for _, h := range base {
				x := MulMod(h, coset, m)
				inH[x] = true
				members = append(members, x)
			}
		}

		ord := int64(k)
		if ModExp(g, k, m) != 1 {
			ord = -ord
		}

		gens = append(gens, g)
		ords = append(ords, ord)
	}

	return
}
