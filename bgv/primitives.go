package bgv

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Pro7ech/hebind/ring"
	"golang.org/x/exp/constraints"
)

// scalar is the common representation of the positive 32-bit parameters.
type scalar struct {
	v uint32
}

// Uint32 returns the value of the parameter.
func (s scalar) Uint32() uint32 {
	return s.v
}

// String returns the decimal representation of the parameter.
func (s scalar) String() string {
	return strconv.FormatUint(uint64(s.v), 10)
}

// MarshalText encodes the parameter in decimal.
func (s scalar) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s scalar) check(f Field) error {
	if s.v == 0 {
		return newParameterError(f, s.v, ErrZeroValue)
	}
	return nil
}

func newScalar[T constraints.Integer](f Field, v T) (scalar, error) {

	if v < 0 {
		return scalar{}, newParameterError(f, v, ErrNegative)
	}

	if v == 0 {
		return scalar{}, newParameterError(f, v, ErrZeroValue)
	}

	if uint64(v) > math.MaxUint32 {
		return scalar{}, newParameterError(f, v, ErrOutOfRange)
	}

	return scalar{v: uint32(v)}, nil
}

// parseUint32 parses a decimal unsigned 32-bit integer. Malformed input
// is rejected before any domain check.
func parseUint32(f Field, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, newParameterError(f, s, fmt.Errorf("%w: %w", ErrOutOfRange, err))
		}
		return 0, newParameterError(f, s, fmt.Errorf("%w: %w", ErrParse, err))
	}
	return uint32(v), nil
}

func parseScalar(f Field, s string) (scalar, error) {
	v, err := parseUint32(f, s)
	if err != nil {
		return scalar{}, err
	}
	return newScalar(f, v)
}

// M is the cyclotomic order.
type M struct{ scalar }

// NewM returns a new M. v must be in [1, 2^32).
func NewM[T constraints.Integer](v T) (M, error) {
	s, err := newScalar(FieldM, v)
	return M{s}, err
}

// ParseM parses a decimal M.
func ParseM(s string) (M, error) {
	x, err := parseScalar(FieldM, s)
	return M{x}, err
}

func (m M) Equal(other M) bool { return m == other }
func (m M) Field() Field       { return FieldM }
func (m M) validate() error    { return m.check(FieldM) }

func (m *M) UnmarshalText(b []byte) (err error) {
	*m, err = ParseM(string(b))
	return
}

// P is the plaintext modulus. It must be a prime.
type P struct{ scalar }

// NewP returns a new P. v must be a prime in [2, 2^32).
func NewP[T constraints.Integer](v T) (P, error) {
	s, err := newScalar(FieldP, v)
	if err != nil {
		return P{}, err
	}
	if !ring.IsPrime(uint64(s.v)) {
		return P{}, newParameterError(FieldP, v, ErrNotPrime)
	}
	return P{s}, nil
}

// ParseP parses a decimal P.
func ParseP(s string) (P, error) {
	v, err := parseUint32(FieldP, s)
	if err != nil {
		return P{}, err
	}
	return NewP(v)
}

func (p P) Equal(other P) bool { return p == other }
func (p P) Field() Field       { return FieldP }

func (p P) validate() error {
	if err := p.check(FieldP); err != nil {
		return err
	}
	if !ring.IsPrime(uint64(p.v)) {
		return newParameterError(FieldP, p.v, ErrNotPrime)
	}
	return nil
}

func (p *P) UnmarshalText(b []byte) (err error) {
	*p, err = ParseP(string(b))
	return
}

// R is the Hensel lifting degree: the plaintext space is Z_{P^R}.
type R struct{ scalar }

// NewR returns a new R. v must be in [1, 2^32).
func NewR[T constraints.Integer](v T) (R, error) {
	s, err := newScalar(FieldR, v)
	return R{s}, err
}

// ParseR parses a decimal R.
func ParseR(s string) (R, error) {
	x, err := parseScalar(FieldR, s)
	return R{x}, err
}

func (r R) Equal(other R) bool { return r == other }
func (r R) Field() Field       { return FieldR }
func (r R) validate() error    { return r.check(FieldR) }

func (r *R) UnmarshalText(b []byte) (err error) {
	*r, err = ParseR(string(b))
	return
}

// C is the number of columns of the key-switching matrices.
type C struct{ scalar }

// NewC returns a new C. v must be in [1, 2^32).
func NewC[T constraints.Integer](v T) (C, error) {
	s, err := newScalar(FieldC, v)
	return C{s}, err
}

// ParseC parses a decimal C.
func ParseC(s string) (C, error) {
	x, err := parseScalar(FieldC, s)
	return C{x}, err
}

func (c C) Equal(other C) bool { return c == other }
func (c C) Field() Field       { return FieldC }
func (c C) validate() error    { return c.check(FieldC) }

func (c *C) UnmarshalText(b []byte) (err error) {
	*c, err = ParseC(string(b))
	return
}

// Bits is the bit budget of the modulus chain.
type Bits struct{ scalar }

// NewBits returns a new Bits. v must be in [1, 2^32).
func NewBits[T constraints.Integer](v T) (Bits, error) {
	s, err := newScalar(FieldBits, v)
	return Bits{s}, err
}

// ParseBits parses a decimal Bits.
func ParseBits(s string) (Bits, error) {
	x, err := parseScalar(FieldBits, s)
	return Bits{x}, err
}

func (b Bits) Equal(other Bits) bool { return b == other }
func (b Bits) Field() Field          { return FieldBits }
func (b Bits) validate() error       { return b.check(FieldBits) }

func (b *Bits) UnmarshalText(text []byte) (err error) {
	*b, err = ParseBits(string(text))
	return
}
