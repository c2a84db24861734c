package bgv

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Pro7ech/hebind/utils"
	"golang.org/x/exp/constraints"
)

// splitList splits a comma separated list. Surrounding brackets and
// spaces around the items are ignored. The empty string and "[]" are
// the empty list.
func splitList(f Field, s string) ([]string, error) {

	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "[") != strings.HasSuffix(s, "]") {
		return nil, newParameterError(f, s, fmt.Errorf("%w: unbalanced brackets", ErrParse))
	}

	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))

	if s == "" {
		return nil, nil
	}

	items := strings.Split(s, ",")
	for i := range items {
		if items[i] = strings.TrimSpace(items[i]); items[i] == "" {
			return nil, newParameterError(f, s, fmt.Errorf("%w: empty item at position %d", ErrParse, i))
		}
	}

	return items, nil
}

// uint32List is the common representation of the lists of positive
// 32-bit integers.
type uint32List struct {
	v []uint32
}

func newUint32List[T constraints.Integer](f Field, v []T) (uint32List, error) {

	if len(v) == 0 {
		return uint32List{}, nil
	}

	out := make([]uint32, len(v))
	for i := range v {
		s, err := newScalar(f, v[i])
		if err != nil {
			perr := err.(*ParameterError)
			return uint32List{}, newParameterError(f, v, fmt.Errorf("element %d: %w", i, perr.Err))
		}
		out[i] = s.v
	}

	return uint32List{v: out}, nil
}

func parseUint32List(f Field, s string) (uint32List, error) {

	items, err := splitList(f, s)
	if err != nil {
		return uint32List{}, err
	}

	v := make([]uint32, len(items))
	for i := range items {
		if v[i], err = parseUint32(f, items[i]); err != nil {
			return uint32List{}, err
		}
	}

	return newUint32List(f, v)
}

// Uint32s returns a copy of the list.
func (l uint32List) Uint32s() []uint32 {
	return slices.Clone(l.v)
}

// Len returns the number of elements of the list.
func (l uint32List) Len() int {
	return len(l.v)
}

// String returns the comma separated decimal representation of the list.
func (l uint32List) String() string {
	return joinInts(l.v)
}

func (l uint32List) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l uint32List) check(f Field) error {
	if i := utils.IndexZero(l.v); i >= 0 {
		return newParameterError(f, l.String(), fmt.Errorf("element %d: %w", i, ErrZeroValue))
	}
	return nil
}

func joinInts[T uint32 | int32](v []T) string {
	var b strings.Builder
	for i := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(v[i]), 10))
	}
	return b.String()
}

// Gens are the generators of the slot group Z_M^*/<P>.
// An empty list lets the library derive them.
type Gens struct{ uint32List }

// NewGens returns a new Gens. Every element must be in [1, 2^32).
func NewGens[T constraints.Integer](v ...T) (Gens, error) {
	l, err := newUint32List(FieldGens, v)
	return Gens{l}, err
}

// ParseGens parses a comma separated list of generators, e.g. "2,3,5".
func ParseGens(s string) (Gens, error) {
	l, err := parseUint32List(FieldGens, s)
	return Gens{l}, err
}

func (g Gens) Equal(other Gens) bool { return slices.Equal(g.v, other.v) }
func (g Gens) Field() Field          { return FieldGens }
func (g Gens) validate() error       { return g.check(FieldGens) }

func (g *Gens) UnmarshalText(b []byte) (err error) {
	*g, err = ParseGens(string(b))
	return
}

// Mvec is the factorization of M used by the bootstrapping procedure.
type Mvec struct{ uint32List }

// NewMvec returns a new Mvec. Every element must be in [1, 2^32).
func NewMvec[T constraints.Integer](v ...T) (Mvec, error) {
	l, err := newUint32List(FieldMvec, v)
	return Mvec{l}, err
}

// ParseMvec parses a comma separated list of factors, e.g. "7,5,9,13".
func ParseMvec(s string) (Mvec, error) {
	l, err := parseUint32List(FieldMvec, s)
	return Mvec{l}, err
}

func (m Mvec) Equal(other Mvec) bool { return slices.Equal(m.v, other.v) }
func (m Mvec) Field() Field          { return FieldMvec }
func (m Mvec) validate() error       { return m.check(FieldMvec) }

func (m *Mvec) UnmarshalText(b []byte) (err error) {
	*m, err = ParseMvec(string(b))
	return
}

// Ords are the orders of the generators in the slot group. A negative
// order marks a "bad" dimension, i.e. the order of the generator in
// Z_M^* differs from its order in Z_M^*/<P>. Orders cannot be zero.
type Ords struct {
	v []int32
}

// NewOrds returns a new Ords. Every element must be a non-zero signed
// 32-bit integer.
func NewOrds[T constraints.Integer](v ...T) (Ords, error) {

	if len(v) == 0 {
		return Ords{}, nil
	}

	out := make([]int32, len(v))
	for i := range v {

		switch {
		case v[i] == 0:
			return Ords{}, newParameterError(FieldOrds, v, fmt.Errorf("element %d: %w", i, ErrZeroValue))
		case v[i] < 0 && int64(v[i]) < math.MinInt32:
			return Ords{}, newParameterError(FieldOrds, v, fmt.Errorf("element %d: %w", i, ErrOutOfRange))
		case v[i] > 0 && uint64(v[i]) > math.MaxInt32:
			return Ords{}, newParameterError(FieldOrds, v, fmt.Errorf("element %d: %w", i, ErrOutOfRange))
		}

		out[i] = int32(v[i])
	}

	return Ords{v: out}, nil
}

// ParseOrds parses a comma separated list of orders, e.g. "2,-4".
func ParseOrds(s string) (Ords, error) {

	items, err := splitList(FieldOrds, s)
	if err != nil {
		return Ords{}, err
	}

	v := make([]int64, len(items))
	for i := range items {
		if v[i], err = strconv.ParseInt(items[i], 10, 32); err != nil {
			sentinel := ErrParse
			if errors.Is(err, strconv.ErrRange) {
				sentinel = ErrOutOfRange
			}
			return Ords{}, newParameterError(FieldOrds, s, fmt.Errorf("%w: %w", sentinel, err))
		}
	}

	return NewOrds(v...)
}

// Int32s returns a copy of the orders.
func (o Ords) Int32s() []int32 {
	return slices.Clone(o.v)
}

// Len returns the number of orders.
func (o Ords) Len() int {
	return len(o.v)
}

func (o Ords) String() string {
	return joinInts(o.v)
}

func (o Ords) Equal(other Ords) bool { return slices.Equal(o.v, other.v) }
func (o Ords) Field() Field          { return FieldOrds }

func (o Ords) validate() error {
	if i := utils.IndexZero(o.v); i >= 0 {
		return newParameterError(FieldOrds, o.String(), fmt.Errorf("element %d: %w", i, ErrZeroValue))
	}
	return nil
}

func (o Ords) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Ords) UnmarshalText(b []byte) (err error) {
	*o, err = ParseOrds(string(b))
	return
}
