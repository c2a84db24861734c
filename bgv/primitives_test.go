package bgv_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Pro7ech/hebind/bgv"
	"github.com/Pro7ech/hebind/ring"
	"github.com/stretchr/testify/require"
)

// scalar abstracts the constructors of the scalar parameters.
type scalar struct {
	field bgv.Field
	new   func(v int64) (fmt.Stringer, error)
	parse func(s string) (fmt.Stringer, error)
}

func wrap[T fmt.Stringer](v T, err error) (fmt.Stringer, error) {
	return v, err
}

var scalars = []scalar{
	{bgv.FieldM, func(v int64) (fmt.Stringer, error) { return wrap(bgv.NewM(v)) }, func(s string) (fmt.Stringer, error) { return wrap(bgv.ParseM(s)) }},
	{bgv.FieldP, func(v int64) (fmt.Stringer, error) { return wrap(bgv.NewP(v)) }, func(s string) (fmt.Stringer, error) { return wrap(bgv.ParseP(s)) }},
	{bgv.FieldR, func(v int64) (fmt.Stringer, error) { return wrap(bgv.NewR(v)) }, func(s string) (fmt.Stringer, error) { return wrap(bgv.ParseR(s)) }},
	{bgv.FieldBits, func(v int64) (fmt.Stringer, error) { return wrap(bgv.NewBits(v)) }, func(s string) (fmt.Stringer, error) { return wrap(bgv.ParseBits(s)) }},
	{bgv.FieldC, func(v int64) (fmt.Stringer, error) { return wrap(bgv.NewC(v)) }, func(s string) (fmt.Stringer, error) { return wrap(bgv.ParseC(s)) }},
}

func requireParameterError(t *testing.T, err error, field bgv.Field, target error) {
	t.Helper()
	perr, ok := bgv.AsParameterError(err)
	require.True(t, ok, "expected a *bgv.ParameterError, got %v", err)
	require.Equal(t, field, perr.Field)
	require.ErrorIs(t, err, target)
}

func TestScalars(t *testing.T) {

	for _, s := range scalars {

		t.Run(s.field.String()+"/RoundTrip", func(t *testing.T) {
			// primes, so that P accepts them as well
			for _, v := range []int64{2, 3, 4093, 65537, 4294967291} {
				x, err := s.new(v)
				require.NoError(t, err)
				require.Equal(t, fmt.Sprint(v), x.String())

				y, err := s.parse(x.String())
				require.NoError(t, err)
				require.Equal(t, x, y)
			}
		})

		t.Run(s.field.String()+"/RandomRoundTrip", func(t *testing.T) {
			r := rand.New(rand.NewPCG(0x5eed, uint64(s.field)))
			for range 512 {
				v := r.Uint64N(math.MaxUint32) + 1

				if s.field == bgv.FieldP {
					for v > 2 && !ring.IsPrime(v) {
						v--
					}
					v = max(v, 2)
				}

				x, err := s.new(int64(v))
				require.NoError(t, err)
				require.Equal(t, fmt.Sprint(v), x.String())

				y, err := s.parse(x.String())
				require.NoError(t, err)
				require.Equal(t, x, y)
			}
		})

		t.Run(s.field.String()+"/Zero", func(t *testing.T) {
			_, err := s.new(0)
			requireParameterError(t, err, s.field, bgv.ErrZeroValue)

			_, err = s.parse("0")
			requireParameterError(t, err, s.field, bgv.ErrZeroValue)
		})

		t.Run(s.field.String()+"/Negative", func(t *testing.T) {
			_, err := s.new(-7)
			requireParameterError(t, err, s.field, bgv.ErrNegative)
		})

		t.Run(s.field.String()+"/OutOfRange", func(t *testing.T) {
			_, err := s.new(math.MaxUint32 + 1)
			requireParameterError(t, err, s.field, bgv.ErrOutOfRange)

			_, err = s.parse("4294967296")
			requireParameterError(t, err, s.field, bgv.ErrOutOfRange)
		})

		t.Run(s.field.String()+"/Malformed", func(t *testing.T) {
			for _, str := range []string{"", " ", "abc", "12a", "-1", "+", " 7", "7 ", "0x10", "1.5", "1e3"} {
				require.NotPanics(t, func() {
					_, err := s.parse(str)
					requireParameterError(t, err, s.field, bgv.ErrParse)
				}, str)
			}
		})
	}

	t.Run("P/NotPrime", func(t *testing.T) {
		for _, v := range []int64{1, 4, 4095, 65536} {
			_, err := bgv.NewP(v)
			requireParameterError(t, err, bgv.FieldP, bgv.ErrNotPrime)
		}

		_, err := bgv.ParseP("9")
		requireParameterError(t, err, bgv.FieldP, bgv.ErrNotPrime)
	})

	t.Run("Types", func(t *testing.T) {
		m, err := bgv.NewM(uint8(255))
		require.NoError(t, err)
		require.Equal(t, uint32(255), m.Uint32())

		m, err = bgv.NewM(uint64(math.MaxUint32))
		require.NoError(t, err)
		require.Equal(t, uint32(math.MaxUint32), m.Uint32())

		_, err = bgv.NewM(int8(-1))
		require.ErrorIs(t, err, bgv.ErrNegative)
	})

	t.Run("Defaults", func(t *testing.T) {
		require.Equal(t, uint32(3), bgv.DefaultM.Uint32())
		require.Equal(t, uint32(2), bgv.DefaultP.Uint32())
		require.Equal(t, uint32(1), bgv.DefaultR.Uint32())
		require.Equal(t, uint32(3), bgv.DefaultC.Uint32())
		require.Equal(t, uint32(300), bgv.DefaultBits.Uint32())
	})
}

func TestLists(t *testing.T) {

	t.Run("Gens", func(t *testing.T) {
		g, err := bgv.ParseGens("2,3,5")
		require.NoError(t, err)
		require.Equal(t, []uint32{2, 3, 5}, g.Uint32s())
		require.Equal(t, "2,3,5", g.String())

		h, err := bgv.NewGens(2, 3, 5)
		require.NoError(t, err)
		require.True(t, g.Equal(h))

		for _, s := range []string{"[2, 3, 5]", " 2 ,3, 5 ", "[2,3,5]"} {
			h, err = bgv.ParseGens(s)
			require.NoError(t, err, s)
			require.True(t, g.Equal(h), s)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		for _, s := range []string{"", "[]", " [ ] "} {
			g, err := bgv.ParseGens(s)
			require.NoError(t, err)
			require.Zero(t, g.Len())

			o, err := bgv.ParseOrds(s)
			require.NoError(t, err)
			require.Zero(t, o.Len())

			m, err := bgv.ParseMvec(s)
			require.NoError(t, err)
			require.Zero(t, m.Len())
		}

		g, err := bgv.NewGens[int]()
		require.NoError(t, err)
		require.Equal(t, "", g.String())

		back, err := bgv.ParseGens(g.String())
		require.NoError(t, err)
		require.True(t, g.Equal(back))
	})

	t.Run("Zero", func(t *testing.T) {
		_, err := bgv.NewGens(2, 0, 5)
		requireParameterError(t, err, bgv.FieldGens, bgv.ErrZeroValue)

		_, err = bgv.ParseMvec("7,0")
		requireParameterError(t, err, bgv.FieldMvec, bgv.ErrZeroValue)

		_, err = bgv.NewOrds(1, 0)
		requireParameterError(t, err, bgv.FieldOrds, bgv.ErrZeroValue)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, s := range []string{"2,,3", "2,", ",2", "[2,3", "2,3]", "a,b", "2;3", "2 3"} {
			require.NotPanics(t, func() {
				_, err := bgv.ParseGens(s)
				requireParameterError(t, err, bgv.FieldGens, bgv.ErrParse)

				_, err = bgv.ParseOrds(s)
				requireParameterError(t, err, bgv.FieldOrds, bgv.ErrParse)
			}, s)
		}

		_, err := bgv.ParseGens("-2")
		requireParameterError(t, err, bgv.FieldGens, bgv.ErrParse)
	})

	t.Run("Ords", func(t *testing.T) {
		o, err := bgv.ParseOrds("2,-4,6")
		require.NoError(t, err)
		require.Equal(t, []int32{2, -4, 6}, o.Int32s())
		require.Equal(t, "2,-4,6", o.String())

		_, err = bgv.NewOrds(int64(math.MinInt32) - 1)
		requireParameterError(t, err, bgv.FieldOrds, bgv.ErrOutOfRange)

		_, err = bgv.ParseOrds("2147483648")
		requireParameterError(t, err, bgv.FieldOrds, bgv.ErrOutOfRange)
	})

	t.Run("Copy", func(t *testing.T) {
		g, err := bgv.NewGens(2, 3)
		require.NoError(t, err)
		v := g.Uint32s()
		v[0] = 7
		require.Equal(t, []uint32{2, 3}, g.Uint32s())
	})
}

func TestModes(t *testing.T) {

	for s, want := range map[string]bgv.Bootstrap{
		"none":  bgv.BootstrapNone,
		"thin":  bgv.BootstrapThin,
		"THICK": bgv.BootstrapThick,
	} {
		b, err := bgv.NewBootstrap(s)
		require.NoError(t, err)
		require.Equal(t, want, b)

		back, err := bgv.ParseBootstrap(b.String())
		require.NoError(t, err)
		require.Equal(t, b, back)
	}

	_, err := bgv.NewBootstrap("medium")
	requireParameterError(t, err, bgv.FieldBootstrap, bgv.ErrUnknownMode)

	for s, want := range map[string]bgv.Bootstrappable{
		"unset":    bgv.BootstrappableUnset,
		"enabled":  bgv.BootstrappableEnabled,
		"disabled": bgv.BootstrappableDisabled,
		"true":     bgv.BootstrappableEnabled,
		"False":    bgv.BootstrappableDisabled,
	} {
		b, err := bgv.ParseBootstrappable(s)
		require.NoError(t, err)
		require.Equal(t, want, b)
	}

	_, err = bgv.ParseBootstrappable("maybe")
	requireParameterError(t, err, bgv.FieldBootstrappable, bgv.ErrUnknownMode)

	_, err = bgv.Bootstrap(9).MarshalText()
	require.ErrorIs(t, err, bgv.ErrUnknownMode)
}

func TestTextMarshalling(t *testing.T) {

	type record struct {
		M    bgv.M         `json:"m"`
		P    bgv.P         `json:"p"`
		Gens bgv.Gens      `json:"gens"`
		Ords bgv.Ords      `json:"ords"`
		Boot bgv.Bootstrap `json:"bootstrap"`
	}

	var r record
	require.NoError(t, json.Unmarshal([]byte(`{"m":"4095","p":"2","gens":"2,3,5","ords":"1,-1,1","bootstrap":"thin"}`), &r))
	require.Equal(t, uint32(4095), r.M.Uint32())
	require.Equal(t, []int32{1, -1, 1}, r.Ords.Int32s())
	require.Equal(t, bgv.BootstrapThin, r.Boot)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"m":"4095","p":"2","gens":"2,3,5","ords":"1,-1,1","bootstrap":"thin"}`, string(data))

	err = json.Unmarshal([]byte(`{"m":"0"}`), &r)
	require.True(t, errors.Is(err, bgv.ErrZeroValue), "%v", err)

	err = json.Unmarshal([]byte(`{"p":"4"}`), &r)
	require.True(t, errors.Is(err, bgv.ErrNotPrime), "%v", err)
}

func TestFields(t *testing.T) {
	for _, f := range bgv.Fields() {
		g, err := bgv.ParseField(f.String())
		require.NoError(t, err)
		require.Equal(t, f, g)
	}

	_, err := bgv.ParseField("q")
	require.Error(t, err)
}
