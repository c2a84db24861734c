package bgv_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Pro7ech/hebind/bgv"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func ptr(v int64) *int64 {
	return &v
}

// scenarioLiteral is the reference set of parameters: small, insecure and
// only used for the purpose of fast testing.
var scenarioLiteral = bgv.ParametersLiteral{
	M:         ptr(4095),
	P:         ptr(2),
	R:         ptr(1),
	Bits:      ptr(32),
	C:         ptr(2),
	Gens:      "2,3,5",
	Ords:      "1,1,1",
	Mvec:      "2,3",
	Bootstrap: "thin",
}

func TestParametersLiteral(t *testing.T) {

	t.Run("Defaults", func(t *testing.T) {
		params, err := bgv.NewParametersFromLiteral(bgv.ParametersLiteral{M: ptr(3)})
		require.NoError(t, err)
		require.True(t, params.Equal(bgv.DefaultParameters()))
	})

	t.Run("Scenario", func(t *testing.T) {
		params, err := bgv.NewParametersFromLiteral(scenarioLiteral)
		require.NoError(t, err)
		require.Equal(t, uint32(4095), params.M().Uint32())
		require.Equal(t, uint32(32), params.Bits().Uint32())
		require.Equal(t, []uint32{2, 3, 5}, params.Gens().Uint32s())
		require.Equal(t, []int32{1, 1, 1}, params.Ords().Int32s())
		require.Equal(t, []uint32{2, 3}, params.Mvec().Uint32s())
		require.Equal(t, bgv.BootstrapThin, params.Bootstrap())
		require.Equal(t, bgv.BootstrappableUnset, params.Bootstrappable())

		back, err := bgv.NewParametersFromLiteral(params.ParametersLiteral())
		require.NoError(t, err)
		require.True(t, params.Equal(back), cmp.Diff(params.ParametersLiteral(), back.ParametersLiteral()))
	})

	t.Run("MissingM", func(t *testing.T) {
		_, err := bgv.NewParametersFromLiteral(bgv.ParametersLiteral{})
		requireParameterError(t, err, bgv.FieldM, bgv.ErrMissing)
	})

	t.Run("AllErrors", func(t *testing.T) {
		_, err := bgv.NewParametersFromLiteral(bgv.ParametersLiteral{
			M:         ptr(0),
			P:         ptr(-2),
			Bits:      ptr(1 << 40),
			Gens:      "2,x",
			Bootstrap: "fast",
		})

		require.ErrorIs(t, err, bgv.ErrZeroValue)
		require.ErrorIs(t, err, bgv.ErrNegative)
		require.ErrorIs(t, err, bgv.ErrOutOfRange)
		require.ErrorIs(t, err, bgv.ErrParse)
		require.ErrorIs(t, err, bgv.ErrUnknownMode)

		joined, ok := err.(interface{ Unwrap() []error })
		require.True(t, ok)

		var fields []bgv.Field
		for _, err := range joined.Unwrap() {
			perr, ok := err.(*bgv.ParameterError)
			require.True(t, ok, "%T", err)
			fields = append(fields, perr.Field)
		}
		require.Equal(t, []bgv.Field{bgv.FieldM, bgv.FieldP, bgv.FieldBits, bgv.FieldGens, bgv.FieldBootstrap}, fields)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		pl := scenarioLiteral
		pl.Ords = "1,1"
		_, err := bgv.NewParametersFromLiteral(pl)
		requireParameterError(t, err, bgv.FieldOrds, bgv.ErrLengthMismatch)
	})

	t.Run("Conflict", func(t *testing.T) {
		pl := scenarioLiteral
		pl.Bootstrappable = "disabled"
		_, err := bgv.NewParametersFromLiteral(pl)
		requireParameterError(t, err, bgv.FieldBootstrappable, bgv.ErrConflict)
	})

	t.Run("JSON", func(t *testing.T) {

		var pl bgv.ParametersLiteral
		require.NoError(t, json.Unmarshal([]byte(`{"m":4095,"p":2,"bits":32,"c":2,"gens":[2,3,5],"ords":"1,1,1","mvec":[2,3],"bootstrap":"thin"}`), &pl))

		params, err := bgv.NewParametersFromLiteral(pl)
		require.NoError(t, err)

		want, err := bgv.NewParametersFromLiteral(scenarioLiteral)
		require.NoError(t, err)
		require.True(t, want.Equal(params))

		data, err := json.Marshal(params)
		require.NoError(t, err)

		var back bgv.Parameters
		require.NoError(t, json.Unmarshal(data, &back))
		require.True(t, params.Equal(back))

		err = json.Unmarshal([]byte(`{"m":4095,"gens":[2,3],"ords":[1]}`), &back)
		require.ErrorIs(t, err, bgv.ErrLengthMismatch)
	})

	t.Run("YAML", func(t *testing.T) {

		var pl bgv.ParametersLiteral
		require.NoError(t, yaml.Unmarshal([]byte("m: 4095\np: 2\nbits: 32\nc: 2\ngens: [2, 3, 5]\nords: 1,1,1\nmvec:\n  - 2\n  - 3\nbootstrap: thin\n"), &pl))

		params, err := bgv.NewParametersFromLiteral(pl)
		require.NoError(t, err)

		want, err := bgv.NewParametersFromLiteral(scenarioLiteral)
		require.NoError(t, err)
		require.True(t, want.Equal(params), cmp.Diff(want.ParametersLiteral(), params.ParametersLiteral()))

		err = yaml.Unmarshal([]byte("gens: {a: 1}\n"), &pl)
		require.True(t, errors.Is(err, bgv.ErrParse), "%v", err)
	})
}

func TestNewParameters(t *testing.T) {

	params, err := bgv.NewParameters(bgv.DefaultM, bgv.DefaultP, bgv.DefaultR, bgv.DefaultBits, bgv.DefaultC,
		bgv.Gens{}, bgv.Ords{}, bgv.Mvec{}, bgv.BootstrapNone, bgv.BootstrappableUnset)
	require.NoError(t, err)
	require.True(t, params.Equal(bgv.DefaultParameters()))

	// zero values of the scalar types are never valid
	_, err = bgv.NewParameters(bgv.M{}, bgv.P{}, bgv.DefaultR, bgv.DefaultBits, bgv.DefaultC,
		bgv.Gens{}, bgv.Ords{}, bgv.Mvec{}, bgv.BootstrapNone, bgv.BootstrappableUnset)
	requireParameterError(t, err, bgv.FieldM, bgv.ErrZeroValue)
	require.ErrorIs(t, err, bgv.ErrZeroValue)

	require.Len(t, params.Metrics(), len(bgv.Fields()))
	for i, m := range params.Metrics() {
		require.Equal(t, bgv.Fields()[i], m.Field())
	}
}

func TestMetric(t *testing.T) {

	for _, tc := range []struct {
		field bgv.Field
		raw   any
		want  string
	}{
		{bgv.FieldM, 4095, "4095"},
		{bgv.FieldM, "4095", "4095"},
		{bgv.FieldP, uint8(2), "2"},
		{bgv.FieldR, int64(1), "1"},
		{bgv.FieldBits, float64(32), "32"},
		{bgv.FieldC, uint32(2), "2"},
		{bgv.FieldGens, []int{2, 3, 5}, "2,3,5"},
		{bgv.FieldGens, "[2, 3, 5]", "2,3,5"},
		{bgv.FieldOrds, []int32{1, -1}, "1,-1"},
		{bgv.FieldMvec, []uint64{7, 5, 9, 13}, "7,5,9,13"},
		{bgv.FieldBootstrap, "thin", "thin"},
		{bgv.FieldBootstrap, bgv.BootstrapThick, "thick"},
		{bgv.FieldBootstrappable, true, "enabled"},
		{bgv.FieldBootstrappable, "disabled", "disabled"},
	} {
		m, err := bgv.NewMetric(tc.field, tc.raw)
		require.NoError(t, err, "%s=%v", tc.field, tc.raw)
		require.Equal(t, tc.field, m.Field())
		require.Equal(t, tc.want, m.String())
	}

	for _, tc := range []struct {
		field  bgv.Field
		raw    any
		target error
	}{
		{bgv.FieldM, 0, bgv.ErrZeroValue},
		{bgv.FieldM, "x", bgv.ErrParse},
		{bgv.FieldM, 1.5, bgv.ErrParse},
		{bgv.FieldM, []int{1}, bgv.ErrParse},
		{bgv.FieldP, 4, bgv.ErrNotPrime},
		{bgv.FieldR, -1, bgv.ErrNegative},
		{bgv.FieldGens, []int{1, 0}, bgv.ErrZeroValue},
		{bgv.FieldOrds, 3, bgv.ErrParse},
		{bgv.FieldBootstrap, true, bgv.ErrParse},
		{bgv.FieldBootstrap, "fast", bgv.ErrUnknownMode},
		{bgv.FieldM, bgv.DefaultP, bgv.ErrConflict},
		{bgv.FieldM, bgv.M{}, bgv.ErrZeroValue},
		{bgv.FieldUnknown, 3, bgv.ErrUnknownMode},
	} {
		_, err := bgv.NewMetric(tc.field, tc.raw)
		requireParameterError(t, err, tc.field, tc.target)
	}
}
