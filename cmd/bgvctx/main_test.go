package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Pro7ech/hebind/bgv"
	"github.com/Pro7ech/hebind/native"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scenario = `m: 4095
p: 2
r: 1
bits: 32
c: 2
gens: [2, 3, 5]
ords: [1, 1, 1]
mvec: [2, 3]
bootstrap: thin
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDescribe(t *testing.T) {

	ctx, err := bgv.NewContext(native.NewEngine(), bgv.ParametersLiteral{
		M:    func() *int64 { v := int64(4095); return &v }(),
		Bits: func() *int64 { v := int64(32); return &v }(),
	})
	require.NoError(t, err)
	defer ctx.Close()

	d, err := describe(ctx)
	require.NoError(t, err)
	require.Equal(t, d.PhiM, d.OrdP*d.NSlots)
	require.Len(t, d.Fingerprint, 64)
	require.Equal(t, native.EngineVersion, d.Version)

	var text bytes.Buffer
	require.NoError(t, d.write(&text, "text"))
	require.Contains(t, text.String(), "fingerprint "+d.Fingerprint)

	var data bytes.Buffer
	require.NoError(t, d.write(&data, "json"))

	var back description
	require.NoError(t, json.Unmarshal(data.Bytes(), &back))
	require.Equal(t, d, back)
}

func TestValidate(t *testing.T) {

	dir := t.TempDir()

	files := []string{
		writeFile(t, dir, "scenario.yaml", scenario),
		writeFile(t, dir, "zero.json", `{"m": 0}`),
		writeFile(t, dir, "small.json", `{"m": 31}`),
		writeFile(t, dir, "notcoprime.json", `{"m": 4095, "p": 3}`),
		filepath.Join(dir, "missing.yaml"),
	}

	engines := []*native.Engine{native.NewEngine(), native.NewEngine()}

	results, err := validate(engines, files, false, zap.NewNop())
	require.Error(t, err)
	require.Len(t, results, len(files))

	for i, r := range results {
		require.Equal(t, files[i], r.File)
	}

	require.Empty(t, results[0].Error)
	require.Equal(t, uint64(144), results[0].NSlots)
	require.Contains(t, results[1].Error, bgv.ErrZeroValue.Error())
	require.Empty(t, results[2].Error)
	require.NotEmpty(t, results[3].Error)
	require.NotEmpty(t, results[4].Error)
	require.Equal(t, 3, countFailed(results))

	for _, e := range engines {
		builders, contexts := e.Live()
		require.Zero(t, builders)
		require.Zero(t, contexts)
	}
}

func TestValidateFailFast(t *testing.T) {

	dir := t.TempDir()

	files := make([]string, 4)
	for i := range files {
		files[i] = writeFile(t, dir, fmt.Sprintf("zero%d.json", i), `{"m": 0}`)
	}

	// a single engine runs the files one after the other: the first
	// to run fails and the others never start
	results, err := validate([]*native.Engine{native.NewEngine()}, files, true, zap.NewNop())
	require.ErrorIs(t, err, bgv.ErrZeroValue)
	require.Equal(t, 1, countFailed(results))

	var skipped int
	for i, r := range results {
		require.Equal(t, files[i], r.File)
		if r.Skipped {
			require.Empty(t, r.Error)
			skipped++
		}
	}
	require.Equal(t, len(files)-1, skipped)
}

func TestCommands(t *testing.T) {

	dir := t.TempDir()
	path := writeFile(t, dir, "scenario.yaml", scenario)

	t.Run("Defaults", func(t *testing.T) {
		out, err := execute(t, "defaults")
		require.NoError(t, err)

		var pl bgv.ParametersLiteral
		require.NoError(t, json.Unmarshal([]byte(out), &pl))

		params, err := bgv.NewParametersFromLiteral(pl)
		require.NoError(t, err)
		require.True(t, params.Equal(bgv.DefaultParameters()))
	})

	t.Run("Build", func(t *testing.T) {
		out, err := execute(t, "build", path, "--log-level=error")
		require.NoError(t, err)
		require.Contains(t, out, "nslots      144")
	})

	t.Run("BuildWithoutParameters", func(t *testing.T) {
		_, err := execute(t, "build")
		require.Error(t, err)
	})

	t.Run("Validate", func(t *testing.T) {
		out, err := execute(t, "validate", path, "--workers=2")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out, "ok   "+path), out)
	})

	t.Run("Version", func(t *testing.T) {
		out, err := execute(t, "version")
		require.NoError(t, err)
		require.Contains(t, out, "engine "+native.EngineVersion)
	})
}
