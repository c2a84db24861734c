package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/Pro7ech/hebind/bgv"
	"github.com/Pro7ech/hebind/config"
	"github.com/Pro7ech/hebind/native"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var buildCmd = &cobra.Command{
	Use:     "build [parameter file]",
	Aliases: []string{"describe"},
	Short:   "Build a BGV context and describe it",
	Long: `Build a BGV context from a JSON or YAML parameter file, given either as
argument or with --params, and print its parameters, slot structure,
modulus chain and fingerprint.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		cfg, logger, err := setup(cmd)
		if err != nil {
			return
		}
		defer logger.Sync()

		path := cfg.Params
		if len(args) == 1 {
			path = args[0]
		}

		if path == "" {
			return fmt.Errorf("no parameter file: use --%s or pass it as argument", config.ParamsKey)
		}

		params, err := config.LoadParameters(path)
		if err != nil {
			return
		}

		lib := native.NewEngine(cfg.EngineOptions(logger)...)

		now := time.Now()
		ctx, err := params.Context(lib, bgv.WithLogger(logger))
		if err != nil {
			return
		}
		defer ctx.Close()

		d, err := describe(ctx)
		if err != nil {
			return
		}

		logger.Debug("described", zap.String("file", path), zap.Duration("elapsed", time.Since(now)))

		return d.write(cmd.OutOrStdout(), cfg.Output)
	},
}

// description is the report of a built context.
type description struct {
	Parameters  bgv.ParametersLiteral `json:"parameters"`
	PhiM        uint64                `json:"phi_m"`
	OrdP        uint64                `json:"ord_p"`
	NSlots      uint64                `json:"nslots"`
	LogQ        float64               `json:"log_q"`
	Security    *float64              `json:"security,omitempty"`
	Ciphertext  bgv.ChainSummary      `json:"ciphertext_primes"`
	Special     bgv.ChainSummary      `json:"special_primes"`
	Fingerprint string                `json:"fingerprint"`
	Version     string                `json:"version"`
}

func describe(ctx *bgv.Context) (d description, err error) {

	params, err := ctx.Parameters()
	if err != nil {
		return
	}
	d.Parameters = params.ParametersLiteral()

	if d.PhiM, err = ctx.PhiM(); err != nil {
		return
	}

	if d.OrdP, err = ctx.OrdP(); err != nil {
		return
	}

	if d.NSlots, err = ctx.NSlots(); err != nil {
		return
	}

	if d.LogQ, err = ctx.LogQ(); err != nil {
		return
	}

	security, err := ctx.SecurityLevel()
	if err != nil {
		return
	}

	// +Inf is not representable in JSON
	if !math.IsInf(security, 0) {
		d.Security = &security
	}

	if d.Ciphertext, d.Special, err = ctx.ChainSummary(); err != nil {
		return
	}

	digest, err := ctx.Fingerprint()
	if err != nil {
		return
	}
	d.Fingerprint = hex.EncodeToString(digest[:])
	d.Version = ctx.Version()

	return
}

func (d description) write(w io.Writer, output string) (err error) {

	if output == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	params, err := bgv.NewParametersFromLiteral(d.Parameters)
	if err != nil {
		return
	}

	security := "n/a"
	if d.Security != nil {
		security = fmt.Sprintf("%.1f", *d.Security)
	}

	_, err = fmt.Fprintf(w, `parameters  %s
phi(m)      %d
ord(p)      %d
nslots      %d
log(Q)      %.2f
security    %s
ciphertext  %d primes, %.1f to %.1f bits (mean %.2f, stddev %.2f)
special     %d primes, %.1f to %.1f bits (mean %.2f, stddev %.2f)
fingerprint %s
engine      %s
`,
		params, d.PhiM, d.OrdP, d.NSlots, d.LogQ, security,
		d.Ciphertext.Count, d.Ciphertext.Min, d.Ciphertext.Max, d.Ciphertext.Mean, d.Ciphertext.StdDev,
		d.Special.Count, d.Special.Min, d.Special.Max, d.Special.Mean, d.Special.StdDev,
		d.Fingerprint, d.Version)

	return
}
