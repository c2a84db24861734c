package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pro7ech/hebind/bgv"
	"github.com/Pro7ech/hebind/config"
	"github.com/Pro7ech/hebind/native"
	"github.com/Pro7ech/hebind/utils/concurrency"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateCmd = &cobra.Command{
	Use:   "validate file [file...]",
	Short: "Check that parameter files build a BGV context",
	Long: `Check, concurrently, that each parameter file decodes, validates and builds
a BGV context. The number of concurrent builds is set by --workers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		cfg, logger, err := setup(cmd)
		if err != nil {
			return
		}
		defer logger.Sync()

		engines := make([]*native.Engine, cfg.Workers)
		for i := range engines {
			engines[i] = native.NewEngine(cfg.EngineOptions(logger.With(zap.Int("worker", i)))...)
		}

		results, err := validate(engines, args, cfg.FailFast, logger)

		if cfg.Output == config.OutputJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				switch {
				case r.Skipped:
					fmt.Fprintf(cmd.OutOrStdout(), "skip %s\n", r.File)
				case r.Error != "":
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n", r.Error)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (nslots=%d)\n", r.File, r.NSlots)
				}
			}
		}

		if err != nil {
			return fmt.Errorf("%d/%d parameter files are invalid", countFailed(results), len(results))
		}

		return
	},
}

// result is the outcome of the validation of a parameter file.
type result struct {
	File    string        `json:"file"`
	NSlots  uint64        `json:"nslots,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
	Error   string        `json:"error,omitempty"`
	Skipped bool          `json:"skipped,omitempty"`
}

// validate builds the context of every file, each time on one of the engines,
// and returns the results in the order of the files. With failFast, the files
// not yet started when a file is found invalid are skipped.
func validate(engines []*native.Engine, files []string, failFast bool, logger *zap.Logger) (results []result, err error) {

	results = make([]result, len(files))
	for i := range files {
		results[i] = result{File: files[i], Skipped: true}
	}

	rm := concurrency.NewResourceManager(engines)
	if failFast {
		rm.FailFast()
	}

	for i := range files {
		rm.Run(func(lib *native.Engine) (err error) {

			now := time.Now()

			results[i].Skipped = false

			defer func() {
				results[i].Elapsed = time.Since(now)
				if err != nil {
					results[i].Error = err.Error()
					logger.Warn("invalid parameter file", zap.String("file", files[i]), zap.Error(err))
				}
			}()

			params, err := config.LoadParameters(files[i])
			if err != nil {
				return
			}

			ctx, err := params.Context(lib, bgv.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("%s: %w", files[i], err)
			}
			defer ctx.Close()

			results[i].NSlots, err = ctx.NSlots()
			return
		})
	}

	return results, rm.Wait()
}

func countFailed(results []result) (n int) {
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return
}
