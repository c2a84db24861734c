// Command bgvctx builds and inspects BGV contexts from parameter files.
package main

import (
	"fmt"
	"os"

	"github.com/Pro7ech/hebind/config"
	"github.com/Pro7ech/hebind/native"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bgvctx",
	Short: "Build and inspect BGV contexts",
	Long: `bgvctx builds BGV contexts from JSON or YAML parameter files and reports
their modulus chain, slot structure and estimated security.

Every flag can also be set through the environment (BGVCTX_<FLAG>) or a
configuration file (--config-file).`,
	Version:       fmt.Sprintf("%s (built %s, engine %s)", version, buildDate, native.EngineVersion),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(defaultsCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup returns the configuration of the command and its logger.
func setup(cmd *cobra.Command) (cfg config.Config, logger *zap.Logger, err error) {

	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return
	}

	if cfg, err = config.NewConfig(v); err != nil {
		return
	}

	logger, err = cfg.Logger()
	return
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of bgvctx and of the native engine",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bgvctx %s (built %s)\n", version, buildDate)
		fmt.Fprintf(cmd.OutOrStdout(), "engine %s\n", native.NewEngine().Version())
	},
}
