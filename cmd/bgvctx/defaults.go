package main

import (
	"encoding/json"
	"fmt"

	"github.com/Pro7ech/hebind/bgv"
	"github.com/spf13/cobra"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default BGV parameters as JSON",
	Long: `Print the default BGV parameters as JSON, in the format of the
parameter files read by build and validate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		data, err := json.MarshalIndent(bgv.DefaultParameters(), "", "  ")
		if err != nil {
			return
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return
	},
}
