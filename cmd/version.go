package cmd

import (
	"github.com/markusressel/pidctl/internal/pid"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pidctl",
	Long:  `All software has versions. This is pidctl's`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Printfln("%s (math backend: %s)", version, pid.MathBackend)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
