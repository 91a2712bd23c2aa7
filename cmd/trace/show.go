package trace

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Plot a stored trace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLoopId(); err != nil {
			return err
		}

		samples, err := openPersistence().LoadTrace(loopId)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no trace stored for loop %s", loopId)
		}
		if err != nil {
			return err
		}

		PrintTrace(loopId, samples)
		return nil
	},
}

func init() {
	Command.AddCommand(showCmd)
}
