package trace

import (
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stored trace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLoopId(); err != nil {
			return err
		}

		if err := openPersistence().DeleteTrace(loopId); err != nil {
			return err
		}

		ui.Success("Deleted trace of loop %s", loopId)
		return nil
	},
}

func init() {
	Command.AddCommand(deleteCmd)
}
