package trace

import (
	"fmt"

	"github.com/markusressel/pidctl/cmd/global"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored traces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pers := openPersistence()
		ids, err := pers.ListTraces()
		if err != nil {
			return err
		}
		if len(ids) <= 0 {
			ui.Info("No traces stored")
			return nil
		}

		var rows [][]string
		for _, id := range ids {
			samples, err := pers.LoadTrace(id)
			if err != nil {
				ui.Warning("Unable to load trace of loop %s: %v", id, err)
				continue
			}
			rows = append(rows, []string{id, fmt.Sprintf("%d", len(samples))})
		}

		return ui.PrintTable([]string{"Loop", "Samples"}, rows, !global.NoColor)
	},
}

func init() {
	Command.AddCommand(listCmd)
}
