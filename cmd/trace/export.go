package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/markusressel/pidctl/internal/ui"
	"github.com/markusressel/pidctl/internal/util"
	"github.com/spf13/cobra"
)

var outputPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stored trace to a JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLoopId(); err != nil {
			return err
		}
		if len(outputPath) <= 0 {
			return errors.New("missing output path, use --output")
		}

		samples, err := openPersistence().LoadTrace(loopId)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no trace stored for loop %s", loopId)
		}
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(samples, "", "  ")
		if err != nil {
			return err
		}
		if err := util.WriteFileAtomic(outputPath, data); err != nil {
			return err
		}

		ui.Success("Exported %d samples of loop %s to %s", len(samples), loopId, outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file")
	Command.AddCommand(exportCmd)
}
