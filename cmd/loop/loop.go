package loop

import (
	"fmt"

	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/spf13/cobra"
)

var loopId string

var Command = &cobra.Command{
	Use:              "loop",
	Short:            "Control loop related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&loopId,
		"id", "i",
		"",
		"Loop ID as specified in the config",
	)
}

func loadConfiguration() error {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	return configuration.Validate()
}

func getLoopConfig(id string, loops []configuration.LoopConfig) (*configuration.LoopConfig, error) {
	var availableLoopIds []string
	for _, loopConf := range loops {
		availableLoopIds = append(availableLoopIds, loopConf.ID)
		if id == loopConf.ID {
			return &loopConf, nil
		}
	}

	return nil, fmt.Errorf("no loop with id found: %s, options: %s", id, availableLoopIds)
}
