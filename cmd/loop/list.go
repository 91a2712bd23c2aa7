package loop

import (
	"strconv"

	"github.com/markusressel/pidctl/cmd/global"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured control loops",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfiguration(); err != nil {
			return err
		}

		var rows [][]string
		for _, loopConf := range configuration.CurrentConfig.Loops {
			rows = append(rows, createRow(loopConf))
		}

		return ui.PrintTable(
			[]string{"ID", "Plant", "Channel", "Type", "Kp", "Ki", "Kd", "Integrator Zone", "Setpoint", "Drive"},
			rows,
			!global.NoColor,
		)
	},
}

func createRow(loopConf configuration.LoopConfig) []string {
	controllerType := "PD"
	var kp, ki, kd float64
	zone := "-"
	if loopConf.PID != nil {
		controllerType = "PID"
		kp, ki, kd = loopConf.PID.Kp, loopConf.PID.Ki, loopConf.PID.Kd
		if loopConf.PID.IntegratorZone.IsSet() {
			zone = formatFloat(loopConf.PID.IntegratorZone.Get())
		}
	} else if loopConf.PD != nil {
		kp, kd = loopConf.PD.Kp, loopConf.PD.Kd
	}

	setpoint := "loop: " + loopConf.Setpoint.Loop
	if loopConf.Setpoint.Value.IsSet() {
		setpoint = formatFloat(loopConf.Setpoint.Value.Get())
	}

	return []string{
		loopConf.ID,
		loopConf.Plant,
		loopConf.Channel,
		controllerType,
		formatFloat(kp),
		formatFloat(ki),
		formatFloat(kd),
		zone,
		setpoint,
		strconv.FormatBool(loopConf.Drive.Get()),
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func init() {
	Command.AddCommand(listCmd)
}
