package trace

import (
	"errors"
	"fmt"

	"github.com/markusressel/pidctl/cmd/global"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/loops"
	"github.com/markusressel/pidctl/internal/persistence"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/markusressel/pidctl/internal/util"
	"github.com/spf13/cobra"
)

var loopId string

var Command = &cobra.Command{
	Use:              "trace",
	Short:            "Commands for recorded loop traces",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&loopId,
		"id", "i",
		"",
		"Loop ID of the trace",
	)
}

func openPersistence() persistence.Persistence {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Debug("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	return persistence.NewPersistence(configuration.CurrentConfig.DbPath)
}

func requireLoopId() error {
	if len(loopId) <= 0 {
		return errors.New("missing loop id, use --id")
	}
	return nil
}

// PrintTrace prints a summary and a setpoint / state graph of the given samples
func PrintTrace(id string, samples []loops.Sample) {
	if len(samples) <= 0 {
		ui.Warning("Trace of loop %s is empty", id)
		return
	}

	setpoints := make([]float64, len(samples))
	states := make([]float64, len(samples))
	errs := make([]float64, len(samples))
	for i, sample := range samples {
		setpoints[i] = sample.Setpoint
		states[i] = sample.State
		errs[i] = sample.Terms.Error
	}
	last := samples[len(samples)-1]

	err := ui.PrintTable(
		[]string{"Loop", "Samples", "Duration", "Setpoint", "State", "Output", "Mean |Error|", "Min Error", "Max Error"},
		[][]string{{
			id,
			fmt.Sprintf("%d", len(samples)),
			(last.Elapsed - samples[0].Elapsed).String(),
			fmt.Sprintf("%.4f", last.Setpoint),
			fmt.Sprintf("%.4f", last.State),
			fmt.Sprintf("%.4f", last.Output),
			fmt.Sprintf("%.4f", util.AvgAbs(errs)),
			fmt.Sprintf("%.4f", util.Min(errs)),
			fmt.Sprintf("%.4f", util.Max(errs)),
		}},
		!global.NoColor,
	)
	if err != nil {
		ui.Warning("Unable to print table: %v", err)
	}

	width := int(util.Coerce(float64(len(samples)), 10, 100))
	ui.Printfln(ui.PlotSeries("setpoint (blue) / state (red)", width, setpoints, states))
}
