package loop

import (
	"errors"
	"fmt"
	"time"

	"github.com/markusressel/pidctl/cmd/trace"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/loops"
	"github.com/markusressel/pidctl/internal/persistence"
	"github.com/markusressel/pidctl/internal/plants"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	duration time.Duration
	dt       time.Duration
	save     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate all configured loops on a virtual clock and plot one of them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(loopId) <= 0 {
			return errors.New("missing loop id, use --id")
		}
		if err := loadConfiguration(); err != nil {
			return err
		}
		if _, err := getLoopConfig(loopId, configuration.CurrentConfig.Loops); err != nil {
			return err
		}
		if dt <= 0 {
			return fmt.Errorf("dt must be > 0, was %v", dt)
		}

		// keep the whole run
		configuration.CurrentConfig.TraceSize = int(duration/dt) + 1

		var plantList []plants.Plant
		plantsById := map[string]plants.Plant{}
		for _, plantConf := range configuration.CurrentConfig.Plants {
			plant, err := plants.NewPlant(plantConf)
			if err != nil {
				return err
			}
			plantList = append(plantList, plant)
			plantsById[plantConf.ID] = plant
		}

		loopList, err := loops.CreateLoops(configuration.CurrentConfig.Loops, plantsById)
		if err != nil {
			return err
		}

		ui.Info("Simulating %d loop(s) for %v with a step of %v...", len(loopList), duration, dt)
		err = loops.Simulate(loopList, plantList, duration, dt)
		if err != nil {
			return err
		}

		var selected loops.ControlLoop
		for _, loop := range loopList {
			if loop.GetId() == loopId {
				selected = loop
			}
		}

		samples := selected.Trace()
		trace.PrintTrace(loopId, samples)

		if save {
			pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
			if err := pers.Init(); err != nil {
				return err
			}
			if err := pers.SaveTrace(loopId, samples); err != nil {
				return err
			}
			ui.Success("Saved trace of loop %s", loopId)
		}

		return nil
	},
}

func init() {
	simulateCmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "Simulated time")
	simulateCmd.Flags().DurationVar(&dt, "dt", 10*time.Millisecond, "Simulation step")
	simulateCmd.Flags().BoolVar(&save, "save", false, "Store the trace of the selected loop")
	Command.AddCommand(simulateCmd)
}
