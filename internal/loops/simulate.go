package loops

import (
	"fmt"
	"time"

	"github.com/markusressel/pidctl/internal/plants"
)

// Simulate runs the given loops against their plants on a virtual clock.
// Each step ticks all loops in the given order, then advances every plant by dt.
func Simulate(loops []ControlLoop, plantList []plants.Plant, duration time.Duration, dt time.Duration) error {
	if dt <= 0 {
		return fmt.Errorf("simulation step must be > 0, was %v", dt)
	}

	steps := int(duration / dt)
	for step := 0; step < steps; step++ {
		for _, loop := range loops {
			_, err := loop.Tick(dt)
			if err != nil {
				return fmt.Errorf("step %d: %w", step, err)
			}
		}
		for _, plant := range plantList {
			plant.Advance(dt)
		}
	}

	return nil
}
