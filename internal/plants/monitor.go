package plants

import (
	"context"
	"time"

	"github.com/markusressel/pidctl/internal/ui"
)

type PlantMonitor interface {
	Run(ctx context.Context) error
}

type plantMonitor struct {
	plant    Plant
	tickRate time.Duration
}

func NewPlantMonitor(plant Plant, tickRate time.Duration) PlantMonitor {
	return plantMonitor{
		plant:    plant,
		tickRate: tickRate,
	}
}

// Run advances the plant by the wall clock time elapsed between two ticks
func (m plantMonitor) Run(ctx context.Context) error {
	ui.Debug("Starting plant monitor for %s with tick rate %v", m.plant.GetId(), m.tickRate)

	ticker := time.NewTicker(m.tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.plant.Advance(now.Sub(last))
			last = now
		}
	}
}
