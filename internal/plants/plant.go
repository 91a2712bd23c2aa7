package plants

import (
	"fmt"
	"time"

	"github.com/markusressel/pidctl/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	PlantMap = cmap.New[Plant]()
)

// Plant is a simulated physical system with a single input
// and one or more measurable channels.
type Plant interface {
	GetId() string

	GetConfig() configuration.PlantConfig

	// Channels returns the names of all measurable channels of this plant
	Channels() []string

	// GetValue returns the current value of the given channel
	GetValue(channel string) (float64, error)

	// GetInput returns the input currently applied to this plant
	GetInput() float64
	SetInput(u float64)

	// Advance integrates the plant dynamics by dt, holding the current input
	Advance(dt time.Duration)
}

func NewPlant(config configuration.PlantConfig) (Plant, error) {
	if config.Motor != nil {
		return NewMotorPlant(config), nil
	}

	if config.Lag != nil {
		return NewLagPlant(config), nil
	}

	return nil, fmt.Errorf("no matching plant type for plant: %s", config.ID)
}

func unsupportedChannel(plant Plant, channel string) error {
	return fmt.Errorf("plant %s: unsupported channel '%s'", plant.GetId(), channel)
}
