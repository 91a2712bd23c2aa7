package plants

import (
	"sync"
	"time"

	"github.com/markusressel/pidctl/internal/configuration"
)

// LagPlant is a first order lag, y' = (g·u − y) / τ
type LagPlant struct {
	Config configuration.PlantConfig `json:"config"`

	mu    sync.RWMutex
	value float64
	input float64
}

func NewLagPlant(config configuration.PlantConfig) *LagPlant {
	return &LagPlant{
		Config: config,
		value:  config.Lag.Value,
	}
}

func (p *LagPlant) GetId() string {
	return p.Config.ID
}

func (p *LagPlant) GetConfig() configuration.PlantConfig {
	return p.Config
}

func (p *LagPlant) Channels() []string {
	return p.Config.Channels()
}

func (p *LagPlant) GetValue(channel string) (float64, error) {
	if channel != configuration.ChannelValue {
		return 0, unsupportedChannel(p, channel)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value, nil
}

func (p *LagPlant) GetInput() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.input
}

func (p *LagPlant) SetInput(u float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = u
}

func (p *LagPlant) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := rk4Step(p.derive, []float64{p.value}, p.input, dt.Seconds())
	p.value = next[0]
}

func (p *LagPlant) derive(x []float64, u float64) []float64 {
	lag := p.Config.Lag
	return []float64{(lag.Gain*u - x[0]) / lag.TimeConstant}
}
