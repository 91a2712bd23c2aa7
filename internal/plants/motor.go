package plants

import (
	"sync"
	"time"

	"github.com/markusressel/pidctl/internal/configuration"
)

// MotorPlant is a DC motor driven by a torque proportional to its input:
//
//	θ' = ω
//	ω' = (k·u − b·ω) / J
type MotorPlant struct {
	Config configuration.PlantConfig `json:"config"`

	mu       sync.RWMutex
	position float64
	velocity float64
	input    float64
}

func NewMotorPlant(config configuration.PlantConfig) *MotorPlant {
	return &MotorPlant{
		Config:   config,
		position: config.Motor.Position,
		velocity: config.Motor.Velocity,
	}
}

func (p *MotorPlant) GetId() string {
	return p.Config.ID
}

func (p *MotorPlant) GetConfig() configuration.PlantConfig {
	return p.Config
}

func (p *MotorPlant) Channels() []string {
	return p.Config.Channels()
}

func (p *MotorPlant) GetValue(channel string) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch channel {
	case configuration.ChannelPosition:
		return p.position, nil
	case configuration.ChannelVelocity:
		return p.velocity, nil
	default:
		return 0, unsupportedChannel(p, channel)
	}
}

func (p *MotorPlant) GetInput() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.input
}

func (p *MotorPlant) SetInput(u float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = u
}

func (p *MotorPlant) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := rk4Step(p.derive, []float64{p.position, p.velocity}, p.input, dt.Seconds())
	p.position = next[0]
	p.velocity = next[1]
}

func (p *MotorPlant) derive(x []float64, u float64) []float64 {
	motor := p.Config.Motor
	velocity := x[1]
	acceleration := (motor.TorqueConstant*u - motor.Friction*velocity) / motor.Inertia
	return []float64{velocity, acceleration}
}
