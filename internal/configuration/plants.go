package configuration

const (
	ChannelPosition = "position"
	ChannelVelocity = "velocity"
	ChannelValue    = "value"
)

type PlantConfig struct {
	ID    string            `json:"id"`
	Motor *MotorPlantConfig `json:"motor,omitempty"`
	Lag   *LagPlantConfig   `json:"lag,omitempty"`
}

// MotorPlantConfig describes a simulated DC motor with the state [position, velocity].
type MotorPlantConfig struct {
	// rotor inertia (J)
	Inertia float64 `json:"inertia"`
	// viscous friction coefficient (b)
	Friction float64 `json:"friction"`
	// torque produced per unit of input (k)
	TorqueConstant float64 `json:"torqueConstant"`
	// initial state
	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
}

// LagPlantConfig describes a simulated first order lag, e.g. a heater.
type LagPlantConfig struct {
	TimeConstant float64 `json:"timeConstant"`
	Gain         float64 `json:"gain"`
	// initial value
	Value float64 `json:"value"`
}

// Channels returns the measurable channels of the plant type
func (c PlantConfig) Channels() []string {
	switch {
	case c.Motor != nil:
		return []string{ChannelPosition, ChannelVelocity}
	case c.Lag != nil:
		return []string{ChannelValue}
	default:
		return nil
	}
}
