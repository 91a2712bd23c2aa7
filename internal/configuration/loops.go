package configuration

import "time"

type LoopConfig struct {
	ID string `json:"id"`
	// Plant is the id of the plant whose channel is measured
	Plant string `json:"plant"`
	// Channel is the measured channel of the plant
	Channel string `json:"channel"`
	// Drive controls whether the loop output is applied to the plant input.
	// Outer loops of a cascade typically only provide the setpoint of an inner loop.
	Drive DefaultTrueBool `json:"drive"`
	// TickRate overrides the global loop tick rate, if set
	TickRate time.Duration `json:"tickRate,omitempty"`

	Setpoint SetpointConfig `json:"setpoint"`

	PID *PidLoopConfig `json:"pid,omitempty"`
	PD  *PdLoopConfig  `json:"pd,omitempty"`
}

type SetpointConfig struct {
	// Value is a constant setpoint
	Value Optional[float64] `json:"value"`
	// Loop is the id of another loop whose output is used as the setpoint
	Loop string `json:"loop,omitempty"`
}

type PidLoopConfig struct {
	Kp             float64           `json:"kp"`
	Ki             float64           `json:"ki"`
	Kd             float64           `json:"kd"`
	IntegratorZone Optional[float64] `json:"integratorZone"`
}

type PdLoopConfig struct {
	Kp float64 `json:"kp"`
	Kd float64 `json:"kd"`
}
