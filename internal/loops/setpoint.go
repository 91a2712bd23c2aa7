package loops

import (
	"errors"
	"fmt"
)

// ErrNoOutput is returned by a LoopOutputSetpoint while the referenced
// loop has not completed its first tick.
var ErrNoOutput = errors.New("loop has not produced an output yet")

type SetpointSource interface {
	GetSetpoint() (float64, error)
}

// ConstantSetpoint always returns the same value
type ConstantSetpoint struct {
	Value float64
}

func (s ConstantSetpoint) GetSetpoint() (float64, error) {
	return s.Value, nil
}

// LoopOutputSetpoint uses the last output of another loop as setpoint,
// which allows cascading loops, e.g. position -> velocity.
type LoopOutputSetpoint struct {
	Loop ControlLoop
}

func (s LoopOutputSetpoint) GetSetpoint() (float64, error) {
	output, ok := s.Loop.GetLastOutput()
	if !ok {
		return 0, fmt.Errorf("setpoint loop %s: %w", s.Loop.GetId(), ErrNoOutput)
	}
	return output, nil
}
