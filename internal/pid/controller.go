package pid

import (
	"fmt"
	"time"
)

// Controller is a discrete-time Proportional-Integral-Derivative controller.
//
// The gains are expressed per second: Ki integrates the error over seconds
// and Kd differentiates the measured state over seconds. A Controller is not
// safe for concurrent use, every control loop has to own its own instance.
type Controller struct {
	// Proportional constant
	Kp float64
	// Integral constant
	Ki float64
	// Derivative constant
	Kd float64

	// IntegratorZone is the range of error values for which the integrator is taken into account.
	// If the absolute value of the error is greater than this value, the integrator is reset to zero.
	// nil means the integrator is never reset.
	IntegratorZone *float64

	// measured state of the previous update
	lastState float64
	// running sum of error * dt (in seconds)
	accumulatedError float64
}

// Terms holds the individual contributions of a single update step.
type Terms struct {
	Error float64 `json:"error"`
	P     float64 `json:"p"`
	I     float64 `json:"i"`
	D     float64 `json:"d"`
}

// Output returns the sum of all terms, which is the correction output of the controller.
func (t Terms) Output() float64 {
	return t.P + t.I + t.D
}

// NewPidController creates a new PID controller with the given constants.
//
// Using ki can add instability, prefer NewPdController unless the integral term is really needed.
// If ki is used, set integratorZone to prevent integral windup.
func NewPidController(kp, ki, kd float64, integratorZone *float64) *Controller {
	return &Controller{
		Kp:             kp,
		Ki:             ki,
		Kd:             kd,
		IntegratorZone: integratorZone,
	}
}

// NewPdController creates a new controller with the given kp and kd constants, omitting ki.
func NewPdController(kp, kd float64) *Controller {
	return &Controller{
		Kp: kp,
		Kd: kd,
	}
}

// Update advances the controller with the given setpoint, measured state and
// the time that elapsed since the previous update, and returns the correction output.
//
// Update panics if dt is not positive.
func (c *Controller) Update(setpoint float64, state float64, dt time.Duration) float64 {
	return c.UpdateTerms(setpoint, state, dt).Output()
}

// UpdateTerms behaves exactly like Update, but returns the individual terms of the output.
func (c *Controller) UpdateTerms(setpoint float64, state float64, dt time.Duration) Terms {
	if dt <= 0 {
		panic(nonsensicalDeltaTime(dt.Seconds()))
	}
	return c.step(setpoint, state, dt.Seconds())
}

// UpdateSeconds is the same as Update, with dt given in (fractional) seconds.
//
// Deprecated: use Update, which takes a time.Duration and cannot be confused
// with other time units.
func (c *Controller) UpdateSeconds(setpoint float64, state float64, dt float64) float64 {
	if !(dt > 0) {
		panic(nonsensicalDeltaTime(dt))
	}
	return c.step(setpoint, state, dt).Output()
}

func (c *Controller) step(setpoint float64, state float64, dt float64) Terms {
	err := setpoint - state

	// outside of the integrator zone the accumulated error is dropped
	if c.IntegratorZone != nil && abs(err) > *c.IntegratorZone {
		c.accumulatedError = 0
	} else {
		c.accumulatedError += err * dt
	}

	terms := Terms{
		Error: err,
		P:     c.Kp * err,
		I:     c.Ki * c.accumulatedError,
		D:     c.Kd * (state - c.lastState) / dt,
	}

	c.lastState = state

	return terms
}

func nonsensicalDeltaTime(dt float64) string {
	if dt == 0 {
		return "PID update called with a nonsensical delta time of 0"
	}
	return fmt.Sprintf("PID update called with a nonsensical delta time of %v", dt)
}
