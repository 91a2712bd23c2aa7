package plants

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMotorConfig() configuration.PlantConfig {
	return configuration.PlantConfig{
		ID: "wheel",
		Motor: &configuration.MotorPlantConfig{
			Inertia:        0.5,
			Friction:       1.0,
			TorqueConstant: 2.0,
		},
	}
}

func createLagConfig() configuration.PlantConfig {
	return configuration.PlantConfig{
		ID: "oven",
		Lag: &configuration.LagPlantConfig{
			TimeConstant: 2.0,
			Gain:         3.0,
			Value:        20.0,
		},
	}
}

func TestNewPlant(t *testing.T) {
	// WHEN
	motor, err := NewPlant(createMotorConfig())
	require.NoError(t, err)
	lag, err := NewPlant(createLagConfig())
	require.NoError(t, err)

	// THEN
	assert.IsType(t, &MotorPlant{}, motor)
	assert.IsType(t, &LagPlant{}, lag)
	assert.Equal(t, []string{configuration.ChannelPosition, configuration.ChannelVelocity}, motor.Channels())
	assert.Equal(t, []string{configuration.ChannelValue}, lag.Channels())
}

func TestNewPlant_Unknown(t *testing.T) {
	// WHEN
	plant, err := NewPlant(configuration.PlantConfig{ID: "nothing"})

	// THEN
	assert.Nil(t, plant)
	assert.EqualError(t, err, "no matching plant type for plant: nothing")
}

func TestMotorPlant_InitialState(t *testing.T) {
	// GIVEN
	config := createMotorConfig()
	config.Motor.Position = 1.5
	config.Motor.Velocity = -2.0
	plant := NewMotorPlant(config)

	// WHEN
	position, err := plant.GetValue(configuration.ChannelPosition)
	require.NoError(t, err)
	velocity, err := plant.GetValue(configuration.ChannelVelocity)
	require.NoError(t, err)

	// THEN
	assert.Equal(t, 1.5, position)
	assert.Equal(t, -2.0, velocity)
}

func TestMotorPlant_UnsupportedChannel(t *testing.T) {
	// GIVEN
	plant := NewMotorPlant(createMotorConfig())

	// WHEN
	_, err := plant.GetValue(configuration.ChannelValue)

	// THEN
	assert.EqualError(t, err, "plant wheel: unsupported channel 'value'")
}

func TestMotorPlant_ReachesSteadyStateVelocity(t *testing.T) {
	// GIVEN
	plant := NewMotorPlant(createMotorConfig())
	plant.SetInput(1.0)

	// WHEN
	for i := 0; i < 1000; i++ {
		plant.Advance(10 * time.Millisecond)
	}

	// THEN
	// ω = k·u / b
	velocity, _ := plant.GetValue(configuration.ChannelVelocity)
	assert.InDelta(t, 2.0, velocity, 1e-6)
	position, _ := plant.GetValue(configuration.ChannelPosition)
	assert.Greater(t, position, 0.0)
}

func TestMotorPlant_MatchesAnalyticSolution(t *testing.T) {
	// GIVEN
	plant := NewMotorPlant(createMotorConfig())
	plant.SetInput(1.0)
	dt := 10 * time.Millisecond
	steps := 100

	// WHEN
	for i := 0; i < steps; i++ {
		plant.Advance(dt)
	}

	// THEN
	// ω(t) = ω∞ (1 - e^(-t·b/J))
	elapsed := float64(steps) * dt.Seconds()
	expected := 2.0 * (1 - math.Exp(-elapsed*1.0/0.5))
	velocity, _ := plant.GetValue(configuration.ChannelVelocity)
	assert.InDelta(t, expected, velocity, 1e-6)
}

func TestLagPlant_ApproachesGainTimesInput(t *testing.T) {
	// GIVEN
	plant := NewLagPlant(createLagConfig())
	plant.SetInput(10.0)

	// WHEN
	for i := 0; i < 100; i++ {
		plant.Advance(100 * time.Millisecond)
	}

	// THEN
	// y(t) = g·u + (y0 - g·u) e^(-t/τ)
	expected := 30.0 + (20.0-30.0)*math.Exp(-10.0/2.0)
	value, err := plant.GetValue(configuration.ChannelValue)
	require.NoError(t, err)
	assert.InDelta(t, expected, value, 1e-6)
	assert.Equal(t, 10.0, plant.GetInput())
}

func TestPlant_AdvanceIgnoresNonPositiveDeltaTime(t *testing.T) {
	// GIVEN
	plant := NewLagPlant(createLagConfig())
	plant.SetInput(10.0)

	// WHEN
	plant.Advance(0)
	plant.Advance(-time.Second)

	// THEN
	value, _ := plant.GetValue(configuration.ChannelValue)
	assert.Equal(t, 20.0, value)
}

func TestRk4Step_HarmonicOscillator(t *testing.T) {
	// GIVEN
	oscillator := func(x []float64, u float64) []float64 {
		return []float64{x[1], -x[0]}
	}
	x := []float64{1.0, 0.0}
	dt := 0.01
	steps := 100

	// WHEN
	for i := 0; i < steps; i++ {
		x = rk4Step(oscillator, x, 0, dt)
	}

	// THEN
	assert.InDelta(t, math.Cos(float64(steps)*dt), x[0], 1e-4)
	assert.InDelta(t, -math.Sin(float64(steps)*dt), x[1], 1e-4)
}

func TestPlantMonitor_AdvancesPlant(t *testing.T) {
	// GIVEN
	plant := NewLagPlant(createLagConfig())
	plant.SetInput(100.0)
	monitor := NewPlantMonitor(plant, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// WHEN
	err := monitor.Run(ctx)

	// THEN
	assert.NoError(t, err)
	value, _ := plant.GetValue(configuration.ChannelValue)
	assert.Greater(t, value, 20.0)
}
