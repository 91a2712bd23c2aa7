package loops

import (
	"context"
	"testing"
	"time"

	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/pid"
	"github.com/markusressel/pidctl/internal/plants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockPlant struct {
	ID    string
	Value float64
	Input float64
}

func (p *MockPlant) GetId() string {
	return p.ID
}

func (p *MockPlant) GetConfig() configuration.PlantConfig {
	return configuration.PlantConfig{ID: p.ID}
}

func (p *MockPlant) Channels() []string {
	return []string{configuration.ChannelValue}
}

func (p *MockPlant) GetValue(channel string) (float64, error) {
	return p.Value, nil
}

func (p *MockPlant) GetInput() float64 {
	return p.Input
}

func (p *MockPlant) SetInput(u float64) {
	p.Input = u
}

func (p *MockPlant) Advance(dt time.Duration) {}

func createPLoop(id string, kp float64) configuration.LoopConfig {
	return configuration.LoopConfig{
		ID:       id,
		Plant:    "plant",
		Channel:  configuration.ChannelValue,
		Setpoint: configuration.SetpointConfig{Value: configuration.Some(10.0)},
		PD:       &configuration.PdLoopConfig{Kp: kp},
	}
}

func zone(value float64) *float64 {
	return &value
}

func TestNewControlLoop_UnsupportedChannel(t *testing.T) {
	// GIVEN
	config := createPLoop("loop", 1)
	config.Channel = configuration.ChannelVelocity

	// WHEN
	loop, err := NewControlLoop(config, &MockPlant{ID: "plant"}, ConstantSetpoint{})

	// THEN
	assert.Nil(t, loop)
	assert.EqualError(t, err, "loop loop: unsupported channel 'velocity' for plant 'plant'")
}

func TestNewControlLoop_MissingController(t *testing.T) {
	// GIVEN
	config := createPLoop("loop", 1)
	config.PD = nil

	// WHEN
	_, err := NewControlLoop(config, &MockPlant{ID: "plant"}, ConstantSetpoint{})

	// THEN
	assert.EqualError(t, err, "no matching controller type for loop: loop")
}

func TestTick_DrivesPlant(t *testing.T) {
	// GIVEN
	plant := &MockPlant{ID: "plant", Value: 4.0}
	loop, err := NewControlLoop(createPLoop("loop", 2), plant, ConstantSetpoint{Value: 10})
	require.NoError(t, err)

	// WHEN
	sample, err := loop.Tick(time.Second)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 12.0, sample.Output)
	assert.Equal(t, 12.0, plant.Input)
	assert.Equal(t, 10.0, sample.Setpoint)
	assert.Equal(t, 4.0, sample.State)
	assert.Equal(t, pid.Terms{Error: 6, P: 12}, sample.Terms)
	assert.Equal(t, time.Second, sample.Elapsed)
}

func TestTick_WithoutDriveKeepsPlantInput(t *testing.T) {
	// GIVEN
	plant := &MockPlant{ID: "plant", Value: 4.0, Input: 1.0}
	config := createPLoop("loop", 2)
	config.Drive = configuration.DefaultTrueBool{Optional: configuration.Some(false)}
	loop, err := NewControlLoop(config, plant, ConstantSetpoint{Value: 10})
	require.NoError(t, err)

	// WHEN
	_, err = loop.Tick(time.Second)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 1.0, plant.Input)
	output, ok := loop.GetLastOutput()
	assert.True(t, ok)
	assert.Equal(t, 12.0, output)
}

func TestTick_ZeroDeltaTimePanics(t *testing.T) {
	// GIVEN
	loop, err := NewControlLoop(createPLoop("loop", 1), &MockPlant{ID: "plant"}, ConstantSetpoint{})
	require.NoError(t, err)

	// WHEN / THEN
	assert.Panics(t, func() {
		_, _ = loop.Tick(0)
	})
}

func TestTick_TraceIsBounded(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.TraceSize = 3
	defer func() { configuration.CurrentConfig.TraceSize = 0 }()
	plant := &MockPlant{ID: "plant"}
	loop, err := NewControlLoop(createPLoop("loop", 1), plant, ConstantSetpoint{Value: 10})
	require.NoError(t, err)

	// WHEN
	for i := 0; i < 5; i++ {
		plant.Value = float64(i)
		_, err = loop.Tick(time.Second)
		require.NoError(t, err)
	}

	// THEN
	trace := loop.Trace()
	assert.Len(t, trace, 3)
	assert.Equal(t, 2.0, trace[0].State)
	assert.Equal(t, 4.0, trace[2].State)
	assert.Equal(t, 5*time.Second, trace[2].Elapsed)
}

func TestSnapshot(t *testing.T) {
	// GIVEN
	configuration.CurrentConfig.ErrorWindowSize = 2
	defer func() { configuration.CurrentConfig.ErrorWindowSize = 0 }()
	plant := &MockPlant{ID: "plant"}
	loop, err := NewControlLoop(createPLoop("loop", 1), plant, ConstantSetpoint{Value: 10})
	require.NoError(t, err)

	// WHEN
	for _, value := range []float64{0, 14, 8} {
		plant.Value = value
		_, err = loop.Tick(time.Second)
		require.NoError(t, err)
	}
	snapshot := loop.Snapshot()

	// THEN
	assert.Equal(t, "loop", snapshot.Id)
	assert.Equal(t, "plant", snapshot.Plant)
	assert.True(t, snapshot.Drive)
	assert.Equal(t, Gains{Kp: 1}, snapshot.Gains)
	require.NotNil(t, snapshot.Last)
	assert.Equal(t, 8.0, snapshot.Last.State)
	// |error| of the last two ticks: 4 and 2
	assert.Equal(t, 3.0, snapshot.ErrorAvg)
	assert.Equal(t, 4.0, snapshot.ErrorMax)
}

func TestSnapshot_BeforeFirstTick(t *testing.T) {
	// GIVEN
	loop, err := NewControlLoop(createPLoop("loop", 1), &MockPlant{ID: "plant"}, ConstantSetpoint{})
	require.NoError(t, err)

	// WHEN
	snapshot := loop.Snapshot()

	// THEN
	assert.Nil(t, snapshot.Last)
	_, ok := loop.GetLastOutput()
	assert.False(t, ok)
}

func TestSetGains(t *testing.T) {
	// GIVEN
	plant := &MockPlant{ID: "plant"}
	loop, err := NewControlLoop(createPLoop("loop", 1), plant, ConstantSetpoint{Value: 1})
	require.NoError(t, err)
	_, err = loop.Tick(time.Second)
	require.NoError(t, err)

	// WHEN
	err = loop.SetGains(Gains{Kp: 0, Ki: 2, IntegratorZone: zone(5)})
	require.NoError(t, err)
	sample, err := loop.Tick(time.Second)
	require.NoError(t, err)

	// THEN
	// the accumulated error of the first tick is kept
	assert.Equal(t, 4.0, sample.Output)
	gains := loop.GetGains()
	assert.Equal(t, 2.0, gains.Ki)
	require.NotNil(t, gains.IntegratorZone)
	assert.Equal(t, 5.0, *gains.IntegratorZone)
}

func TestSetGains_NegativeIntegratorZone(t *testing.T) {
	// GIVEN
	loop, err := NewControlLoop(createPLoop("loop", 1), &MockPlant{ID: "plant"}, ConstantSetpoint{})
	require.NoError(t, err)

	// WHEN
	err = loop.SetGains(Gains{Kp: 2, IntegratorZone: zone(-1)})

	// THEN
	assert.EqualError(t, err, "loop loop: integratorZone must be >= 0")
	assert.Equal(t, Gains{Kp: 1}, loop.GetGains())
}

func TestLoopOutputSetpoint(t *testing.T) {
	// GIVEN
	outer, err := NewControlLoop(createPLoop("outer", 3), &MockPlant{ID: "plant"}, ConstantSetpoint{Value: 1})
	require.NoError(t, err)
	setpoint := LoopOutputSetpoint{Loop: outer}

	// WHEN
	_, errBefore := setpoint.GetSetpoint()
	_, err = outer.Tick(time.Second)
	require.NoError(t, err)
	value, errAfter := setpoint.GetSetpoint()

	// THEN
	assert.ErrorIs(t, errBefore, ErrNoOutput)
	assert.NoError(t, errAfter)
	assert.Equal(t, 3.0, value)
}

func TestRun_StopsWithContext(t *testing.T) {
	// GIVEN
	config := createPLoop("loop", 1)
	config.TickRate = time.Millisecond
	plant := &MockPlant{ID: "plant"}
	loop, err := NewControlLoop(config, plant, ConstantSetpoint{Value: 1})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// WHEN
	err = loop.Run(ctx)

	// THEN
	assert.NoError(t, err)
	assert.NotEmpty(t, loop.Trace())
	for _, sample := range loop.Trace() {
		assert.Greater(t, sample.Elapsed, time.Duration(0))
	}
}

func TestEvaluationOrder(t *testing.T) {
	// GIVEN
	position := createPLoop("position", 1)
	velocity := createPLoop("velocity", 1)
	velocity.Setpoint = configuration.SetpointConfig{Loop: "position"}
	current := createPLoop("current", 1)
	current.Setpoint = configuration.SetpointConfig{Loop: "velocity"}
	standalone := createPLoop("standalone", 1)

	// WHEN
	order, err := EvaluationOrder([]configuration.LoopConfig{current, standalone, velocity, position})

	// THEN
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"position", "velocity", "current", "standalone"}, order)
	indexOf := func(id string) int {
		for idx, value := range order {
			if value == id {
				return idx
			}
		}
		return -1
	}
	assert.Less(t, indexOf("position"), indexOf("velocity"))
	assert.Less(t, indexOf("velocity"), indexOf("current"))
}

func TestEvaluationOrder_Cycle(t *testing.T) {
	// GIVEN
	a := createPLoop("a", 1)
	a.Setpoint = configuration.SetpointConfig{Loop: "b"}
	b := createPLoop("b", 1)
	b.Setpoint = configuration.SetpointConfig{Loop: "a"}

	// WHEN
	_, err := EvaluationOrder([]configuration.LoopConfig{a, b})

	// THEN
	assert.ErrorContains(t, err, "loop cascade cycle detected")
}

func TestEvaluationOrder_SelfReference(t *testing.T) {
	// GIVEN
	loop := createPLoop("position", 1)
	loop.Setpoint = configuration.SetpointConfig{Loop: "position"}

	// WHEN
	order, err := EvaluationOrder([]configuration.LoopConfig{loop})

	// THEN
	assert.Nil(t, order)
	assert.EqualError(t, err, "loop position: a loop cannot use its own output as setpoint")
}

func TestCreateLoops_SelfReference(t *testing.T) {
	// GIVEN
	plant := createMotor()
	loop := createPLoop("position", 1)
	loop.Plant = plant.GetId()
	loop.Setpoint = configuration.SetpointConfig{Loop: "position"}

	// WHEN
	result, err := CreateLoops([]configuration.LoopConfig{loop}, map[string]plants.Plant{plant.GetId(): plant})

	// THEN
	assert.Nil(t, result)
	assert.EqualError(t, err, "loop position: a loop cannot use its own output as setpoint")
}

func createMotor() plants.Plant {
	plant, _ := plants.NewPlant(configuration.PlantConfig{
		ID: "wheel",
		Motor: &configuration.MotorPlantConfig{
			Inertia:        0.01,
			Friction:       0.1,
			TorqueConstant: 0.05,
		},
	})
	return plant
}

func TestSimulate_CascadeReachesPosition(t *testing.T) {
	// GIVEN
	motor := createMotor()
	configs := []configuration.LoopConfig{
		{
			ID:       "velocity",
			Plant:    "wheel",
			Channel:  configuration.ChannelVelocity,
			Setpoint: configuration.SetpointConfig{Loop: "position"},
			PID:      &configuration.PidLoopConfig{Kp: 2, Ki: 1, IntegratorZone: configuration.Some(5.0)},
		},
		{
			ID:       "position",
			Plant:    "wheel",
			Channel:  configuration.ChannelPosition,
			Drive:    configuration.DefaultTrueBool{Optional: configuration.Some(false)},
			Setpoint: configuration.SetpointConfig{Value: configuration.Some(3.14)},
			PD:       &configuration.PdLoopConfig{Kp: 4},
		},
	}
	loops, err := CreateLoops(configs, map[string]plants.Plant{"wheel": motor})
	require.NoError(t, err)
	require.Len(t, loops, 2)
	assert.Equal(t, "position", loops[0].GetId())

	// WHEN
	err = Simulate(loops, []plants.Plant{motor}, 20*time.Second, 10*time.Millisecond)

	// THEN
	require.NoError(t, err)
	position, _ := motor.GetValue(configuration.ChannelPosition)
	assert.InDelta(t, 3.14, position, 0.01)
	assert.Len(t, loops[0].Trace(), DefaultTraceSize)
}

func TestSimulate_InvalidStep(t *testing.T) {
	// WHEN
	err := Simulate(nil, nil, time.Second, 0)

	// THEN
	assert.EqualError(t, err, "simulation step must be > 0, was 0s")
}

func TestCreateLoops_UnknownPlant(t *testing.T) {
	// WHEN
	_, err := CreateLoops([]configuration.LoopConfig{createPLoop("loop", 1)}, map[string]plants.Plant{})

	// THEN
	assert.EqualError(t, err, "loop loop: no plant with id 'plant' found")
}
