package loops

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/pid"
	"github.com/markusressel/pidctl/internal/plants"
	"github.com/markusressel/pidctl/internal/ui"
	"github.com/markusressel/pidctl/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/exp/slices"
)

const (
	DefaultTickRate        = 20 * time.Millisecond
	DefaultTraceSize       = 500
	DefaultErrorWindowSize = 50
)

var (
	LoopMap = cmap.New[ControlLoop]()
)

type Gains struct {
	Kp             float64  `json:"kp"`
	Ki             float64  `json:"ki"`
	Kd             float64  `json:"kd"`
	IntegratorZone *float64 `json:"integratorZone,omitempty"`
}

// Sample is a single recorded tick of a control loop
type Sample struct {
	// Elapsed is the loop time at the end of this tick
	Elapsed  time.Duration `json:"elapsed"`
	Setpoint float64       `json:"setpoint"`
	State    float64       `json:"state"`
	Output   float64       `json:"output"`
	Terms    pid.Terms     `json:"terms"`
}

type Snapshot struct {
	Id       string  `json:"id"`
	Plant    string  `json:"plant"`
	Channel  string  `json:"channel"`
	Drive    bool    `json:"drive"`
	Gains    Gains   `json:"gains"`
	Last     *Sample `json:"last,omitempty"`
	ErrorAvg float64 `json:"errorAvg"`
	ErrorMax float64 `json:"errorMax"`
}

type ControlLoop interface {
	GetId() string
	GetConfig() configuration.LoopConfig

	// Run ticks the loop at its tick rate until ctx is done
	Run(ctx context.Context) error
	// Tick reads setpoint and state, updates the controller and drives the plant
	Tick(dt time.Duration) (Sample, error)

	GetGains() Gains
	SetGains(gains Gains) error

	// GetLastOutput returns the output of the last tick, if there was one
	GetLastOutput() (float64, bool)

	Snapshot() Snapshot
	// Trace returns a copy of the recorded samples, oldest first
	Trace() []Sample
}

type controlLoop struct {
	config   configuration.LoopConfig
	plant    plants.Plant
	setpoint SetpointSource
	tickRate time.Duration
	drive    bool

	mu          sync.Mutex
	controller  *pid.Controller
	errorWindow *rolling.PointPolicy
	traceSize   int
	trace       []Sample
	elapsed     time.Duration
	last        *Sample
}

func NewControlLoop(config configuration.LoopConfig, plant plants.Plant, setpoint SetpointSource) (ControlLoop, error) {
	if !slices.Contains(plant.Channels(), config.Channel) {
		return nil, fmt.Errorf("loop %s: unsupported channel '%s' for plant '%s'", config.ID, config.Channel, plant.GetId())
	}

	var controller *pid.Controller
	switch {
	case config.PID != nil:
		controller = pid.NewPidController(config.PID.Kp, config.PID.Ki, config.PID.Kd, config.PID.IntegratorZone.Ptr())
	case config.PD != nil:
		controller = pid.NewPdController(config.PD.Kp, config.PD.Kd)
	default:
		return nil, fmt.Errorf("no matching controller type for loop: %s", config.ID)
	}

	tickRate := orDefault(config.TickRate, orDefault(configuration.CurrentConfig.LoopTickRate, DefaultTickRate))
	traceSize := orDefault(configuration.CurrentConfig.TraceSize, DefaultTraceSize)
	windowSize := orDefault(configuration.CurrentConfig.ErrorWindowSize, DefaultErrorWindowSize)

	return &controlLoop{
		config:      config,
		plant:       plant,
		setpoint:    setpoint,
		tickRate:    tickRate,
		drive:       config.Drive.Get(),
		controller:  controller,
		errorWindow: util.CreateRollingWindow(windowSize),
		traceSize:   traceSize,
	}, nil
}

func orDefault[T int | time.Duration](value T, fallback T) T {
	if value <= 0 {
		return fallback
	}
	return value
}

func (l *controlLoop) GetId() string {
	return l.config.ID
}

func (l *controlLoop) GetConfig() configuration.LoopConfig {
	return l.config
}

func (l *controlLoop) Run(ctx context.Context) error {
	ui.Info("Starting control loop %s (plant: %s, channel: %s, tick rate: %v)", l.GetId(), l.plant.GetId(), l.config.Channel, l.tickRate)

	ticker := time.NewTicker(l.tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			if dt <= 0 {
				ui.Debug("Loop %s: skipping tick without elapsed time", l.GetId())
				continue
			}
			last = now

			_, err := l.Tick(dt)
			if errors.Is(err, ErrNoOutput) {
				ui.Debug("Loop %s: waiting for setpoint: %v", l.GetId(), err)
				continue
			}
			if err != nil {
				return fmt.Errorf("loop %s: %w", l.GetId(), err)
			}
		}
	}
}

func (l *controlLoop) Tick(dt time.Duration) (Sample, error) {
	setpoint, err := l.setpoint.GetSetpoint()
	if err != nil {
		return Sample{}, err
	}
	state, err := l.plant.GetValue(l.config.Channel)
	if err != nil {
		return Sample{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	terms := l.controller.UpdateTerms(setpoint, state, dt)
	output := terms.Output()
	if l.drive {
		l.plant.SetInput(output)
	}

	l.elapsed += dt
	sample := Sample{
		Elapsed:  l.elapsed,
		Setpoint: setpoint,
		State:    state,
		Output:   output,
		Terms:    terms,
	}
	l.errorWindow.Append(math.Abs(terms.Error))
	l.appendTrace(sample)
	l.last = &sample

	ui.Debug("Loop %s: setpoint %.4f, state %.4f, output %.4f", l.GetId(), setpoint, state, output)

	return sample, nil
}

// appendTrace records a sample, dropping the oldest one if the trace is full
func (l *controlLoop) appendTrace(sample Sample) {
	if len(l.trace) >= l.traceSize {
		l.trace = append(l.trace[:0], l.trace[1:]...)
	}
	l.trace = append(l.trace, sample)
}

func (l *controlLoop) GetGains() Gains {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gains()
}

func (l *controlLoop) gains() Gains {
	gains := Gains{
		Kp: l.controller.Kp,
		Ki: l.controller.Ki,
		Kd: l.controller.Kd,
	}
	if l.controller.IntegratorZone != nil {
		zone := *l.controller.IntegratorZone
		gains.IntegratorZone = &zone
	}
	return gains
}

// SetGains replaces the gains of the controller. The controller keeps its
// accumulated error and last state.
func (l *controlLoop) SetGains(gains Gains) error {
	if gains.IntegratorZone != nil && *gains.IntegratorZone < 0 {
		return fmt.Errorf("loop %s: integratorZone must be >= 0", l.GetId())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.controller.Kp = gains.Kp
	l.controller.Ki = gains.Ki
	l.controller.Kd = gains.Kd
	l.controller.IntegratorZone = nil
	if gains.IntegratorZone != nil {
		zone := *gains.IntegratorZone
		l.controller.IntegratorZone = &zone
	}

	ui.Info("Loop %s: gains changed to kp=%v ki=%v kd=%v", l.GetId(), gains.Kp, gains.Ki, gains.Kd)
	return nil
}

func (l *controlLoop) GetLastOutput() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return 0, false
	}
	return l.last.Output, true
}

func (l *controlLoop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := Snapshot{
		Id:       l.GetId(),
		Plant:    l.config.Plant,
		Channel:  l.config.Channel,
		Drive:    l.drive,
		Gains:    l.gains(),
		ErrorAvg: util.GetWindowAvg(l.errorWindow),
		ErrorMax: util.GetWindowMax(l.errorWindow),
	}
	if l.last != nil {
		last := *l.last
		snapshot.Last = &last
	}
	return snapshot
}

func (l *controlLoop) Trace() []Sample {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.trace)
}
