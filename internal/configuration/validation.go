package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/looplab/tarjan"
	"github.com/markusressel/pidctl/internal/ui"
	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	err := validatePlants(config)
	if err != nil {
		return err
	}
	return validateLoops(config)
}

func validatePlants(config *Configuration) error {
	var ids []string
	for _, plantConfig := range config.Plants {
		if len(plantConfig.ID) <= 0 {
			return errors.New("plant: missing id")
		}
		if slices.Contains(ids, plantConfig.ID) {
			return fmt.Errorf("duplicate plant id detected: %s", plantConfig.ID)
		}
		ids = append(ids, plantConfig.ID)

		subConfigs := 0
		if plantConfig.Motor != nil {
			subConfigs++
		}
		if plantConfig.Lag != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("plant %s: only one plant type can be used per plant definition block", plantConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("plant %s: sub-configuration for plant is missing, use one of: motor | lag", plantConfig.ID)
		}

		if plantConfig.Motor != nil && plantConfig.Motor.Inertia <= 0 {
			return fmt.Errorf("plant %s: inertia must be > 0", plantConfig.ID)
		}
		if plantConfig.Lag != nil && plantConfig.Lag.TimeConstant <= 0 {
			return fmt.Errorf("plant %s: timeConstant must be > 0", plantConfig.ID)
		}

		if !isPlantConfigInUse(plantConfig, config.Loops) {
			ui.Warning("Unused plant configuration: %s", plantConfig.ID)
		}
	}

	return nil
}

func isPlantConfigInUse(config PlantConfig, loops []LoopConfig) bool {
	for _, loopConfig := range loops {
		if loopConfig.Plant == config.ID {
			return true
		}
	}
	return false
}

func validateLoops(config *Configuration) error {
	graph := make(map[interface{}][]interface{})
	drivenPlants := map[string]string{}

	var ids []string
	for _, loopConfig := range config.Loops {
		if len(loopConfig.ID) <= 0 {
			return errors.New("loop: missing id")
		}
		if slices.Contains(ids, loopConfig.ID) {
			return fmt.Errorf("duplicate loop id detected: %s", loopConfig.ID)
		}
		ids = append(ids, loopConfig.ID)

		subConfigs := 0
		if loopConfig.PID != nil {
			subConfigs++
		}
		if loopConfig.PD != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("loop %s: only one controller type can be used per loop definition block", loopConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("loop %s: sub-configuration for controller is missing, use one of: pid | pd", loopConfig.ID)
		}

		if err := validateGains(loopConfig); err != nil {
			return err
		}

		if loopConfig.TickRate < 0 {
			return fmt.Errorf("loop %s: tickRate must be > 0", loopConfig.ID)
		}

		plantConfig, err := getPlantConfig(loopConfig.Plant, config)
		if err != nil {
			return fmt.Errorf("loop %s: %v", loopConfig.ID, err)
		}

		supportedChannels := plantConfig.Channels()
		if !slices.Contains(supportedChannels, loopConfig.Channel) {
			return fmt.Errorf("loop %s: unsupported channel '%s' for plant '%s', use one of: %s", loopConfig.ID, loopConfig.Channel, plantConfig.ID, strings.Join(supportedChannels, " | "))
		}

		if loopConfig.Drive.Get() {
			if other, driven := drivenPlants[loopConfig.Plant]; driven {
				return fmt.Errorf("loop %s: plant '%s' is already driven by loop '%s'", loopConfig.ID, loopConfig.Plant, other)
			}
			drivenPlants[loopConfig.Plant] = loopConfig.ID
		}

		setpoint := loopConfig.Setpoint
		if setpoint.Value.IsSet() && len(setpoint.Loop) > 0 {
			return fmt.Errorf("loop %s: only one setpoint source can be used, use one of: value | loop", loopConfig.ID)
		}
		if !setpoint.Value.IsSet() && len(setpoint.Loop) <= 0 {
			return fmt.Errorf("loop %s: setpoint is missing, use one of: value | loop", loopConfig.ID)
		}

		var connections []interface{}
		if len(setpoint.Loop) > 0 {
			if setpoint.Loop == loopConfig.ID {
				return fmt.Errorf("loop %s: a loop cannot use its own output as setpoint", loopConfig.ID)
			}
			if !loopIdExists(setpoint.Loop, config) {
				return fmt.Errorf("loop %s: no loop definition with id '%s' found", loopConfig.ID, setpoint.Loop)
			}
			connections = append(connections, setpoint.Loop)
		}
		graph[loopConfig.ID] = connections

		if !loopConfig.Drive.Get() && !isLoopConfigInUse(loopConfig, config.Loops) {
			ui.Warning("Loop %s neither drives its plant nor provides a setpoint for another loop", loopConfig.ID)
		}
	}

	return validateNoCascadeCycles(graph)
}

func validateGains(loopConfig LoopConfig) error {
	if loopConfig.PD != nil {
		if loopConfig.PD.Kp == 0 && loopConfig.PD.Kd == 0 {
			return fmt.Errorf("loop %s: all PD constants are zero", loopConfig.ID)
		}
	}

	if loopConfig.PID != nil {
		pidConfig := loopConfig.PID
		if pidConfig.Kp == 0 && pidConfig.Ki == 0 && pidConfig.Kd == 0 {
			return fmt.Errorf("loop %s: all PID constants are zero", loopConfig.ID)
		}
		if pidConfig.IntegratorZone.IsSet() && pidConfig.IntegratorZone.Get() < 0 {
			return fmt.Errorf("loop %s: integratorZone must be >= 0", loopConfig.ID)
		}
		if pidConfig.Ki != 0 && !pidConfig.IntegratorZone.IsSet() {
			ui.Warning("Loop %s: ki is set without an integratorZone, the integrator is unbounded", loopConfig.ID)
		}
	}

	return nil
}

func getPlantConfig(plantId string, config *Configuration) (*PlantConfig, error) {
	if len(plantId) <= 0 {
		return nil, errors.New("missing plant id")
	}
	for _, plant := range config.Plants {
		if plant.ID == plantId {
			return &plant, nil
		}
	}
	return nil, fmt.Errorf("no plant definition with id '%s' found", plantId)
}

func loopIdExists(loopId string, config *Configuration) bool {
	for _, loop := range config.Loops {
		if loop.ID == loopId {
			return true
		}
	}
	return false
}

func isLoopConfigInUse(config LoopConfig, loops []LoopConfig) bool {
	for _, loopConfig := range loops {
		if loopConfig.Setpoint.Loop == config.ID {
			return true
		}
	}
	return false
}

func validateNoCascadeCycles(graph map[interface{}][]interface{}) error {
	output := tarjan.Connections(graph)
	for _, items := range output {
		if len(items) > 1 {
			return fmt.Errorf("you have created a loop cascade cycle: %v", items)
		}
	}
	return nil
}
