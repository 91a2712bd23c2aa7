package loops

import (
	"fmt"

	"github.com/looplab/tarjan"
	"github.com/markusressel/pidctl/internal/configuration"
	"github.com/markusressel/pidctl/internal/plants"
)

// EvaluationOrder returns the ids of the given loops, ordered so that every loop
// comes after the loop that provides its setpoint.
func EvaluationOrder(configs []configuration.LoopConfig) ([]string, error) {
	graph := make(map[interface{}][]interface{})
	for _, config := range configs {
		var connections []interface{}
		if len(config.Setpoint.Loop) > 0 {
			if config.Setpoint.Loop == config.ID {
				return nil, fmt.Errorf("loop %s: a loop cannot use its own output as setpoint", config.ID)
			}
			connections = append(connections, config.Setpoint.Loop)
		}
		graph[config.ID] = connections
	}

	// tarjan yields strongly connected components in reverse topological order,
	// i.e. setpoint providers before their consumers
	var result []string
	for _, component := range tarjan.Connections(graph) {
		if len(component) > 1 {
			return nil, fmt.Errorf("loop cascade cycle detected: %v", component)
		}
		result = append(result, component[0].(string))
	}
	return result, nil
}

// CreateLoops creates a ControlLoop for every configuration, resolving the plant
// and setpoint source of each. The result is in evaluation order.
func CreateLoops(configs []configuration.LoopConfig, plantsById map[string]plants.Plant) ([]ControlLoop, error) {
	order, err := EvaluationOrder(configs)
	if err != nil {
		return nil, err
	}

	configsById := map[string]configuration.LoopConfig{}
	for _, config := range configs {
		configsById[config.ID] = config
	}

	created := map[string]ControlLoop{}
	var result []ControlLoop
	for _, id := range order {
		config, ok := configsById[id]
		if !ok {
			return nil, fmt.Errorf("no loop definition with id '%s' found", id)
		}

		plant, ok := plantsById[config.Plant]
		if !ok {
			return nil, fmt.Errorf("loop %s: no plant with id '%s' found", id, config.Plant)
		}

		var setpoint SetpointSource
		if len(config.Setpoint.Loop) > 0 {
			outer, ok := created[config.Setpoint.Loop]
			if !ok {
				return nil, fmt.Errorf("loop %s: no loop with id '%s' found", id, config.Setpoint.Loop)
			}
			setpoint = LoopOutputSetpoint{Loop: outer}
		} else {
			setpoint = ConstantSetpoint{Value: config.Setpoint.Value.Get()}
		}

		loop, err := NewControlLoop(config, plant, setpoint)
		if err != nil {
			return nil, err
		}
		created[id] = loop
		result = append(result, loop)
	}

	return result, nil
}
