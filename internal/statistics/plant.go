package statistics

import (
	"github.com/markusressel/pidctl/internal/plants"
	"github.com/prometheus/client_golang/prometheus"
)

const plantSubsystem = "plant"

type PlantCollector struct {
	plants []plants.Plant
	input  *prometheus.Desc
	value  *prometheus.Desc
}

func NewPlantCollector(plants []plants.Plant) *PlantCollector {
	return &PlantCollector{
		plants: plants,
		input: prometheus.NewDesc(prometheus.BuildFQName(namespace, plantSubsystem, "input"),
			"Input currently applied to the plant",
			[]string{"id"}, nil,
		),
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, plantSubsystem, "value"),
			"Current value of a plant channel",
			[]string{"id", "channel"}, nil,
		),
	}
}

func (collector *PlantCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.input
	ch <- collector.value
}

// Collect implements required collect function for all prometheus collectors
func (collector *PlantCollector) Collect(ch chan<- prometheus.Metric) {
	for _, plant := range collector.plants {
		plantId := plant.GetId()
		ch <- prometheus.MustNewConstMetric(collector.input, prometheus.GaugeValue, plant.GetInput(), plantId)
		for _, channel := range plant.Channels() {
			value, err := plant.GetValue(channel)
			if err != nil {
				continue
			}
			ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, value, plantId, channel)
		}
	}
}
