package statistics

import (
	"github.com/markusressel/pidctl/internal/loops"
	"github.com/prometheus/client_golang/prometheus"
)

const loopSubsystem = "loop"

type LoopCollector struct {
	loops []loops.ControlLoop

	setpoint *prometheus.Desc
	state    *prometheus.Desc
	output   *prometheus.Desc
	err      *prometheus.Desc
	pTerm    *prometheus.Desc
	iTerm    *prometheus.Desc
	dTerm    *prometheus.Desc
	errorAvg *prometheus.Desc
	errorMax *prometheus.Desc
	kp       *prometheus.Desc
	ki       *prometheus.Desc
	kd       *prometheus.Desc
}

func newLoopDesc(name string, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, name),
		help,
		[]string{"id"}, nil,
	)
}

func NewLoopCollector(loops []loops.ControlLoop) *LoopCollector {
	return &LoopCollector{
		loops:    loops,
		setpoint: newLoopDesc("setpoint", "Setpoint used in the last update of the loop"),
		state:    newLoopDesc("state", "Measured state used in the last update of the loop"),
		output:   newLoopDesc("output", "Output of the last update of the loop"),
		err:      newLoopDesc("error", "Error (setpoint - state) of the last update of the loop"),
		pTerm:    newLoopDesc("p_term", "Proportional term of the last update of the loop"),
		iTerm:    newLoopDesc("i_term", "Integral term of the last update of the loop"),
		dTerm:    newLoopDesc("d_term", "Derivative term of the last update of the loop"),
		errorAvg: newLoopDesc("error_avg", "Average absolute error over the error window"),
		errorMax: newLoopDesc("error_max", "Maximum absolute error over the error window"),
		kp:       newLoopDesc("kp", "Proportional gain of the loop"),
		ki:       newLoopDesc("ki", "Integral gain of the loop"),
		kd:       newLoopDesc("kd", "Derivative gain of the loop"),
	}
}

func (collector *LoopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.setpoint
	ch <- collector.state
	ch <- collector.output
	ch <- collector.err
	ch <- collector.pTerm
	ch <- collector.iTerm
	ch <- collector.dTerm
	ch <- collector.errorAvg
	ch <- collector.errorMax
	ch <- collector.kp
	ch <- collector.ki
	ch <- collector.kd
}

// Collect implements required collect function for all prometheus collectors
func (collector *LoopCollector) Collect(ch chan<- prometheus.Metric) {
	for _, loop := range collector.loops {
		snapshot := loop.Snapshot()
		id := snapshot.Id

		ch <- prometheus.MustNewConstMetric(collector.kp, prometheus.GaugeValue, snapshot.Gains.Kp, id)
		ch <- prometheus.MustNewConstMetric(collector.ki, prometheus.GaugeValue, snapshot.Gains.Ki, id)
		ch <- prometheus.MustNewConstMetric(collector.kd, prometheus.GaugeValue, snapshot.Gains.Kd, id)
		ch <- prometheus.MustNewConstMetric(collector.errorAvg, prometheus.GaugeValue, snapshot.ErrorAvg, id)
		ch <- prometheus.MustNewConstMetric(collector.errorMax, prometheus.GaugeValue, snapshot.ErrorMax, id)

		last := snapshot.Last
		if last == nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(collector.setpoint, prometheus.GaugeValue, last.Setpoint, id)
		ch <- prometheus.MustNewConstMetric(collector.state, prometheus.GaugeValue, last.State, id)
		ch <- prometheus.MustNewConstMetric(collector.output, prometheus.GaugeValue, last.Output, id)
		ch <- prometheus.MustNewConstMetric(collector.err, prometheus.GaugeValue, last.Terms.Error, id)
		ch <- prometheus.MustNewConstMetric(collector.pTerm, prometheus.GaugeValue, last.Terms.P, id)
		ch <- prometheus.MustNewConstMetric(collector.iTerm, prometheus.GaugeValue, last.Terms.I, id)
		ch <- prometheus.MustNewConstMetric(collector.dTerm, prometheus.GaugeValue, last.Terms.D, id)
	}
}
