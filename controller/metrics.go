package controller

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts session activity. A nil *Metrics records nothing.
type Metrics struct {
	linesTotal      prometheus.Counter
	executedTotal   *prometheus.CounterVec
	unknownTotal    prometheus.Counter
	navigationTotal prometheus.Counter
	framesTotal     prometheus.Counter
}

// NewMetrics creates the session counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		linesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmui_input_lines_total",
			Help: "Lines entered by the operator.",
		}),
		executedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmui_commands_executed_total",
			Help: "Commands executed, by command path.",
		}, []string{"command"}),
		unknownTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmui_unknown_commands_total",
			Help: "Words that matched no keyword or command.",
		}),
		navigationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmui_navigations_total",
			Help: "Cursor moves through the command tree.",
		}),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmui_link_frames_drained_total",
			Help: "Frames drained from the device link.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.linesTotal, m.executedTotal, m.unknownTotal, m.navigationTotal, m.framesTotal)
	}
	return m
}

func (m *Metrics) line() {
	if m != nil {
		m.linesTotal.Inc()
	}
}

func (m *Metrics) executed(path []string) {
	if m != nil {
		m.executedTotal.WithLabelValues(strings.Join(path, " ")).Inc()
	}
}

func (m *Metrics) unknown() {
	if m != nil {
		m.unknownTotal.Inc()
	}
}

func (m *Metrics) navigated() {
	if m != nil {
		m.navigationTotal.Inc()
	}
}

func (m *Metrics) frameDrained() {
	if m != nil {
		m.framesTotal.Inc()
	}
}
