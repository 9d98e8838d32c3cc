package metrics

import (
	"time"

	"github.com/berfenger/pac2mqtt/pkg/electricity"
	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pac"

// Metrics holds the meter gauges and the Modbus call histogram.
type Metrics struct {
	registry       *prometheus.Registry
	modbusDuration *prometheus.HistogramVec
	readErrors     prometheus.Counter
	power          *prometheus.GaugeVec
	phase          *prometheus.GaugeVec
	lineVoltage    *prometheus.GaugeVec
	frequency      prometheus.Gauge
	energy         *prometheus.GaugeVec
}

func NewMetrics(meter string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"meter": meter}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		modbusDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "modbus_request_duration_seconds",
			Help:        "Duration of Modbus requests to the meter",
			ConstLabels: constLabels,
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"function"}),
		readErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "read_errors_total",
			Help:        "Number of failed meter readings",
			ConstLabels: constLabels,
		}),
		power: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "power",
			Help:        "Total power (VA, W, var)",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		phase: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "phase",
			Help:        "Per phase voltage (V), current (A) and power (VA, W)",
			ConstLabels: constLabels,
		}, []string{"phase", "quantity"}),
		lineVoltage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "line_voltage_volts",
			Help:        "Line to line voltage",
			ConstLabels: constLabels,
		}, []string{"line"}),
		frequency: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "frequency_hertz",
			Help:        "Grid frequency",
			ConstLabels: constLabels,
		}),
		energy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "energy",
			Help:        "Energy counters per tariff (VAh, Wh, varh)",
			ConstLabels: constLabels,
		}, []string{"tariff", "direction", "kind"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ModbusInstrument feeds the request duration histogram from the reader.
func (m *Metrics) ModbusInstrument() *pac_modbus.ModbusInstrument {
	return &pac_modbus.ModbusInstrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			m.modbusDuration.WithLabelValues(fnName).Observe(readTime.Seconds())
		},
	}
}

func (m *Metrics) ReadError(error) {
	m.readErrors.Inc()
}

func (m *Metrics) Update(reading *pac_modbus.Reading) {
	m.power.WithLabelValues("apparent").Set(reading.Power.Apparent)
	m.power.WithLabelValues("active").Set(reading.Power.Active)
	m.power.WithLabelValues("reactive").Set(reading.Power.Reactive())

	m.setPhase("l1", reading.Phases.L1)
	m.setPhase("l2", reading.Phases.L2)
	m.setPhase("l3", reading.Phases.L3)

	m.lineVoltage.WithLabelValues("l1_l2").Set(reading.Phases.Line.L1L2)
	m.lineVoltage.WithLabelValues("l2_l3").Set(reading.Phases.Line.L2L3)
	m.lineVoltage.WithLabelValues("l3_l1").Set(reading.Phases.Line.L3L1)

	m.frequency.Set(reading.Frequency)

	m.setEnergy("1", "import", reading.Tariffs.Tariff1.Import)
	m.setEnergy("1", "export", reading.Tariffs.Tariff1.Export)
	m.setEnergy("2", "import", reading.Tariffs.Tariff2.Import)
	m.setEnergy("2", "export", reading.Tariffs.Tariff2.Export)
}

func (m *Metrics) setPhase(name string, phase electricity.Phase) {
	m.phase.WithLabelValues(name, "voltage").Set(phase.Voltage)
	m.phase.WithLabelValues(name, "current").Set(phase.Current)
	m.phase.WithLabelValues(name, "apparent").Set(phase.Power.Apparent)
	m.phase.WithLabelValues(name, "active").Set(phase.Power.Active)
}

func (m *Metrics) setEnergy(tariff, direction string, energy electricity.Energy) {
	m.energy.WithLabelValues(tariff, direction, "apparent").Set(energy.Apparent)
	m.energy.WithLabelValues(tariff, direction, "active").Set(energy.Active)
	m.energy.WithLabelValues(tariff, direction, "reactive").Set(energy.Reactive)
}
