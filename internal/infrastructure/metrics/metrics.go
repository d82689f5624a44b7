package metrics

import (
	"fmt"

	"github.com/coursereg/registrar/internal/infrastructure/config"
	"github.com/coursereg/registrar/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects session counters and writes them to a node-exporter
// textfile on Flush.
type Recorder struct {
	cfg      config.MetricsConfig
	registry *prometheus.Registry

	registrations prometheus.Counter
	loads         *prometheus.CounterVec
	saves         *prometheus.CounterVec
	rosterSize    prometheus.Gauge
}

// New creates a recorder with its own registry
func New(cfg config.MetricsConfig) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		cfg:      cfg,
		registry: registry,
		registrations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "registrar_registrations_total",
				Help: "Total number of registrations added to the roster",
			},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_loads_total",
				Help: "Total number of roster loads by result",
			},
			[]string{"result"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_saves_total",
				Help: "Total number of roster saves by result",
			},
			[]string{"result"},
		),
		rosterSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "registrar_roster_size",
				Help: "Number of registrations currently held in memory",
			},
		),
	}

	registry.MustRegister(r.registrations, r.loads, r.saves, r.rosterSize)
	return r
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

// RecordRegistration counts one appended registration
func (r *Recorder) RecordRegistration(rosterSize int) {
	r.registrations.Inc()
	r.rosterSize.Set(float64(rosterSize))
}

// RecordLoad counts a load attempt
func (r *Recorder) RecordLoad(result string, rosterSize int) {
	r.loads.WithLabelValues(result).Inc()
	r.rosterSize.Set(float64(rosterSize))
}

// RecordSave counts a save attempt
func (r *Recorder) RecordSave(err error) {
	if err != nil {
		r.saves.WithLabelValues(ports.ResultFailure).Inc()
		return
	}
	r.saves.WithLabelValues(ports.ResultSuccess).Inc()
}

// Flush writes the textfile when metrics are enabled
func (r *Recorder) Flush() error {
	if !r.cfg.Enabled {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.cfg.Textfile, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
