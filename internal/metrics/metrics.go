package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the composectl collectors and the registry they are
// registered with.
type Collector struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec   // Operations by name and outcome.
	removed    prometheus.Counter       // Containers removed by the forceful fallback.
	duration   *prometheus.HistogramVec // Operation wall time.
}

// New creates a Collector backed by a fresh registry.
func New() (*Collector, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Collector registered with registry.
func NewWithRegistry(registry *prometheus.Registry) (*Collector, error) {
	c := &Collector{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "composectl_operations_total",
			Help: "Number of lifecycle operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "composectl_containers_removed_total",
			Help: "Number of containers removed by the forceful removal fallback",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "composectl_operation_duration_seconds",
			Help:    "Wall time of lifecycle operations",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"operation"}),
	}

	for _, m := range []prometheus.Collector{c.operations, c.removed, c.duration} {
		if err := registry.Register(m); err != nil {
			alreadyRegisteredError := &prometheus.AlreadyRegisteredError{}
			if errors.As(err, &alreadyRegisteredError) {
				return nil, fmt.Errorf("failed to register metric: %w", err)
			}
			return nil, err
		}
	}

	return c, nil
}

// ObserveOperation counts one finished operation and records its duration.
func (c *Collector) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	c.operations.WithLabelValues(operation, outcome).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddRemoved adds n forcefully removed containers.
func (c *Collector) AddRemoved(n int) {
	if n > 0 {
		c.removed.Add(float64(n))
	}
}

// Registry returns the registry the collectors are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically. An empty path is a
// no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
