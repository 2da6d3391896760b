package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry manages Prometheus metric registration
type Registry struct {
	registry   *prometheus.Registry
	shmMetrics *SHMMetrics
}

// NewRegistry creates a new metrics registry with SHM metrics
// Uses default namespace "ntp" and subsystem "shm"
func NewRegistry() *Registry {
	return NewRegistryWithConfig("ntp", "shm")
}

// NewRegistryWithConfig creates a new metrics registry with custom namespace and subsystem
func NewRegistryWithConfig(namespace, subsystem string) *Registry {
	return &Registry{
		registry:   prometheus.NewRegistry(),
		shmMetrics: NewSHMMetricsWithConfig(namespace, subsystem),
	}
}

// Register registers the SHM metrics. Runtime collectors are left out:
// a textfile is merged into node_exporter output, which has its own.
func (r *Registry) Register() error {
	return r.registry.Register(r.shmMetrics)
}

// GetRegistry returns the underlying Prometheus registry
func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// GetMetrics returns the SHM metrics instance
func (r *Registry) GetMetrics() *SHMMetrics {
	return r.shmMetrics
}

// MustRegister registers all metrics and panics on error
func (r *Registry) MustRegister() {
	if err := r.Register(); err != nil {
		panic(err)
	}
}

// WriteTextfile atomically writes the gathered metrics in the text
// exposition format for the node_exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
