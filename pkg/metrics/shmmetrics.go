package metrics

import (
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maximewewer/shmtime-reader/internal/shm"
)

// SHMMetrics encapsulates the metrics exported for one snapshot
type SHMMetrics struct {
	// Sample fields
	Valid                   *prometheus.GaugeVec
	Mode                    *prometheus.GaugeVec
	Count                   *prometheus.GaugeVec
	ClockTimestampSeconds   *prometheus.GaugeVec
	ReceiveTimestampSeconds *prometheus.GaugeVec
	OffsetSeconds           *prometheus.GaugeVec
	Leap                    *prometheus.GaugeVec
	Precision               *prometheus.GaugeVec
	NSamples                *prometheus.GaugeVec

	// Reader metrics
	ReadAttempts   *prometheus.GaugeVec
	ReadConsistent *prometheus.GaugeVec

	// Build information
	BuildInfo *prometheus.GaugeVec
}

func newUnitGauge(namespace, subsystem, name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		[]string{"unit"},
	)
}

// NewSHMMetricsWithConfig creates all SHM metrics with custom namespace and subsystem
func NewSHMMetricsWithConfig(namespace, subsystem string) *SHMMetrics {
	return &SHMMetrics{
		Valid:                   newUnitGauge(namespace, subsystem, "valid", "Whether the producer marked the sample valid (1) or not (0)"),
		Mode:                    newUnitGauge(namespace, subsystem, "mode", "Producer write discipline (0 = best-effort, 1 = count-guarded)"),
		Count:                   newUnitGauge(namespace, subsystem, "count", "Producer sequence counter"),
		ClockTimestampSeconds:   newUnitGauge(namespace, subsystem, "clock_timestamp_seconds", "Reference clock reading as Unix time in seconds"),
		ReceiveTimestampSeconds: newUnitGauge(namespace, subsystem, "receive_timestamp_seconds", "Local clock reading at receipt as Unix time in seconds"),
		OffsetSeconds:           newUnitGauge(namespace, subsystem, "offset_seconds", "Reference clock minus local clock in seconds"),
		Leap:                    newUnitGauge(namespace, subsystem, "leap", "Leap second indicator (0-3)"),
		Precision:               newUnitGauge(namespace, subsystem, "precision", "Clock precision as a power of two exponent"),
		NSamples:                newUnitGauge(namespace, subsystem, "nsamples", "Number of samples averaged by the producer"),
		ReadAttempts:            newUnitGauge(namespace, subsystem, "read_attempts", "Copies taken to obtain the snapshot"),
		ReadConsistent:          newUnitGauge(namespace, subsystem, "read_consistent", "Whether the count guard saw no concurrent write (1) or not (0)"),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "build_info",
				Help:      "Build information of shmtime-reader",
			},
			[]string{"version", "goversion"},
		),
	}
}

// NewSHMMetrics creates SHM metrics with the default namespace
func NewSHMMetrics() *SHMMetrics {
	return NewSHMMetricsWithConfig("ntp", "shm")
}

func (m *SHMMetrics) getAllMetrics() []prometheus.Collector {
	return []prometheus.Collector{
		m.Valid,
		m.Mode,
		m.Count,
		m.ClockTimestampSeconds,
		m.ReceiveTimestampSeconds,
		m.OffsetSeconds,
		m.Leap,
		m.Precision,
		m.NSamples,
		m.ReadAttempts,
		m.ReadConsistent,
		m.BuildInfo,
	}
}

// Describe implements prometheus.Collector interface
func (m *SHMMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range m.getAllMetrics() {
		metric.Describe(ch)
	}
}

// Collect implements prometheus.Collector interface
func (m *SHMMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, metric := range m.getAllMetrics() {
		metric.Collect(ch)
	}
}

// ObserveSnapshot records a snapshot under its unit label
func (m *SHMMetrics) ObserveSnapshot(snap *shm.Snapshot) {
	unit := strconv.Itoa(snap.Unit)
	s := snap.Sample

	m.Valid.WithLabelValues(unit).Set(boolToFloat(s.IsValid()))
	m.Mode.WithLabelValues(unit).Set(float64(s.Mode))
	m.Count.WithLabelValues(unit).Set(float64(s.Count))
	m.ClockTimestampSeconds.WithLabelValues(unit).Set(unixSeconds(s.ClockTimeStampSec, s.ClockTimeStampNSec))
	m.ReceiveTimestampSeconds.WithLabelValues(unit).Set(unixSeconds(s.ReceiveTimeStampSec, s.ReceiveTimeStampNSec))
	m.OffsetSeconds.WithLabelValues(unit).Set(s.OffsetSeconds())
	m.Leap.WithLabelValues(unit).Set(float64(s.Leap))
	m.Precision.WithLabelValues(unit).Set(float64(s.Precision))
	m.NSamples.WithLabelValues(unit).Set(float64(s.NSamples))
	m.ReadAttempts.WithLabelValues(unit).Set(float64(snap.Attempts))
	m.ReadConsistent.WithLabelValues(unit).Set(boolToFloat(snap.Consistent))
}

// SetBuildInfo records the reader version
func (m *SHMMetrics) SetBuildInfo(version string) {
	m.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

func unixSeconds(sec int64, nsec uint32) float64 {
	return float64(sec) + float64(nsec)/1e9
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
