package testutil

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/maximewewer/shmtime-reader/internal/shm"
)

// CreateValidSample creates a count-guarded, valid sample whose clock
// leads the receive time by offset
func CreateValidSample(receive time.Time, offset time.Duration) shm.Sample {
	s := shm.NewSample(receive.Add(offset), receive)
	s.Mode = shm.ModeCountGuarded
	s.Count = 1
	s.Precision = -20
	s.NSamples = 3
	s.Valid = 1
	return s
}

// CreateInvalidSample creates a sample the producer has not marked valid
func CreateInvalidSample() shm.Sample {
	s := shm.NewSample(time.Unix(0, 0), time.Unix(0, 0))
	s.Valid = 0
	s.Leap = shm.LeapNotInSync
	return s
}

// CreateSnapshot wraps a sample in a consistent single-attempt snapshot
func CreateSnapshot(unit int, s shm.Sample) *shm.Snapshot {
	key, _ := shm.KeyFor(0x4e545030, unit)
	return &shm.Snapshot{
		Unit:       unit,
		Key:        key,
		Raw:        shm.Encode(s),
		Sample:     s,
		Attempts:   1,
		Consistent: true,
	}
}

// AssertMetricValue validates a Prometheus metric value
func AssertMetricValue(t *testing.T, registry prometheus.Gatherer, metricName string, labels map[string]string, expected float64) {
	t.Helper()

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != metricName {
			continue
		}

		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				var value float64
				switch mf.GetType() {
				case dto.MetricType_GAUGE:
					value = m.GetGauge().GetValue()
				case dto.MetricType_COUNTER:
					value = m.GetCounter().GetValue()
				default:
					t.Fatalf("Unsupported metric type: %v", mf.GetType())
				}

				if value != expected {
					t.Errorf("Metric %s with labels %v: expected %f, got %f", metricName, labels, expected, value)
				}
				return
			}
		}
	}

	t.Errorf("Metric %s with labels %v not found", metricName, labels)
}

// AssertMetricExists checks if a metric exists with given labels
func AssertMetricExists(t *testing.T, registry prometheus.Gatherer, metricName string, labels map[string]string) {
	t.Helper()

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != metricName {
			continue
		}

		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return
			}
		}
	}

	t.Errorf("Metric %s with labels %v not found", metricName, labels)
}

// labelsMatch checks if metric labels match expected labels
func labelsMatch(metricLabels []*dto.LabelPair, expected map[string]string) bool {
	if len(metricLabels) != len(expected) {
		return false
	}

	for _, label := range metricLabels {
		expectedValue, exists := expected[label.GetName()]
		if !exists || expectedValue != label.GetValue() {
			return false
		}
	}

	return true
}

// ValidatePrometheusMetricName validates that a metric name follows Prometheus conventions
func ValidatePrometheusMetricName(t *testing.T, name, prefix string) {
	t.Helper()

	if len(name) == 0 {
		t.Error("Metric name cannot be empty")
	}

	// Must match regex: [a-zA-Z_:][a-zA-Z0-9_:]*
	validName := regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	if !validName.MatchString(name) {
		t.Errorf("Invalid metric name: %s (must match [a-zA-Z_:][a-zA-Z0-9_:]*)", name)
	}

	if !strings.HasPrefix(name, prefix) {
		t.Errorf("Metric name %s should have %s prefix", name, prefix)
	}
}
