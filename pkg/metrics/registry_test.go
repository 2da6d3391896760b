package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximewewer/shmtime-reader/internal/shm"
	testutil "github.com/maximewewer/shmtime-reader/pkg/testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	assert.NotNil(t, reg)
	assert.NotNil(t, reg.registry)
	assert.NotNil(t, reg.shmMetrics)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register()

	assert.NoError(t, err)
}

func TestRegistry_Register_Idempotent(t *testing.T) {
	reg := NewRegistry()

	// First registration should succeed
	err := reg.Register()
	assert.NoError(t, err)

	// Second registration should fail (metrics already registered)
	err = reg.Register()
	assert.Error(t, err)
}

func TestRegistry_GetRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())

	promReg := reg.GetRegistry()

	assert.NotNil(t, promReg)
	assert.IsType(t, &prometheus.Registry{}, promReg)
}

func TestRegistry_MustRegister_Panic(t *testing.T) {
	reg := NewRegistry()

	assert.NotPanics(t, func() {
		reg.MustRegister()
	})

	// Second call should panic
	assert.Panics(t, func() {
		reg.MustRegister()
	})
}

func TestRegistry_NoRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())
	reg.GetMetrics().SetBuildInfo("1.0.0")

	metricFamilies, err := reg.GetRegistry().Gather()
	require.NoError(t, err)

	for _, mf := range metricFamilies {
		assert.False(t, strings.HasPrefix(mf.GetName(), "go_"), mf.GetName())
		assert.False(t, strings.HasPrefix(mf.GetName(), "process_"), mf.GetName())
	}
}

func TestSHMMetrics_ObserveSnapshot(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())

	receive := time.Unix(1700000000, 500000000)
	s := testutil.CreateValidSample(receive, 2*time.Millisecond)
	s.Count = 7
	s.Leap = shm.LeapAddSecond
	snap := testutil.CreateSnapshot(1, s)
	snap.Attempts = 2

	reg.GetMetrics().ObserveSnapshot(snap)

	labels := map[string]string{"unit": "1"}
	promReg := reg.GetRegistry()
	testutil.AssertMetricValue(t, promReg, "ntp_shm_valid", labels, 1)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_mode", labels, 1)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_count", labels, 7)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_leap", labels, 1)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_precision", labels, -20)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_nsamples", labels, 3)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_read_attempts", labels, 2)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_read_consistent", labels, 1)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_receive_timestamp_seconds", labels, 1700000000.5)
	testutil.AssertMetricValue(t, promReg, "ntp_shm_offset_seconds", labels, 0.002)
}

func TestSHMMetrics_ObserveInconsistentInvalid(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())

	snap := testutil.CreateSnapshot(0, testutil.CreateInvalidSample())
	snap.Consistent = false

	reg.GetMetrics().ObserveSnapshot(snap)

	labels := map[string]string{"unit": "0"}
	testutil.AssertMetricValue(t, reg.GetRegistry(), "ntp_shm_valid", labels, 0)
	testutil.AssertMetricValue(t, reg.GetRegistry(), "ntp_shm_read_consistent", labels, 0)
	testutil.AssertMetricValue(t, reg.GetRegistry(), "ntp_shm_leap", labels, 3)
}

func TestSHMMetrics_ObserveFarOffset(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())

	s := testutil.CreateInvalidSample()
	s.ClockTimeStampSec = 400 * 365 * 86400
	reg.GetMetrics().ObserveSnapshot(testutil.CreateSnapshot(0, s))

	testutil.AssertMetricValue(t, reg.GetRegistry(), "ntp_shm_offset_seconds", map[string]string{"unit": "0"}, 400*365*86400)
}

func TestRegistryWithConfig_MetricNames(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		subsystem string
		want      string
	}{
		{"default", "ntp", "shm", "ntp_shm_offset_seconds"},
		{"empty subsystem", "myapp", "", "myapp_offset_seconds"},
		{"custom", "myapp", "refclock", "myapp_refclock_offset_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistryWithConfig(tt.namespace, tt.subsystem)
			require.NoError(t, reg.Register())

			reg.GetMetrics().ObserveSnapshot(testutil.CreateSnapshot(0, testutil.CreateInvalidSample()))

			testutil.AssertMetricExists(t, reg.GetRegistry(), tt.want, map[string]string{"unit": "0"})
			testutil.ValidatePrometheusMetricName(t, tt.want, tt.namespace+"_")
		})
	}
}

func TestSHMMetrics_BuildInfo(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())

	reg.GetMetrics().SetBuildInfo("1.2.3")

	metricFamilies, err := reg.GetRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() != "ntp_shm_build_info" {
			continue
		}
		found = true
		require.Len(t, mf.GetMetric(), 1)
		assert.Equal(t, float64(1), mf.GetMetric()[0].GetGauge().GetValue())
	}
	assert.True(t, found, "Should find ntp_shm_build_info metric")
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())
	reg.GetMetrics().ObserveSnapshot(testutil.CreateSnapshot(0, testutil.CreateValidSample(time.Unix(1700000000, 0), 0)))

	path := filepath.Join(t.TempDir(), "shm.prom")
	require.NoError(t, reg.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ntp_shm_valid{unit="0"} 1`)
	assert.Contains(t, string(data), "# TYPE ntp_shm_offset_seconds gauge")
}

func TestRegistry_WriteTextfile_BadDirectory(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register())

	err := reg.WriteTextfile(filepath.Join(t.TempDir(), "missing", "shm.prom"))

	assert.Error(t, err)
}

func BenchmarkSHMMetrics_ObserveSnapshot(b *testing.B) {
	m := NewSHMMetrics()
	snap := testutil.CreateSnapshot(0, testutil.CreateValidSample(time.Unix(1700000000, 0), time.Millisecond))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.ObserveSnapshot(snap)
	}
}
