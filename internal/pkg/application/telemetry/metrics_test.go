package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

func TestComputeMetricsUniformAcceleration(t *testing.T) {
	is := is.New(t)

	m := ComputeMetrics(types.Sample{AccelX: 1, AccelY: 1, AccelZ: 1})

	is.True(math.Abs(m.VibrationRMS-1.0) < 1e-9)
	is.Equal(m.VibrationPeak, 1.0)
}

func TestComputeMetricsSingleAxis(t *testing.T) {
	is := is.New(t)

	m := ComputeMetrics(types.Sample{AccelX: 3})

	is.True(math.Abs(m.VibrationRMS-3.0/math.Sqrt(3)) < 1e-9)
	is.Equal(m.VibrationPeak, 3.0)
}

func TestComputeMetricsPeakUsesAbsoluteValues(t *testing.T) {
	is := is.New(t)

	m := ComputeMetrics(types.Sample{AccelX: -5, AccelY: 2, AccelZ: 1})

	is.Equal(m.VibrationPeak, 5.0)
}

func TestComputeMetricsPeakNeverBelowRMS(t *testing.T) {
	is := is.New(t)

	samples := []types.Sample{
		{AccelX: 0.1, AccelY: -0.2, AccelZ: 9.8},
		{AccelX: 1.5, AccelY: 1.5, AccelZ: 1.5},
		{AccelX: -4.2, AccelY: 0, AccelZ: 0.3},
	}

	for _, s := range samples {
		m := ComputeMetrics(s)
		is.True(m.VibrationPeak >= m.VibrationRMS)
	}
}

func TestComputeMetricsPassesThrough(t *testing.T) {
	is := is.New(t)

	recordedAt := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	m := ComputeMetrics(types.Sample{Temperature: 42.5, BatteryLevel: 87, RecordedAt: recordedAt})

	is.Equal(m.Temperature, 42.5)
	is.Equal(m.BatteryLevel, 87)
	is.Equal(m.RecordedAt, recordedAt)
}

func TestComputeMetricsIsDeterministic(t *testing.T) {
	is := is.New(t)

	s := types.Sample{AccelX: 0.173, AccelY: -1.28, AccelZ: 9.81, Temperature: 55.5, BatteryLevel: 60}

	is.Equal(ComputeMetrics(s), ComputeMetrics(s))
}
