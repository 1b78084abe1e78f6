package telemetry

import (
	"math"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

// ComputeMetrics derives the health metrics for a single sample. It is
// a total function over finite input; rejecting NaN/Inf values is the
// ingestor's concern. All computation is done in double precision and
// nothing is rounded before threshold comparison.
func ComputeMetrics(s types.Sample) types.Metrics {
	rms := math.Sqrt((s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ) / 3.0)
	peak := math.Max(math.Abs(s.AccelX), math.Max(math.Abs(s.AccelY), math.Abs(s.AccelZ)))

	return types.Metrics{
		VibrationRMS:  rms,
		VibrationPeak: peak,
		Temperature:   s.Temperature,
		BatteryLevel:  s.BatteryLevel,
		RecordedAt:    s.RecordedAt,
	}
}
