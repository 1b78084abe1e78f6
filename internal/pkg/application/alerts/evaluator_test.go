package alerts

import (
	"testing"

	"github.com/matryer/is"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

var testThreshold = types.Threshold{
	VibrationWarning:  2.0,
	VibrationCritical: 4.0,
	TempWarning:       60.0,
	TempCritical:      80.0,
	BatteryLow:        20,
}

func TestEvaluateHealthySample(t *testing.T) {
	is := is.New(t)

	candidates := Evaluate(types.Metrics{VibrationRMS: 0.5, Temperature: 35, BatteryLevel: 90}, testThreshold)

	is.Equal(len(candidates), 0)
}

func TestEvaluateVibrationWarning(t *testing.T) {
	is := is.New(t)

	candidates := Evaluate(types.Metrics{VibrationRMS: 2.5, Temperature: 35, BatteryLevel: 90}, testThreshold)

	is.Equal(len(candidates), 1)
	is.Equal(candidates[0].Type, types.AlertVibrationWarning)
	is.Equal(candidates[0].Severity, types.SeverityWarning)
	is.Equal(candidates[0].MeasuredValue, 2.5)
	is.Equal(candidates[0].ThresholdValue, 2.0)
}

func TestEvaluateCriticalSupersedesWarning(t *testing.T) {
	is := is.New(t)

	candidates := Evaluate(types.Metrics{VibrationRMS: 5.0, Temperature: 35, BatteryLevel: 90}, testThreshold)

	is.Equal(len(candidates), 1)
	is.Equal(candidates[0].Type, types.AlertVibrationCritical)
	is.Equal(candidates[0].Severity, types.SeverityCritical)
}

func TestEvaluateExactThresholdBreaches(t *testing.T) {
	is := is.New(t)

	candidates := Evaluate(types.Metrics{VibrationRMS: 2.0, Temperature: 80.0, BatteryLevel: 20}, testThreshold)

	is.Equal(len(candidates), 3)
	is.Equal(candidates[0].Type, types.AlertVibrationWarning)
	is.Equal(candidates[1].Type, types.AlertTempCritical)
	is.Equal(candidates[2].Type, types.AlertBatteryLow)
}

func TestEvaluateIndependentQuantities(t *testing.T) {
	is := is.New(t)

	candidates := Evaluate(types.Metrics{VibrationRMS: 4.5, Temperature: 65, BatteryLevel: 10}, testThreshold)

	is.Equal(len(candidates), 3)
	is.Equal(candidates[0].Type, types.AlertVibrationCritical)
	is.Equal(candidates[1].Type, types.AlertTempWarning)
	is.Equal(candidates[2].Type, types.AlertBatteryLow)
	is.Equal(candidates[2].Severity, types.SeverityWarning)
}

func TestEvaluateBatteryJustAboveLow(t *testing.T) {
	is := is.New(t)

	candidates := Evaluate(types.Metrics{VibrationRMS: 0.1, Temperature: 30, BatteryLevel: 21}, testThreshold)

	is.Equal(len(candidates), 0)
}
