package alerts

import (
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

// BreachCandidate is a metric observed at or beyond a configured
// threshold. Candidates are produced by Evaluate and consumed by the
// state machine; they are not alerts yet.
type BreachCandidate struct {
	Type           types.AlertType
	Severity       types.Severity
	MeasuredValue  float64
	ThresholdValue float64
}

// Evaluate compares metrics against a threshold configuration and
// returns zero or more breach candidates. Each physical quantity is
// evaluated independently, so a single sample may yield several
// candidates. When both warning and critical levels are crossed for
// the same quantity only the critical candidate is emitted.
func Evaluate(m types.Metrics, t types.Threshold) []BreachCandidate {
	candidates := make([]BreachCandidate, 0, 3)

	if m.VibrationRMS >= t.VibrationCritical {
		candidates = append(candidates, BreachCandidate{
			Type:           types.AlertVibrationCritical,
			Severity:       types.SeverityCritical,
			MeasuredValue:  m.VibrationRMS,
			ThresholdValue: t.VibrationCritical,
		})
	} else if m.VibrationRMS >= t.VibrationWarning {
		candidates = append(candidates, BreachCandidate{
			Type:           types.AlertVibrationWarning,
			Severity:       types.SeverityWarning,
			MeasuredValue:  m.VibrationRMS,
			ThresholdValue: t.VibrationWarning,
		})
	}

	if m.Temperature >= t.TempCritical {
		candidates = append(candidates, BreachCandidate{
			Type:           types.AlertTempCritical,
			Severity:       types.SeverityCritical,
			MeasuredValue:  m.Temperature,
			ThresholdValue: t.TempCritical,
		})
	} else if m.Temperature >= t.TempWarning {
		candidates = append(candidates, BreachCandidate{
			Type:           types.AlertTempWarning,
			Severity:       types.SeverityWarning,
			MeasuredValue:  m.Temperature,
			ThresholdValue: t.TempWarning,
		})
	}

	if m.BatteryLevel <= t.BatteryLow {
		candidates = append(candidates, BreachCandidate{
			Type:           types.AlertBatteryLow,
			Severity:       types.SeverityWarning,
			MeasuredValue:  float64(m.BatteryLevel),
			ThresholdValue: float64(t.BatteryLow),
		})
	}

	return candidates
}
