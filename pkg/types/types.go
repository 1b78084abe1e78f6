package types

import (
	"time"
)

// Sample is a single raw telemetry reading as reported by a device.
// It is immutable once received.
type Sample struct {
	DeviceID   string    `json:"deviceID"`
	RecordedAt time.Time `json:"recordedAt"`

	AccelX float64 `json:"accelX"`
	AccelY float64 `json:"accelY"`
	AccelZ float64 `json:"accelZ"`

	GyroX float64 `json:"gyroX,omitempty"`
	GyroY float64 `json:"gyroY,omitempty"`
	GyroZ float64 `json:"gyroZ,omitempty"`

	Temperature    float64 `json:"temperature"`
	BatteryLevel   int     `json:"batteryLevel"`
	BatteryVoltage float64 `json:"batteryVoltage,omitempty"`
}

// Metrics holds the health metrics derived from a single sample.
type Metrics struct {
	VibrationRMS  float64   `json:"vibrationRMS"`
	VibrationPeak float64   `json:"vibrationPeak"`
	Temperature   float64   `json:"temperature"`
	BatteryLevel  int       `json:"batteryLevel"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// Threshold is the per-device alert configuration. Vibration and
// temperature carry a warning and a critical level, battery a single
// low level.
type Threshold struct {
	DeviceID string `json:"deviceID,omitempty" yaml:"-"`

	VibrationWarning  float64 `json:"vibrationWarning" yaml:"vibrationWarning"`
	VibrationCritical float64 `json:"vibrationCritical" yaml:"vibrationCritical"`
	TempWarning       float64 `json:"tempWarning" yaml:"tempWarning"`
	TempCritical      float64 `json:"tempCritical" yaml:"tempCritical"`
	BatteryLow        int     `json:"batteryLow" yaml:"batteryLow"`
}

// Valid reports whether warning levels are strictly below their
// critical counterparts.
func (t Threshold) Valid() bool {
	return t.VibrationWarning < t.VibrationCritical && t.TempWarning < t.TempCritical
}

type AlertType int

const (
	AlertVibrationWarning AlertType = iota
	AlertVibrationCritical
	AlertTempWarning
	AlertTempCritical
	AlertBatteryLow
)

// AllAlertTypes lists every alert type in declaration order. The
// position of a type in this list is also its bit in AlertFlags.
var AllAlertTypes = []AlertType{
	AlertVibrationWarning,
	AlertVibrationCritical,
	AlertTempWarning,
	AlertTempCritical,
	AlertBatteryLow,
}

func (a AlertType) String() string {
	switch a {
	case AlertVibrationWarning:
		return "vibration_warning"
	case AlertVibrationCritical:
		return "vibration_critical"
	case AlertTempWarning:
		return "temp_warning"
	case AlertTempCritical:
		return "temp_critical"
	case AlertBatteryLow:
		return "battery_low"
	}
	return "unknown"
}

// ParseAlertType returns the alert type named by s.
func ParseAlertType(s string) (AlertType, bool) {
	for _, a := range AllAlertTypes {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Alert is the persisted lifecycle entity. At most one alert per
// (device, alert type) pair may be open (active or acknowledged) at
// any time.
type Alert struct {
	ID       string    `json:"id"`
	DeviceID string    `json:"deviceID"`
	Type     AlertType `json:"alertType"`

	Severity Severity    `json:"severity"`
	Status   AlertStatus `json:"status"`

	Title   string `json:"title"`
	Message string `json:"message"`

	MeasuredValue  float64 `json:"measuredValue"`
	ThresholdValue float64 `json:"thresholdValue"`

	CreatedAt      time.Time  `json:"createdAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy     string     `json:"resolvedBy,omitempty"`
	ResolutionNote string     `json:"resolutionNote,omitempty"`
}

// Open reports whether the alert has not yet been resolved.
func (a Alert) Open() bool {
	return a.Status == AlertStatusActive || a.Status == AlertStatusAcknowledged
}

// AlertFlags is a bitmask over AlertType with one bit per open alert,
// attached to each stored sample for fast downstream filtering.
type AlertFlags uint32

func (f AlertFlags) Has(a AlertType) bool {
	return f&(1<<uint(a)) != 0
}

func (f *AlertFlags) Set(a AlertType) {
	*f |= 1 << uint(a)
}

type Collection[T any] struct {
	Data       []T
	Count      uint64
	Offset     uint64
	Limit      uint64
	TotalCount uint64
}
