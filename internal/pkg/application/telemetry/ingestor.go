package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/alerts"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

var ErrUnknownDevice = fmt.Errorf("unknown or inactive device")

// ValidationError marks a malformed or out-of-range sample. Such
// samples are dropped before any computation and never retried.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid sample: " + e.Reason
}

//go:generate moq -rm -out deviceregistry_mock.go . DeviceRegistry
type DeviceRegistry interface {
	IsKnownAndActive(ctx context.Context, deviceID string) (bool, error)
	SetLastSeen(ctx context.Context, deviceID string, observedAt time.Time) error
}

//go:generate moq -rm -out telemetrystore_mock.go . TelemetryStore
type TelemetryStore interface {
	Append(ctx context.Context, sample types.Sample, metrics types.Metrics, flags types.AlertFlags) error
}

//go:generate moq -rm -out ingestor_mock.go . Ingestor
type Ingestor interface {
	Ingest(ctx context.Context, sample types.Sample) (alerts.ProcessResult, error)
}

type ingestor struct {
	registry DeviceRegistry
	alerts   alerts.AlertService
	store    TelemetryStore

	portTimeout time.Duration
}

func New(registry DeviceRegistry, alertSvc alerts.AlertService, store TelemetryStore) Ingestor {
	return &ingestor{
		registry:    registry,
		alerts:      alertSvc,
		store:       store,
		portTimeout: 5 * time.Second,
	}
}

// Ingest validates and normalizes an inbound sample, derives its
// metrics, runs alert processing and appends the enriched sample to
// the telemetry store. Telemetry storage is best effort: alerting must
// not be lost because storage was briefly unavailable, and vice versa.
func (i *ingestor) Ingest(ctx context.Context, sample types.Sample) (alerts.ProcessResult, error) {
	err := validate(sample)
	if err != nil {
		return alerts.ProcessResult{}, err
	}

	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now().UTC()
	}

	known, err := i.registry.IsKnownAndActive(ctx, sample.DeviceID)
	if err != nil {
		return alerts.ProcessResult{}, fmt.Errorf("device registry lookup failed: %w", err)
	}
	if !known {
		return alerts.ProcessResult{}, ErrUnknownDevice
	}

	metrics := ComputeMetrics(sample)

	result, err := i.alerts.Process(ctx, sample, metrics)
	if err != nil {
		return alerts.ProcessResult{}, err
	}

	log := logging.GetFromContext(ctx)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.portTimeout)
	defer cancel()

	err = i.store.Append(sctx, sample, metrics, result.Flags)
	if err != nil {
		log.Error("could not store telemetry", "device_id", sample.DeviceID, "err", err.Error())
	}

	err = i.registry.SetLastSeen(sctx, sample.DeviceID, sample.RecordedAt)
	if err != nil {
		log.Error("could not update last seen", "device_id", sample.DeviceID, "err", err.Error())
	}

	return result, nil
}

func validate(s types.Sample) error {
	if s.DeviceID == "" {
		return ValidationError{Reason: "missing device id"}
	}

	values := map[string]float64{
		"accelX":         s.AccelX,
		"accelY":         s.AccelY,
		"accelZ":         s.AccelZ,
		"gyroX":          s.GyroX,
		"gyroY":          s.GyroY,
		"gyroZ":          s.GyroZ,
		"temperature":    s.Temperature,
		"batteryVoltage": s.BatteryVoltage,
	}

	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ValidationError{Reason: fmt.Sprintf("%s is not a finite number", name)}
		}
	}

	if s.BatteryLevel < 0 || s.BatteryLevel > 100 {
		return ValidationError{Reason: fmt.Sprintf("battery level %d outside [0,100]", s.BatteryLevel)}
	}

	return nil
}
