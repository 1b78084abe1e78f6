package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/alerts"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

func testIngestor(registry *DeviceRegistryMock, alertSvc *alerts.AlertServiceMock, store *TelemetryStoreMock) Ingestor {
	if registry.IsKnownAndActiveFunc == nil {
		registry.IsKnownAndActiveFunc = func(ctx context.Context, deviceID string) (bool, error) { return true, nil }
	}
	if registry.SetLastSeenFunc == nil {
		registry.SetLastSeenFunc = func(ctx context.Context, deviceID string, observedAt time.Time) error { return nil }
	}
	if alertSvc.ProcessFunc == nil {
		alertSvc.ProcessFunc = func(ctx context.Context, sample types.Sample, metrics types.Metrics) (alerts.ProcessResult, error) {
			return alerts.ProcessResult{Sample: sample, Metrics: metrics}, nil
		}
	}
	if store.AppendFunc == nil {
		store.AppendFunc = func(ctx context.Context, sample types.Sample, metrics types.Metrics, flags types.AlertFlags) error {
			return nil
		}
	}

	return New(registry, alertSvc, store)
}

func validSample() types.Sample {
	return types.Sample{
		DeviceID:     "vibe-0001",
		RecordedAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		AccelX:       0.1,
		AccelY:       -0.2,
		AccelZ:       9.8,
		Temperature:  35.0,
		BatteryLevel: 90,
	}
}

func TestIngestComputesAndStoresMetrics(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{}
	alertSvc := &alerts.AlertServiceMock{}
	store := &TelemetryStoreMock{}

	i := testIngestor(registry, alertSvc, store)

	sample := validSample()
	result, err := i.Ingest(ctx, sample)
	is.NoErr(err)

	is.Equal(result.Metrics, ComputeMetrics(sample))

	is.Equal(len(store.AppendCalls()), 1)
	is.Equal(store.AppendCalls()[0].Sample, sample)

	is.Equal(len(registry.SetLastSeenCalls()), 1)
	is.Equal(registry.SetLastSeenCalls()[0].ObservedAt, sample.RecordedAt)
}

func TestIngestRejectsMissingDeviceID(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{}
	alertSvc := &alerts.AlertServiceMock{}
	store := &TelemetryStoreMock{}

	i := testIngestor(registry, alertSvc, store)

	sample := validSample()
	sample.DeviceID = ""

	_, err := i.Ingest(ctx, sample)

	var verr ValidationError
	is.True(errors.As(err, &verr))
	is.Equal(len(store.AppendCalls()), 0)
}

func TestIngestRejectsNonFiniteValues(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		registry := &DeviceRegistryMock{}
		alertSvc := &alerts.AlertServiceMock{}
		store := &TelemetryStoreMock{}

		i := testIngestor(registry, alertSvc, store)

		sample := validSample()
		sample.AccelZ = bad

		_, err := i.Ingest(ctx, sample)

		var verr ValidationError
		is.True(errors.As(err, &verr))
		is.Equal(len(alertSvc.ProcessCalls()), 0)
	}
}

func TestIngestRejectsBatteryOutOfRange(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{}
	alertSvc := &alerts.AlertServiceMock{}
	store := &TelemetryStoreMock{}

	i := testIngestor(registry, alertSvc, store)

	sample := validSample()
	sample.BatteryLevel = 101

	_, err := i.Ingest(ctx, sample)

	var verr ValidationError
	is.True(errors.As(err, &verr))
}

func TestIngestRejectsUnknownDevice(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{
		IsKnownAndActiveFunc: func(ctx context.Context, deviceID string) (bool, error) { return false, nil },
	}
	alertSvc := &alerts.AlertServiceMock{}
	store := &TelemetryStoreMock{}

	i := testIngestor(registry, alertSvc, store)

	_, err := i.Ingest(ctx, validSample())

	is.True(errors.Is(err, ErrUnknownDevice))
	is.Equal(len(alertSvc.ProcessCalls()), 0)
	is.Equal(len(store.AppendCalls()), 0)
}

func TestIngestNormalizesMissingTimestamp(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{}
	alertSvc := &alerts.AlertServiceMock{}
	store := &TelemetryStoreMock{}

	i := testIngestor(registry, alertSvc, store)

	sample := validSample()
	sample.RecordedAt = time.Time{}

	before := time.Now().UTC()
	_, err := i.Ingest(ctx, sample)
	is.NoErr(err)

	stored := store.AppendCalls()[0].Sample
	is.True(!stored.RecordedAt.IsZero())
	is.True(!stored.RecordedAt.Before(before))
}

func TestIngestStorageFailureDoesNotFailIngest(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{}
	alertSvc := &alerts.AlertServiceMock{}
	store := &TelemetryStoreMock{
		AppendFunc: func(ctx context.Context, sample types.Sample, metrics types.Metrics, flags types.AlertFlags) error {
			return fmt.Errorf("connection refused")
		},
	}

	i := testIngestor(registry, alertSvc, store)

	_, err := i.Ingest(ctx, validSample())
	is.NoErr(err)

	// alert processing happened despite the storage failure
	is.Equal(len(alertSvc.ProcessCalls()), 1)
}

func TestIngestPropagatesAlertFailure(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	registry := &DeviceRegistryMock{}
	alertSvc := &alerts.AlertServiceMock{
		ProcessFunc: func(ctx context.Context, sample types.Sample, metrics types.Metrics) (alerts.ProcessResult, error) {
			return alerts.ProcessResult{}, context.Canceled
		},
	}
	store := &TelemetryStoreMock{}

	i := testIngestor(registry, alertSvc, store)

	_, err := i.Ingest(ctx, validSample())
	is.True(err != nil)
	is.Equal(len(store.AppendCalls()), 0)
}
