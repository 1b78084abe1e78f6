package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/diwise/messaging-golang/pkg/messaging"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/infrastructure/storage"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

type staticThresholds struct{}

func (staticThresholds) Get(deviceID string) types.Threshold {
	t := testThreshold
	t.DeviceID = deviceID
	return t
}

func testService(repo *AlertRepositoryMock, m *messaging.MsgContextMock) AlertService {
	if repo.UpsertAlertFunc == nil {
		repo.UpsertAlertFunc = func(ctx context.Context, alert types.Alert) error { return nil }
	}
	if m.PublishOnTopicFunc == nil {
		m.PublishOnTopicFunc = func(ctx context.Context, message messaging.TopicMessage) error { return nil }
	}

	return New(repo, m, staticThresholds{}, &Config{Workers: 2})
}

func breachingSample(deviceID string, rms float64) (types.Sample, types.Metrics) {
	s := types.Sample{DeviceID: deviceID, RecordedAt: ts(0), BatteryLevel: 90}
	m := types.Metrics{VibrationRMS: rms, Temperature: 30, BatteryLevel: 90, RecordedAt: s.RecordedAt}
	return s, m
}

func TestProcessOpensAlertAndPublishes(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	sample, metrics := breachingSample(testDevice, 2.5)

	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	is.Equal(len(result.Events), 1)
	is.Equal(result.Events[0].Kind, EventOpened)
	is.True(result.Flags.Has(types.AlertVibrationWarning))

	is.Equal(len(repo.UpsertAlertCalls()), 1)
	is.Equal(repo.UpsertAlertCalls()[0].Alert.Type, types.AlertVibrationWarning)

	is.Equal(len(m.PublishOnTopicCalls()), 1)
	is.Equal(m.PublishOnTopicCalls()[0].Message.TopicName(), "alerts.alertOpened")
}

func TestProcessHealthySampleIsQuiet(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	sample, metrics := breachingSample(testDevice, 0.2)

	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	is.Equal(len(result.Events), 0)
	is.Equal(result.Flags, types.AlertFlags(0))
	is.Equal(len(repo.UpsertAlertCalls()), 0)
	is.Equal(len(m.PublishOnTopicCalls()), 0)
}

func TestProcessEscalationPersistsSupersededRecord(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	sample, metrics := breachingSample(testDevice, 2.5)
	_, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	sample, metrics = breachingSample(testDevice, 5.0)
	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	is.Equal(len(result.Events), 1)
	is.Equal(result.Events[0].Kind, EventEscalated)

	// opened, then the closed warning record, then the new critical one
	is.Equal(len(repo.UpsertAlertCalls()), 3)
	is.Equal(repo.UpsertAlertCalls()[1].Alert.Status, types.AlertStatusResolved)
	is.Equal(repo.UpsertAlertCalls()[1].Alert.ResolutionNote, ResolutionNoteEscalated)
	is.Equal(repo.UpsertAlertCalls()[2].Alert.Type, types.AlertVibrationCritical)

	is.Equal(m.PublishOnTopicCalls()[1].Message.TopicName(), "alerts.alertEscalated")
}

func TestStorageFailureDoesNotUnwindProcessing(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{
		UpsertAlertFunc: func(ctx context.Context, alert types.Alert) error {
			return storage.ErrStoreFailed
		},
	}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	sample, metrics := breachingSample(testDevice, 2.5)

	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)
	is.Equal(len(result.Events), 1)

	// the lifecycle event is still published
	is.Equal(len(m.PublishOnTopicCalls()), 1)
}

func TestAcknowledgeByID(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	sample, metrics := breachingSample(testDevice, 2.5)
	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	opened := result.Events[0].Alert
	repo.GetAlertFunc = func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Alert, error) {
		return opened, nil
	}

	err = svc.Acknowledge(ctx, opened.ID, "operator")
	is.NoErr(err)

	calls := repo.UpsertAlertCalls()
	is.Equal(calls[len(calls)-1].Alert.Status, types.AlertStatusAcknowledged)
	is.Equal(calls[len(calls)-1].Alert.AcknowledgedBy, "operator")

	published := m.PublishOnTopicCalls()
	is.Equal(published[len(published)-1].Message.TopicName(), "alerts.alertAcknowledged")
}

func TestAcknowledgeResolvedAlertFails(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{
		GetAlertFunc: func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Alert, error) {
			return types.Alert{ID: "a-1", DeviceID: testDevice, Status: types.AlertStatusResolved}, nil
		},
	}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	err := svc.Acknowledge(ctx, "a-1", "operator")

	var ite InvalidTransitionError
	is.True(errors.As(err, &ite))
	is.Equal(ite.Current, types.AlertStatusResolved)
}

func TestAcknowledgeUnknownAlertFails(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{
		GetAlertFunc: func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Alert, error) {
			return types.Alert{}, storage.ErrNoRows
		},
	}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	err := svc.Acknowledge(ctx, "no-such-id", "operator")
	is.True(errors.Is(err, ErrAlertNotFound))
}

func TestResolveByID(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	sample, metrics := breachingSample(testDevice, 2.5)
	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	opened := result.Events[0].Alert
	repo.GetAlertFunc = func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Alert, error) {
		return opened, nil
	}

	err = svc.Resolve(ctx, opened.ID, "operator", "false positive")
	is.NoErr(err)

	calls := repo.UpsertAlertCalls()
	is.Equal(calls[len(calls)-1].Alert.Status, types.AlertStatusResolved)
	is.Equal(calls[len(calls)-1].Alert.ResolvedBy, "operator")
	is.Equal(calls[len(calls)-1].Alert.ResolutionNote, "false positive")

	published := m.PublishOnTopicCalls()
	is.Equal(published[len(published)-1].Message.TopicName(), "alerts.alertResolved")
}

func TestStartRestoresOpenAlerts(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	open := types.Alert{
		ID:       "restored-1",
		DeviceID: testDevice,
		Type:     types.AlertVibrationWarning,
		Severity: types.SeverityWarning,
		Status:   types.AlertStatusActive,
	}

	repo := &AlertRepositoryMock{
		QueryAlertsFunc: func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Alert], error) {
			return types.Collection[types.Alert]{Data: []types.Alert{open}, Count: 1, TotalCount: 1}, nil
		},
	}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	err := svc.Start(ctx)
	is.NoErr(err)

	// the restored alert deduplicates the next breach
	sample, metrics := breachingSample(testDevice, 2.5)
	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	is.Equal(len(result.Events), 0)
	is.True(result.Flags.Has(types.AlertVibrationWarning))
}

func TestQueryTranslatesParameters(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{
		QueryAlertsFunc: func(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Alert], error) {
			return types.Collection[types.Alert]{}, nil
		},
	}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	_, err := svc.Query(ctx, map[string][]string{
		"device_id":  {testDevice},
		"status":     {"active"},
		"limit":      {"10"},
		"sort_by":    {"created_at"},
		"sort_order": {"desc"},
	})
	is.NoErr(err)

	is.Equal(len(repo.QueryAlertsCalls()), 1)
	is.Equal(len(repo.QueryAlertsCalls()[0].Conditions), 5)
}

func TestProcessUsesSampleTimeForLifecycle(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	repo := &AlertRepositoryMock{}
	m := &messaging.MsgContextMock{}

	svc := testService(repo, m)
	defer svc.Stop()

	recordedAt := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	sample := types.Sample{DeviceID: testDevice, RecordedAt: recordedAt, BatteryLevel: 90}
	metrics := types.Metrics{VibrationRMS: 2.5, Temperature: 30, BatteryLevel: 90, RecordedAt: recordedAt}

	result, err := svc.Process(ctx, sample, metrics)
	is.NoErr(err)

	is.Equal(result.Events[0].Alert.CreatedAt, recordedAt)
}
