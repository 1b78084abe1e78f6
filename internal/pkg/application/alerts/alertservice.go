package alerts

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/infrastructure/storage"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const defaultPortTimeout = 5 * time.Second

//go:generate moq -rm -out alertservice_mock.go . AlertService
type AlertService interface {
	Process(ctx context.Context, sample types.Sample, metrics types.Metrics) (ProcessResult, error)
	Query(ctx context.Context, params map[string][]string) (types.Collection[types.Alert], error)
	GetByID(ctx context.Context, alertID string) (types.Alert, error)
	Acknowledge(ctx context.Context, alertID, userID string) error
	Resolve(ctx context.Context, alertID, userID, note string) error
	Start(ctx context.Context) error
	Stop()
}

//go:generate moq -rm -out alertrepository_mock.go . AlertRepository
type AlertRepository interface {
	QueryAlerts(ctx context.Context, conditions ...storage.ConditionFunc) (types.Collection[types.Alert], error)
	GetAlert(ctx context.Context, conditions ...storage.ConditionFunc) (types.Alert, error)
	UpsertAlert(ctx context.Context, alert types.Alert) error
}

// ThresholdProvider yields the effective threshold configuration for a
// device, falling back to a default when none is configured.
type ThresholdProvider interface {
	Get(deviceID string) types.Threshold
}

// ProcessResult is the outcome of running one sample through the
// pipeline: the sample, its derived metrics, the bitmask of alert
// types open after the sample was applied, and the lifecycle events it
// triggered.
type ProcessResult struct {
	Sample  types.Sample
	Metrics types.Metrics
	Flags   types.AlertFlags
	Events  []Event
}

type Config struct {
	ClearThreshold int `yaml:"clearThreshold"`
	Workers        int `yaml:"workers"`
}

type alertSvc struct {
	storage    AlertRepository
	messenger  messaging.MsgContext
	thresholds ThresholdProvider

	disp        *dispatcher
	machines    []*StateMachine
	portTimeout time.Duration
}

func New(s AlertRepository, m messaging.MsgContext, t ThresholdProvider, cfg *Config) AlertService {
	workers := DefaultWorkerCount
	clears := DefaultClearThreshold

	if cfg != nil {
		if cfg.Workers > 0 {
			workers = cfg.Workers
		}
		if cfg.ClearThreshold > 0 {
			clears = cfg.ClearThreshold
		}
	}

	svc := &alertSvc{
		storage:     s,
		messenger:   m,
		thresholds:  t,
		disp:        newDispatcher(workers),
		machines:    make([]*StateMachine, workers),
		portTimeout: defaultPortTimeout,
	}

	for i := range svc.machines {
		svc.machines[i] = NewStateMachine(clears)
	}

	return svc
}

// Start restores every alert that is still open in the backing store
// into its owning state machine, so that deduplication and hysteresis
// survive a restart.
func (svc *alertSvc) Start(ctx context.Context) error {
	open, err := svc.storage.QueryAlerts(ctx, storage.WithOpenOnly())
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return nil
		}
		return err
	}

	for _, a := range open.Data {
		alert := a
		err = svc.disp.dispatch(ctx, alert.DeviceID, func() {
			svc.machine(alert.DeviceID).Restore(alert)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (svc *alertSvc) Stop() {
	svc.disp.stop()
}

func (svc *alertSvc) machine(deviceID string) *StateMachine {
	return svc.machines[svc.disp.index(deviceID)]
}

func (svc *alertSvc) Process(ctx context.Context, sample types.Sample, metrics types.Metrics) (ProcessResult, error) {
	result := ProcessResult{Sample: sample, Metrics: metrics}

	now := sample.RecordedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	err := svc.disp.dispatch(ctx, sample.DeviceID, func() {
		m := svc.machine(sample.DeviceID)

		threshold := svc.thresholds.Get(sample.DeviceID)
		candidates := Evaluate(metrics, threshold)

		result.Events = m.ProcessSample(sample.DeviceID, candidates, now)
		result.Flags = m.Flags(sample.DeviceID)

		svc.commit(ctx, result.Events)
	})
	if err != nil {
		return ProcessResult{}, err
	}

	return result, nil
}

// commit persists and publishes the records touched by a batch of
// lifecycle events. The in-memory transition has already happened, so
// port failures are logged and left to the event log to reconcile,
// never propagated back into the state machine.
func (svc *alertSvc) commit(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}

	log := logging.GetFromContext(ctx)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), svc.portTimeout)
	defer cancel()

	for _, e := range events {
		if e.Previous != nil {
			if err := svc.storage.UpsertAlert(pctx, *e.Previous); err != nil {
				log.Error("could not store superseded alert", "alert_id", e.Previous.ID, "err", err.Error())
			}
		}

		if err := svc.storage.UpsertAlert(pctx, e.Alert); err != nil {
			log.Error("could not store alert", "alert_id", e.Alert.ID, "err", err.Error())
		}

		if err := svc.messenger.PublishOnTopic(pctx, topicMessage(e)); err != nil {
			log.Error("could not publish lifecycle event", "alert_id", e.Alert.ID, "event", e.Kind.String(), "err", err.Error())
		}
	}
}

func topicMessage(e Event) messaging.TopicMessage {
	switch e.Kind {
	case EventEscalated:
		return &types.AlertEscalated{Alert: e.Alert, Previous: *e.Previous, Timestamp: e.Timestamp}
	case EventAutoResolved:
		return &types.AlertResolved{Alert: e.Alert, Auto: true, Timestamp: e.Timestamp}
	case EventAcknowledged:
		return &types.AlertAcknowledged{Alert: e.Alert, Timestamp: e.Timestamp}
	case EventResolved:
		return &types.AlertResolved{Alert: e.Alert, Timestamp: e.Timestamp}
	default:
		return &types.AlertOpened{Alert: e.Alert, Timestamp: e.Timestamp}
	}
}

func (svc *alertSvc) GetByID(ctx context.Context, alertID string) (types.Alert, error) {
	alert, err := svc.storage.GetAlert(ctx, storage.WithAlertID(alertID))
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			return types.Alert{}, ErrAlertNotFound
		}
		return types.Alert{}, err
	}

	return alert, nil
}

func (svc *alertSvc) Query(ctx context.Context, params map[string][]string) (types.Collection[types.Alert], error) {
	conditions := make([]storage.ConditionFunc, 0)

	for k, v := range params {
		switch strings.ToLower(k) {
		case "device_id":
			conditions = append(conditions, storage.WithDeviceID(v[0]))
		case "status":
			conditions = append(conditions, storage.WithStatus(v))
		case "type":
			fallthrough
		case "types":
			conditions = append(conditions, storage.WithAlertTypes(v))
		case "open":
			if open, _ := strconv.ParseBool(v[0]); open {
				conditions = append(conditions, storage.WithOpenOnly())
			}
		case "limit":
			limit, _ := strconv.Atoi(v[0])
			conditions = append(conditions, storage.WithLimit(limit))
		case "offset":
			offset, _ := strconv.Atoi(v[0])
			conditions = append(conditions, storage.WithOffset(offset))
		case "sort_by":
			conditions = append(conditions, storage.WithSortBy(v[0]))
		case "sort_order":
			conditions = append(conditions, storage.WithSortDesc(strings.EqualFold(v[0], "desc")))
		}
	}

	return svc.storage.QueryAlerts(ctx, conditions...)
}

func (svc *alertSvc) Acknowledge(ctx context.Context, alertID, userID string) error {
	alert, err := svc.GetByID(ctx, alertID)
	if err != nil {
		return err
	}

	if !alert.Open() {
		return InvalidTransitionError{Attempted: "acknowledge", Current: alert.Status}
	}

	var terr error

	err = svc.disp.dispatch(ctx, alert.DeviceID, func() {
		var updated types.Alert

		now := time.Now().UTC()

		updated, terr = svc.machine(alert.DeviceID).Acknowledge(alert.DeviceID, alert.Type, alertID, userID, now)
		if terr != nil {
			return
		}

		svc.commit(ctx, []Event{{Kind: EventAcknowledged, Alert: updated, Timestamp: now}})
	})
	if err != nil {
		return err
	}

	return terr
}

func (svc *alertSvc) Resolve(ctx context.Context, alertID, userID, note string) error {
	alert, err := svc.GetByID(ctx, alertID)
	if err != nil {
		return err
	}

	if !alert.Open() {
		return InvalidTransitionError{Attempted: "resolve", Current: alert.Status}
	}

	var terr error

	err = svc.disp.dispatch(ctx, alert.DeviceID, func() {
		var resolved types.Alert

		now := time.Now().UTC()

		resolved, terr = svc.machine(alert.DeviceID).Resolve(alert.DeviceID, alert.Type, alertID, userID, note, now)
		if terr != nil {
			return
		}

		svc.commit(ctx, []Event{{Kind: EventResolved, Alert: resolved, Timestamp: now}})
	})
	if err != nil {
		return err
	}

	return terr
}
