package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

const DefaultClearThreshold = 3

// ResolutionNoteEscalated is the note written on an alert record that
// was closed because a higher severity breach superseded it.
const ResolutionNoteEscalated = "escalated"

const resolvedBySystem = "system"

type EventKind int

const (
	EventOpened EventKind = iota
	EventEscalated
	EventAutoResolved
	EventAcknowledged
	EventResolved
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventEscalated:
		return "escalated"
	case EventAutoResolved:
		return "autoResolved"
	case EventAcknowledged:
		return "acknowledged"
	case EventResolved:
		return "resolved"
	}
	return "unknown"
}

// Event is a notable lifecycle transition. Alert is the record in its
// new state. For escalations Previous carries the superseded record,
// closed with ResolutionNoteEscalated.
type Event struct {
	Kind      EventKind
	Alert     types.Alert
	Previous  *types.Alert
	Timestamp time.Time
}

// InvalidTransitionError reports a lifecycle operation that is not
// allowed from the alert's current status. It never mutates state.
type InvalidTransitionError struct {
	Attempted string
	Current   types.AlertStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s alert with status %s", e.Attempted, e.Current)
}

var ErrAlertNotFound = fmt.Errorf("alert not found")

type stateKey struct {
	deviceID  string
	alertType types.AlertType
}

type alertState struct {
	alert  types.Alert
	clears int
}

// quantityGroups partitions the alert types into physical quantities,
// ordered by ascending severity within each group. Escalation happens
// within a group, never across groups.
var quantityGroups = [][]types.AlertType{
	{types.AlertVibrationWarning, types.AlertVibrationCritical},
	{types.AlertTempWarning, types.AlertTempCritical},
	{types.AlertBatteryLow},
}

// StateMachine owns the lifecycle state of every open alert for the
// devices assigned to it. It is pure in-memory computation with no
// I/O and is not safe for concurrent use; each instance is owned by
// exactly one worker.
type StateMachine struct {
	clearThreshold int
	states         map[stateKey]*alertState
}

func NewStateMachine(clearThreshold int) *StateMachine {
	if clearThreshold <= 0 {
		clearThreshold = DefaultClearThreshold
	}

	return &StateMachine{
		clearThreshold: clearThreshold,
		states:         make(map[stateKey]*alertState),
	}
}

// Restore seeds the machine with an alert that is already open in the
// backing store, so that deduplication survives a restart. Resolved
// alerts are ignored.
func (m *StateMachine) Restore(alert types.Alert) {
	if !alert.Open() {
		return
	}

	m.states[stateKey{alert.DeviceID, alert.Type}] = &alertState{alert: alert}
}

// Flags returns the bitmask of alert types currently open for the
// device, one bit per type in declaration order.
func (m *StateMachine) Flags(deviceID string) types.AlertFlags {
	var flags types.AlertFlags

	for _, at := range types.AllAlertTypes {
		if _, ok := m.states[stateKey{deviceID, at}]; ok {
			flags.Set(at)
		}
	}

	return flags
}

// ProcessSample applies one sample's breach candidates to every alert
// type of the device. Types without a candidate this sample count as
// a clear observation; after clearThreshold consecutive clears an open
// alert auto-resolves. Repeated breaches at or below the current
// severity are suppressed, a higher severity breach within the same
// quantity closes the current record and opens a new one.
func (m *StateMachine) ProcessSample(deviceID string, candidates []BreachCandidate, now time.Time) []Event {
	byType := map[types.AlertType]BreachCandidate{}
	for _, c := range candidates {
		byType[c.Type] = c
	}

	events := make([]Event, 0)

	for _, group := range quantityGroups {
		events = append(events, m.processGroup(deviceID, group, byType, now)...)
	}

	return events
}

func (m *StateMachine) processGroup(deviceID string, group []types.AlertType, byType map[types.AlertType]BreachCandidate, now time.Time) []Event {
	var candidate *BreachCandidate
	for _, at := range group {
		if c, ok := byType[at]; ok {
			candidate = &c
			break
		}
	}

	var open *alertState
	var openKey stateKey
	for _, at := range group {
		k := stateKey{deviceID, at}
		if s, ok := m.states[k]; ok {
			open = s
			openKey = k
			break
		}
	}

	if candidate == nil {
		if open == nil {
			return nil
		}

		open.clears++
		if open.clears < m.clearThreshold {
			return nil
		}

		resolved := open.alert
		resolved.Status = types.AlertStatusResolved
		resolved.ResolvedAt = &now
		resolved.ResolvedBy = resolvedBySystem
		delete(m.states, openKey)

		return []Event{{Kind: EventAutoResolved, Alert: resolved, Timestamp: now}}
	}

	if open == nil {
		opened := newAlert(deviceID, *candidate, now)
		m.states[stateKey{deviceID, candidate.Type}] = &alertState{alert: opened}

		return []Event{{Kind: EventOpened, Alert: opened, Timestamp: now}}
	}

	// any breach interrupts the consecutive-clear run
	open.clears = 0

	// an acknowledged alert is already being handled, fresh breaches
	// are ignored until it resolves
	if open.alert.Status == types.AlertStatusAcknowledged {
		return nil
	}

	if candidate.Severity <= open.alert.Severity {
		return nil
	}

	superseded := open.alert
	superseded.Status = types.AlertStatusResolved
	superseded.ResolvedAt = &now
	superseded.ResolvedBy = resolvedBySystem
	superseded.ResolutionNote = ResolutionNoteEscalated
	delete(m.states, openKey)

	opened := newAlert(deviceID, *candidate, now)
	m.states[stateKey{deviceID, candidate.Type}] = &alertState{alert: opened}

	return []Event{{Kind: EventEscalated, Alert: opened, Previous: &superseded, Timestamp: now}}
}

// Acknowledge moves an active alert to acknowledged. The alertID must
// match the currently open record for the key, otherwise the operation
// addresses a stale instance.
func (m *StateMachine) Acknowledge(deviceID string, alertType types.AlertType, alertID, by string, now time.Time) (types.Alert, error) {
	s, ok := m.states[stateKey{deviceID, alertType}]
	if !ok || s.alert.ID != alertID {
		return types.Alert{}, InvalidTransitionError{Attempted: "acknowledge", Current: types.AlertStatusResolved}
	}

	if s.alert.Status != types.AlertStatusActive {
		return types.Alert{}, InvalidTransitionError{Attempted: "acknowledge", Current: s.alert.Status}
	}

	s.alert.Status = types.AlertStatusAcknowledged
	s.alert.AcknowledgedAt = &now
	s.alert.AcknowledgedBy = by

	return s.alert, nil
}

// Resolve closes an open alert on explicit operator action.
func (m *StateMachine) Resolve(deviceID string, alertType types.AlertType, alertID, by, note string, now time.Time) (types.Alert, error) {
	k := stateKey{deviceID, alertType}

	s, ok := m.states[k]
	if !ok || s.alert.ID != alertID {
		return types.Alert{}, InvalidTransitionError{Attempted: "resolve", Current: types.AlertStatusResolved}
	}

	resolved := s.alert
	resolved.Status = types.AlertStatusResolved
	resolved.ResolvedAt = &now
	resolved.ResolvedBy = by
	resolved.ResolutionNote = note
	delete(m.states, k)

	return resolved, nil
}

func newAlert(deviceID string, c BreachCandidate, now time.Time) types.Alert {
	return types.Alert{
		ID:             uuid.NewString(),
		DeviceID:       deviceID,
		Type:           c.Type,
		Severity:       c.Severity,
		Status:         types.AlertStatusActive,
		Title:          alertTitle(c.Type),
		Message:        alertMessage(c),
		MeasuredValue:  c.MeasuredValue,
		ThresholdValue: c.ThresholdValue,
		CreatedAt:      now,
	}
}

func alertTitle(at types.AlertType) string {
	switch at {
	case types.AlertVibrationWarning:
		return "Elevated vibration"
	case types.AlertVibrationCritical:
		return "Critical vibration"
	case types.AlertTempWarning:
		return "Elevated temperature"
	case types.AlertTempCritical:
		return "Critical temperature"
	case types.AlertBatteryLow:
		return "Low battery"
	}
	return "Alert"
}

func alertMessage(c BreachCandidate) string {
	switch c.Type {
	case types.AlertVibrationWarning, types.AlertVibrationCritical:
		return fmt.Sprintf("vibration RMS %.2f g exceeds %s threshold %.2f g", c.MeasuredValue, c.Severity, c.ThresholdValue)
	case types.AlertTempWarning, types.AlertTempCritical:
		return fmt.Sprintf("temperature %.1f °C exceeds %s threshold %.1f °C", c.MeasuredValue, c.Severity, c.ThresholdValue)
	case types.AlertBatteryLow:
		return fmt.Sprintf("battery level %.0f%% is at or below %.0f%%", c.MeasuredValue, c.ThresholdValue)
	}
	return ""
}
