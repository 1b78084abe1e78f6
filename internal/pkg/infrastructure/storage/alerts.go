package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/jackc/pgx/v5"
)

func (s *Storage) QueryAlerts(ctx context.Context, conditions ...ConditionFunc) (types.Collection[types.Alert], error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	if condition.sortBy == "" {
		condition.sortBy = "created_at"
		condition.sortOrder = "DESC"
	}

	args := condition.NamedArgs()

	var alertID, deviceID, alertType, severity, status, title, message string
	var measuredValue, thresholdValue float64
	var createdAt time.Time
	var acknowledgedAt, resolvedAt *time.Time
	var acknowledgedBy, resolvedBy, resolutionNote *string
	var count int64

	query := fmt.Sprintf(`
		SELECT alert_id, device_id, alert_type, severity, status, title, message,
		       measured_value, threshold_value, created_at,
		       acknowledged_at, acknowledged_by, resolved_at, resolved_by, resolution_note,
		       count(*) OVER () AS count
		FROM alerts
		%s
		ORDER BY %s %s
		%s
	`, condition.Where(), condition.SortBy(), condition.SortOrder(), condition.OffsetLimit())

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return types.Collection[types.Alert]{}, err
	}

	alerts := make([]types.Alert, 0)

	_, err = pgx.ForEachRow(rows, []any{
		&alertID, &deviceID, &alertType, &severity, &status, &title, &message,
		&measuredValue, &thresholdValue, &createdAt,
		&acknowledgedAt, &acknowledgedBy, &resolvedAt, &resolvedBy, &resolutionNote,
		&count,
	}, func() error {
		alert, err := rowToAlert(alertID, deviceID, alertType, severity, status, title, message,
			measuredValue, thresholdValue, createdAt,
			acknowledgedAt, acknowledgedBy, resolvedAt, resolvedBy, resolutionNote)
		if err != nil {
			return err
		}

		alerts = append(alerts, alert)

		return nil
	})
	if err != nil {
		return types.Collection[types.Alert]{}, err
	}

	return types.Collection[types.Alert]{
		Data:       alerts,
		Count:      uint64(len(alerts)),
		Offset:     uint64(condition.Offset()),
		Limit:      uint64(condition.Limit()),
		TotalCount: uint64(count),
	}, nil
}

func (s *Storage) GetAlert(ctx context.Context, conditions ...ConditionFunc) (types.Alert, error) {
	condition := &Condition{}
	for _, f := range conditions {
		f(condition)
	}

	args := condition.NamedArgs()

	var alertID, deviceID, alertType, severity, status, title, message string
	var measuredValue, thresholdValue float64
	var createdAt time.Time
	var acknowledgedAt, resolvedAt *time.Time
	var acknowledgedBy, resolvedBy, resolutionNote *string

	query := `
		SELECT alert_id, device_id, alert_type, severity, status, title, message,
		       measured_value, threshold_value, created_at,
		       acknowledged_at, acknowledged_by, resolved_at, resolved_by, resolution_note
		FROM alerts
	`

	if where := condition.Where(); where != "" {
		query = fmt.Sprintf("%s %s ORDER BY created_at DESC", query, where)
	}

	err := s.pool.QueryRow(ctx, query, args).Scan(
		&alertID, &deviceID, &alertType, &severity, &status, &title, &message,
		&measuredValue, &thresholdValue, &createdAt,
		&acknowledgedAt, &acknowledgedBy, &resolvedAt, &resolvedBy, &resolutionNote,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Alert{}, ErrNoRows
		}
		return types.Alert{}, err
	}

	return rowToAlert(alertID, deviceID, alertType, severity, status, title, message,
		measuredValue, thresholdValue, createdAt,
		acknowledgedAt, acknowledgedBy, resolvedAt, resolvedBy, resolutionNote)
}

func (s *Storage) UpsertAlert(ctx context.Context, alert types.Alert) error {
	if alert.ID == "" {
		return ErrNoID
	}

	args := pgx.NamedArgs{
		"alert_id":        alert.ID,
		"device_id":       alert.DeviceID,
		"alert_type":      alert.Type.String(),
		"severity":        alert.Severity.String(),
		"status":          string(alert.Status),
		"title":           alert.Title,
		"message":         alert.Message,
		"measured_value":  alert.MeasuredValue,
		"threshold_value": alert.ThresholdValue,
		"created_at":      alert.CreatedAt,
		"acknowledged_at": alert.AcknowledgedAt,
		"acknowledged_by": nullable(alert.AcknowledgedBy),
		"resolved_at":     alert.ResolvedAt,
		"resolved_by":     nullable(alert.ResolvedBy),
		"resolution_note": nullable(alert.ResolutionNote),
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO alerts (alert_id, device_id, alert_type, severity, status, title, message,
		                    measured_value, threshold_value, created_at,
		                    acknowledged_at, acknowledged_by, resolved_at, resolved_by, resolution_note)
		VALUES (@alert_id, @device_id, @alert_type, @severity, @status, @title, @message,
		        @measured_value, @threshold_value, @created_at,
		        @acknowledged_at, @acknowledged_by, @resolved_at, @resolved_by, @resolution_note)
		ON CONFLICT (alert_id) DO UPDATE SET
			status = EXCLUDED.status,
			severity = EXCLUDED.severity,
			acknowledged_at = EXCLUDED.acknowledged_at,
			acknowledged_by = EXCLUDED.acknowledged_by,
			resolved_at = EXCLUDED.resolved_at,
			resolved_by = EXCLUDED.resolved_by,
			resolution_note = EXCLUDED.resolution_note
	`, args)
	if err != nil {
		return err
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rowToAlert(alertID, deviceID, alertType, severity, status, title, message string,
	measuredValue, thresholdValue float64, createdAt time.Time,
	acknowledgedAt *time.Time, acknowledgedBy *string,
	resolvedAt *time.Time, resolvedBy, resolutionNote *string,
) (types.Alert, error) {
	at, ok := types.ParseAlertType(alertType)
	if !ok {
		return types.Alert{}, fmt.Errorf("unknown alert type %s", alertType)
	}

	return types.Alert{
		ID:             alertID,
		DeviceID:       deviceID,
		Type:           at,
		Severity:       parseSeverity(severity),
		Status:         types.AlertStatus(status),
		Title:          title,
		Message:        message,
		MeasuredValue:  measuredValue,
		ThresholdValue: thresholdValue,
		CreatedAt:      createdAt,
		AcknowledgedAt: acknowledgedAt,
		AcknowledgedBy: deref(acknowledgedBy),
		ResolvedAt:     resolvedAt,
		ResolvedBy:     deref(resolvedBy),
		ResolutionNote: deref(resolutionNote),
	}, nil
}

func parseSeverity(s string) types.Severity {
	switch s {
	case "critical":
		return types.SeverityCritical
	case "warning":
		return types.SeverityWarning
	}
	return types.SeverityInfo
}
