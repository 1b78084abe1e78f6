package storage

import (
	"context"
	"errors"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/jackc/pgx/v5"
)

func (s *Storage) ListThresholds(ctx context.Context) ([]types.Threshold, error) {
	var deviceID string
	var vibrationWarning, vibrationCritical, tempWarning, tempCritical float64
	var batteryLow int

	rows, err := s.pool.Query(ctx, `
		SELECT device_id, vibration_warning, vibration_critical, temp_warning, temp_critical, battery_low
		FROM thresholds
	`)
	if err != nil {
		return nil, err
	}

	thresholds := make([]types.Threshold, 0)

	_, err = pgx.ForEachRow(rows, []any{
		&deviceID, &vibrationWarning, &vibrationCritical, &tempWarning, &tempCritical, &batteryLow,
	}, func() error {
		thresholds = append(thresholds, types.Threshold{
			DeviceID:          deviceID,
			VibrationWarning:  vibrationWarning,
			VibrationCritical: vibrationCritical,
			TempWarning:       tempWarning,
			TempCritical:      tempCritical,
			BatteryLow:        batteryLow,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return thresholds, nil
}

func (s *Storage) GetThreshold(ctx context.Context, deviceID string) (types.Threshold, error) {
	var vibrationWarning, vibrationCritical, tempWarning, tempCritical float64
	var batteryLow int

	err := s.pool.QueryRow(ctx, `
		SELECT vibration_warning, vibration_critical, temp_warning, temp_critical, battery_low
		FROM thresholds
		WHERE device_id = @device_id
	`, pgx.NamedArgs{"device_id": deviceID}).Scan(
		&vibrationWarning, &vibrationCritical, &tempWarning, &tempCritical, &batteryLow,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Threshold{}, ErrNoRows
		}
		return types.Threshold{}, err
	}

	return types.Threshold{
		DeviceID:          deviceID,
		VibrationWarning:  vibrationWarning,
		VibrationCritical: vibrationCritical,
		TempWarning:       tempWarning,
		TempCritical:      tempCritical,
		BatteryLow:        batteryLow,
	}, nil
}

func (s *Storage) SaveThreshold(ctx context.Context, t types.Threshold) error {
	if t.DeviceID == "" {
		return ErrNoID
	}

	args := pgx.NamedArgs{
		"device_id":          t.DeviceID,
		"vibration_warning":  t.VibrationWarning,
		"vibration_critical": t.VibrationCritical,
		"temp_warning":       t.TempWarning,
		"temp_critical":      t.TempCritical,
		"battery_low":        t.BatteryLow,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO thresholds (device_id, vibration_warning, vibration_critical, temp_warning, temp_critical, battery_low)
		VALUES (@device_id, @vibration_warning, @vibration_critical, @temp_warning, @temp_critical, @battery_low)
		ON CONFLICT (device_id) DO UPDATE SET
			vibration_warning = EXCLUDED.vibration_warning,
			vibration_critical = EXCLUDED.vibration_critical,
			temp_warning = EXCLUDED.temp_warning,
			temp_critical = EXCLUDED.temp_critical,
			battery_low = EXCLUDED.battery_low,
			modified_on = CURRENT_TIMESTAMP
	`, args)
	if err != nil {
		return err
	}

	return nil
}
