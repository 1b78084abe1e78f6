package storage

import (
	"context"
	"time"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/jackc/pgx/v5"
)

// EnrichedSample is a stored sample together with the metrics and
// alert flags computed at ingestion time.
type EnrichedSample struct {
	Sample  types.Sample     `json:"sample"`
	Metrics types.Metrics    `json:"metrics"`
	Flags   types.AlertFlags `json:"alertFlags"`
}

func (s *Storage) Append(ctx context.Context, sample types.Sample, metrics types.Metrics, flags types.AlertFlags) error {
	args := pgx.NamedArgs{
		"time":            sample.RecordedAt,
		"device_id":       sample.DeviceID,
		"accel_x":         sample.AccelX,
		"accel_y":         sample.AccelY,
		"accel_z":         sample.AccelZ,
		"gyro_x":          sample.GyroX,
		"gyro_y":          sample.GyroY,
		"gyro_z":          sample.GyroZ,
		"vibration_rms":   metrics.VibrationRMS,
		"vibration_peak":  metrics.VibrationPeak,
		"temperature":     sample.Temperature,
		"battery_level":   sample.BatteryLevel,
		"battery_voltage": sample.BatteryVoltage,
		"alert_flags":     int(flags),
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO telemetry (time, device_id, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z,
		                       vibration_rms, vibration_peak, temperature, battery_level, battery_voltage, alert_flags)
		VALUES (@time, @device_id, @accel_x, @accel_y, @accel_z, @gyro_x, @gyro_y, @gyro_z,
		        @vibration_rms, @vibration_peak, @temperature, @battery_level, @battery_voltage, @alert_flags)
		ON CONFLICT (time, device_id) DO NOTHING
	`, args)
	if err != nil {
		return err
	}

	return nil
}

// QueryTelemetry returns the most recent samples for a device, newest
// first.
func (s *Storage) QueryTelemetry(ctx context.Context, deviceID string, limit int) ([]EnrichedSample, error) {
	if limit <= 0 {
		limit = 100
	}

	args := pgx.NamedArgs{
		"device_id": deviceID,
		"limit":     limit,
	}

	var recordedAt time.Time
	var accelX, accelY, accelZ, gyroX, gyroY, gyroZ float64
	var vibrationRMS, vibrationPeak, temperature, batteryVoltage float64
	var batteryLevel, alertFlags int

	rows, err := s.pool.Query(ctx, `
		SELECT time, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z,
		       vibration_rms, vibration_peak, temperature, battery_level, battery_voltage, alert_flags
		FROM telemetry
		WHERE device_id = @device_id
		ORDER BY time DESC
		LIMIT @limit
	`, args)
	if err != nil {
		return nil, err
	}

	samples := make([]EnrichedSample, 0, limit)

	_, err = pgx.ForEachRow(rows, []any{
		&recordedAt, &accelX, &accelY, &accelZ, &gyroX, &gyroY, &gyroZ,
		&vibrationRMS, &vibrationPeak, &temperature, &batteryLevel, &batteryVoltage, &alertFlags,
	}, func() error {
		samples = append(samples, EnrichedSample{
			Sample: types.Sample{
				DeviceID:       deviceID,
				RecordedAt:     recordedAt,
				AccelX:         accelX,
				AccelY:         accelY,
				AccelZ:         accelZ,
				GyroX:          gyroX,
				GyroY:          gyroY,
				GyroZ:          gyroZ,
				Temperature:    temperature,
				BatteryLevel:   batteryLevel,
				BatteryVoltage: batteryVoltage,
			},
			Metrics: types.Metrics{
				VibrationRMS:  vibrationRMS,
				VibrationPeak: vibrationPeak,
				Temperature:   temperature,
				BatteryLevel:  batteryLevel,
				RecordedAt:    recordedAt,
			},
			Flags: types.AlertFlags(alertFlags),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return samples, nil
}
