package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Device is the slim registry record the pipeline needs. The full
// device inventory (organizations, firmware, location) is owned by the
// surrounding CRUD system.
type Device struct {
	DeviceID   string     `json:"deviceID"`
	MacAddress string     `json:"macAddress,omitempty"`
	Name       string     `json:"name,omitempty"`
	Active     bool       `json:"active"`
	LastSeen   *time.Time `json:"lastSeen,omitempty"`
}

func (s *Storage) IsKnownAndActive(ctx context.Context, deviceID string) (bool, error) {
	var active bool

	err := s.pool.QueryRow(ctx, `
		SELECT active FROM devices WHERE device_id = @device_id
	`, pgx.NamedArgs{"device_id": deviceID}).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return active, nil
}

func (s *Storage) SetLastSeen(ctx context.Context, deviceID string, observedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE devices SET last_seen = @last_seen, modified_on = CURRENT_TIMESTAMP
		WHERE device_id = @device_id AND (last_seen IS NULL OR last_seen < @last_seen)
	`, pgx.NamedArgs{"device_id": deviceID, "last_seen": observedAt})

	return err
}

func (s *Storage) AddDevice(ctx context.Context, d Device) error {
	if d.DeviceID == "" {
		return ErrNoID
	}

	args := pgx.NamedArgs{
		"device_id":   d.DeviceID,
		"mac_address": d.MacAddress,
		"name":        d.Name,
		"active":      d.Active,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (device_id, mac_address, name, active)
		VALUES (@device_id, @mac_address, @name, @active)
		ON CONFLICT (device_id) DO UPDATE SET
			mac_address = EXCLUDED.mac_address,
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			modified_on = CURRENT_TIMESTAMP
	`, args)

	return err
}
