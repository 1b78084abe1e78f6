package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

func NewConfig(host, user, password, port, dbname, sslmode string) Config {
	return Config{
		host:     host,
		user:     user,
		password: password,
		port:     port,
		dbname:   dbname,
		sslmode:  sslmode,
	}
}

func NewPool(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	p, err := pgxpool.New(ctx, config.ConnStr())
	if err != nil {
		return nil, err
	}

	err = p.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return p, nil
}

var (
	ErrNoRows      = errors.New("no rows in result set")
	ErrTooManyRows = errors.New("too many rows in result set")
	ErrStoreFailed = errors.New("could not store data")
	ErrNoID        = errors.New("data contains no id")
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func New(ctx context.Context, config Config) (*Storage, error) {
	pool, err := NewPool(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) CreateTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS devices (
			device_id	TEXT	NOT NULL,
			mac_address	TEXT	NULL,
			name		TEXT	NULL,
			active		BOOLEAN	NOT NULL DEFAULT TRUE,
			last_seen	timestamp with time zone NULL,
			created_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_devices PRIMARY KEY (device_id)
		);

		CREATE TABLE IF NOT EXISTS telemetry (
			time			timestamp with time zone NOT NULL,
			device_id		TEXT	NOT NULL,
			accel_x			DOUBLE PRECISION NOT NULL,
			accel_y			DOUBLE PRECISION NOT NULL,
			accel_z			DOUBLE PRECISION NOT NULL,
			gyro_x			DOUBLE PRECISION NOT NULL DEFAULT 0,
			gyro_y			DOUBLE PRECISION NOT NULL DEFAULT 0,
			gyro_z			DOUBLE PRECISION NOT NULL DEFAULT 0,
			vibration_rms	DOUBLE PRECISION NOT NULL,
			vibration_peak	DOUBLE PRECISION NOT NULL,
			temperature		DOUBLE PRECISION NOT NULL,
			battery_level	NUMERIC NOT NULL,
			battery_voltage	DOUBLE PRECISION NOT NULL DEFAULT 0,
			alert_flags		INT NOT NULL DEFAULT 0,
			created_on		timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_telemetry PRIMARY KEY (time, device_id)
		);

		CREATE TABLE IF NOT EXISTS alerts (
			alert_id		VARCHAR(255),
			device_id		TEXT NOT NULL,
			alert_type		VARCHAR(50) NOT NULL,
			severity		VARCHAR(20) NOT NULL,
			status			VARCHAR(20) NOT NULL DEFAULT 'active',
			title			VARCHAR(200) NOT NULL,
			message			VARCHAR(1000) NOT NULL,
			measured_value	DOUBLE PRECISION NOT NULL,
			threshold_value	DOUBLE PRECISION NOT NULL,
			created_at		timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			acknowledged_at	timestamp with time zone NULL,
			acknowledged_by	VARCHAR(255) NULL,
			resolved_at		timestamp with time zone NULL,
			resolved_by		VARCHAR(255) NULL,
			resolution_note	VARCHAR(1000) NULL,
			CONSTRAINT pkey_alerts PRIMARY KEY (alert_id)
		);

		CREATE TABLE IF NOT EXISTS thresholds (
			device_id			TEXT NOT NULL,
			vibration_warning	DOUBLE PRECISION NOT NULL DEFAULT 2.0,
			vibration_critical	DOUBLE PRECISION NOT NULL DEFAULT 4.0,
			temp_warning		DOUBLE PRECISION NOT NULL DEFAULT 60.0,
			temp_critical		DOUBLE PRECISION NOT NULL DEFAULT 80.0,
			battery_low			NUMERIC NOT NULL DEFAULT 20,
			created_on			timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_on			timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_thresholds PRIMARY KEY (device_id)
		);

		CREATE INDEX IF NOT EXISTS alerts_device_idx ON alerts (device_id);
		CREATE INDEX IF NOT EXISTS alerts_open_idx ON alerts (device_id, alert_type) WHERE status IN ('active', 'acknowledged');
		CREATE INDEX IF NOT EXISTS telemetry_device_time_idx ON telemetry (device_id, time DESC);
	`)
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) Close() {
	s.pool.Close()
}
