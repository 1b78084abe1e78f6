package thresholds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/infrastructure/storage"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

// Default mirrors the factory configuration devices ship with.
var Default = types.Threshold{
	VibrationWarning:  2.0,
	VibrationCritical: 4.0,
	TempWarning:       60.0,
	TempCritical:      80.0,
	BatteryLow:        20,
}

var ErrInvalidThreshold = fmt.Errorf("warning threshold must be below critical threshold")

//go:generate moq -rm -out thresholdrepository_mock.go . ThresholdRepository
type ThresholdRepository interface {
	ListThresholds(ctx context.Context) ([]types.Threshold, error)
	GetThreshold(ctx context.Context, deviceID string) (types.Threshold, error)
	SaveThreshold(ctx context.Context, t types.Threshold) error
}

// Store serves per-device threshold configuration with a process-wide
// default fallback. Reads never block on configuration updates: the
// whole snapshot is replaced atomically, so a concurrent read observes
// either the old or the new configuration, never a torn one.
type Store struct {
	repo ThresholdRepository
	def  types.Threshold

	snapshot atomic.Pointer[map[string]types.Threshold]
	mu       sync.Mutex // serializes writers only
}

func NewStore(repo ThresholdRepository, def *types.Threshold) *Store {
	s := &Store{
		repo: repo,
		def:  Default,
	}

	if def != nil && def.Valid() {
		s.def = *def
	}

	empty := map[string]types.Threshold{}
	s.snapshot.Store(&empty)

	return s
}

// Refresh replaces the snapshot with the repository's current
// contents.
func (s *Store) Refresh(ctx context.Context) error {
	all, err := s.repo.ListThresholds(ctx)
	if err != nil && !errors.Is(err, storage.ErrNoRows) {
		return err
	}

	next := make(map[string]types.Threshold, len(all))
	for _, t := range all {
		next[t.DeviceID] = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Store(&next)

	return nil
}

// Get returns the device-specific configuration, or the default when
// none exists.
func (s *Store) Get(deviceID string) types.Threshold {
	if t, ok := (*s.snapshot.Load())[deviceID]; ok {
		return t
	}

	t := s.def
	t.DeviceID = deviceID

	return t
}

// Default returns the process-wide fallback configuration.
func (s *Store) Default() types.Threshold {
	return s.def
}

// Update validates and persists a device threshold, then swaps in a
// new snapshot containing the stored row. A failed read-back leaves
// the snapshot untouched until the next Refresh.
func (s *Store) Update(ctx context.Context, t types.Threshold) error {
	if !t.Valid() {
		return ErrInvalidThreshold
	}

	err := s.repo.SaveThreshold(ctx, t)
	if err != nil {
		return err
	}

	stored, err := s.repo.GetThreshold(ctx, t.DeviceID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := *s.snapshot.Load()
	next := make(map[string]types.Threshold, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[stored.DeviceID] = stored
	s.snapshot.Store(&next)

	return nil
}
