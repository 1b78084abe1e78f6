package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/matryer/is"

	"github.com/diwise/messaging-golang/pkg/messaging"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/alerts"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

func TestSampleHandlerIngestsValidSample(t *testing.T) {
	is := is.New(t)
	log := slog.Default()
	ctx := context.Background()

	ingestor := &IngestorMock{
		IngestFunc: func(ctx context.Context, sample types.Sample) (alerts.ProcessResult, error) {
			return alerts.ProcessResult{Sample: sample}, nil
		},
	}

	msg := &messaging.IncomingTopicMessageMock{
		BodyFunc: func() []byte {
			b, _ := json.Marshal(validSample())
			return b
		},
	}

	handler := NewSampleHandler(ingestor)
	handler(ctx, msg, log)

	is.Equal(len(ingestor.IngestCalls()), 1)
	is.Equal(ingestor.IngestCalls()[0].Sample.DeviceID, "vibe-0001")
}

func TestSampleHandlerDropsMalformedPayload(t *testing.T) {
	is := is.New(t)
	log := slog.Default()
	ctx := context.Background()

	ingestor := &IngestorMock{}

	msg := &messaging.IncomingTopicMessageMock{
		BodyFunc: func() []byte {
			return []byte("not json")
		},
	}

	handler := NewSampleHandler(ingestor)
	handler(ctx, msg, log)

	is.Equal(len(ingestor.IngestCalls()), 0)
}

func TestSampleHandlerDropsUnknownDevice(t *testing.T) {
	is := is.New(t)
	log := slog.Default()
	ctx := context.Background()

	ingestor := &IngestorMock{
		IngestFunc: func(ctx context.Context, sample types.Sample) (alerts.ProcessResult, error) {
			return alerts.ProcessResult{}, ErrUnknownDevice
		},
	}

	msg := &messaging.IncomingTopicMessageMock{
		BodyFunc: func() []byte {
			b, _ := json.Marshal(validSample())
			return b
		},
	}

	// dropping must not panic or retry
	handler := NewSampleHandler(ingestor)
	handler(ctx, msg, log)

	is.Equal(len(ingestor.IngestCalls()), 1)
}
