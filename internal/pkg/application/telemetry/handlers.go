package telemetry

import (
	"context"
	"encoding/json"
	"errors"

	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
)

var tracer = otel.Tracer("iot-fleet-mgmt/telemetry")

// NewSampleHandler handles samples arriving over the message bus.
// Samples for unknown devices or with malformed payloads are dropped
// and logged, never retried.
func NewSampleHandler(ingestor Ingestor) messaging.TopicMessageHandler {
	return func(ctx context.Context, itm messaging.IncomingTopicMessage, l *slog.Logger) {
		var err error

		ctx, span := tracer.Start(ctx, "ingest-sample")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, l, ctx)

		sample := types.Sample{}

		err = json.Unmarshal(itm.Body(), &sample)
		if err != nil {
			log.Error("failed to unmarshal sample", "err", err.Error())
			return
		}

		_, err = ingestor.Ingest(ctx, sample)
		if err != nil {
			var verr ValidationError
			if errors.As(err, &verr) {
				log.Warn("dropped invalid sample", "device_id", sample.DeviceID, "reason", verr.Reason)
				return
			}
			if errors.Is(err, ErrUnknownDevice) {
				log.Warn("dropped sample for unknown device", "device_id", sample.DeviceID)
				return
			}
			log.Error("could not ingest sample", "device_id", sample.DeviceID, "err", err.Error())
		}
	}
}
