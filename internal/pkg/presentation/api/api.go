package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/alerts"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/telemetry"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/thresholds"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/webevents"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/infrastructure/storage"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
)

var tracer = otel.Tracer("iot-fleet-mgmt/api")

// TelemetryQuerier serves the read side of the telemetry store.
type TelemetryQuerier interface {
	QueryTelemetry(ctx context.Context, deviceID string, limit int) ([]storage.EnrichedSample, error)
}

func RegisterHandlers(ctx context.Context, router *chi.Mux, ingestor telemetry.Ingestor, alertSvc alerts.AlertService, thresholdStore *thresholds.Store, querier TelemetryQuerier, we webevents.WebEvents) (*chi.Mux, error) {
	log := logging.GetFromContext(ctx)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v0", func(r chi.Router) {
		r.Post("/telemetry/{deviceID}", ingestTelemetryHandler(log, ingestor))
		r.Get("/telemetry/{deviceID}", queryTelemetryHandler(log, querier))

		r.Get("/alerts", queryAlertsHandler(log, alertSvc))
		r.Post("/alerts/{alertID}/acknowledge", acknowledgeAlertHandler(log, alertSvc))
		r.Post("/alerts/{alertID}/resolve", resolveAlertHandler(log, alertSvc))

		r.Get("/devices/{deviceID}/threshold", getThresholdHandler(log, thresholdStore))
		r.Put("/devices/{deviceID}/threshold", putThresholdHandler(log, thresholdStore))

		if we != nil {
			r.Mount("/events", we.Server())
		}
	})

	return router, nil
}

func ingestTelemetryHandler(log *slog.Logger, ingestor telemetry.Ingestor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "ingest-telemetry")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			requestLogger.Error("unable to read body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var sample types.Sample
		err = json.Unmarshal(body, &sample)
		if err != nil {
			requestLogger.Error("unable to unmarshal body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		sample.DeviceID = chi.URLParam(r, "deviceID")

		result, err := ingestor.Ingest(ctx, sample)
		if err != nil {
			var verr telemetry.ValidationError
			if errors.As(err, &verr) {
				requestLogger.Warn("invalid sample", "device_id", sample.DeviceID, "reason", verr.Reason)
				write(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
				return
			}
			if errors.Is(err, telemetry.ErrUnknownDevice) {
				requestLogger.Warn("unknown device", "device_id", sample.DeviceID)
				w.WriteHeader(http.StatusNotFound)
				return
			}

			requestLogger.Error("could not ingest sample", "device_id", sample.DeviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		write(w, http.StatusCreated, ingestResponse{
			Metrics: result.Metrics,
			Flags:   result.Flags,
			Events:  len(result.Events),
		})
	}
}

func queryTelemetryHandler(log *slog.Logger, querier TelemetryQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "query-telemetry")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		deviceID := chi.URLParam(r, "deviceID")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		samples, err := querier.QueryTelemetry(ctx, deviceID, limit)
		if err != nil {
			requestLogger.Error("could not query telemetry", "device_id", deviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		write(w, http.StatusOK, samples)
	}
}

func queryAlertsHandler(log *slog.Logger, svc alerts.AlertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "query-alerts")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		collection, err := svc.Query(ctx, r.URL.Query())
		if err != nil {
			requestLogger.Error("could not query alerts", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		write(w, http.StatusOK, collectionResponse[types.Alert]{
			Data:       collection.Data,
			Count:      collection.Count,
			Offset:     collection.Offset,
			Limit:      collection.Limit,
			TotalCount: collection.TotalCount,
		})
	}
}

func acknowledgeAlertHandler(log *slog.Logger, svc alerts.AlertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "acknowledge-alert")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		alertID := chi.URLParam(r, "alertID")

		var req struct {
			UserID string `json:"userID"`
		}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = svc.Acknowledge(ctx, alertID, req.UserID)
		writeTransitionResult(w, requestLogger, alertID, err)
	}
}

func resolveAlertHandler(log *slog.Logger, svc alerts.AlertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "resolve-alert")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		alertID := chi.URLParam(r, "alertID")

		var req struct {
			UserID string `json:"userID"`
			Note   string `json:"note,omitempty"`
		}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = svc.Resolve(ctx, alertID, req.UserID, req.Note)
		writeTransitionResult(w, requestLogger, alertID, err)
	}
}

func writeTransitionResult(w http.ResponseWriter, log *slog.Logger, alertID string, err error) {
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if errors.Is(err, alerts.ErrAlertNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var ite alerts.InvalidTransitionError
	if errors.As(err, &ite) {
		log.Warn("invalid transition", "alert_id", alertID, "err", err.Error())
		write(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	log.Error("could not update alert", "alert_id", alertID, "err", err.Error())
	w.WriteHeader(http.StatusInternalServerError)
}

func getThresholdHandler(log *slog.Logger, store *thresholds.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		_, span := tracer.Start(r.Context(), "get-threshold")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		write(w, http.StatusOK, store.Get(chi.URLParam(r, "deviceID")))
	}
}

func putThresholdHandler(log *slog.Logger, store *thresholds.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "put-threshold")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		var t types.Threshold
		if err = json.NewDecoder(r.Body).Decode(&t); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		t.DeviceID = chi.URLParam(r, "deviceID")

		err = store.Update(ctx, t)
		if err != nil {
			if errors.Is(err, thresholds.ErrInvalidThreshold) {
				write(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}

			requestLogger.Error("could not update threshold", "device_id", t.DeviceID, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type ingestResponse struct {
	Metrics types.Metrics    `json:"metrics"`
	Flags   types.AlertFlags `json:"alertFlags"`
	Events  int              `json:"events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type collectionResponse[T any] struct {
	Data       []T    `json:"data"`
	Count      uint64 `json:"count"`
	Offset     uint64 `json:"offset"`
	Limit      uint64 `json:"limit"`
	TotalCount uint64 `json:"totalCount"`
}

func write(w http.ResponseWriter, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
