package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/alerts"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/notifications"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/telemetry"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/thresholds"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/application/webevents"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/infrastructure/router"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/infrastructure/storage"
	"github.com/vibemon/iot-fleet-mgmt/internal/pkg/presentation/api"
	"github.com/vibemon/iot-fleet-mgmt/pkg/types"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"gopkg.in/yaml.v2"
)

const serviceName string = "iot-fleet-mgmt"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort

	configurationFile
	devicesFile

	dbHost
	dbUser
	dbPassword
	dbPort
	dbName
	dbSSLMode
)

type appConfig struct {
	Alerts           alerts.Config        `yaml:"alerts"`
	DefaultThreshold *types.Threshold     `yaml:"defaultThreshold"`
	Notifications    notifications.Config `yaml:"notifications"`
}

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",

		configurationFile: "/opt/vibemon/config/config.yaml",
		devicesFile:       "/opt/vibemon/config/devices.csv",

		dbHost:     "",
		dbUser:     "",
		dbPassword: "",
		dbPort:     "5432",
		dbName:     "vibemon",
		dbSSLMode:  "disable",
	}
}

func main() {
	ctx, flags := parseExternalConfig(context.Background(), defaultFlags())

	serviceVersion := buildinfo.SourceVersion()
	ctx, logger, cleanup := o11y.Init(ctx, serviceName, serviceVersion, "json")
	defer cleanup()

	cfgFile, err := os.Open(flags[configurationFile])
	exitIf(err, logger, "could not open configuration file")

	cfg, err := parseExternalConfigFile(cfgFile)
	exitIf(err, logger, "could not parse configuration file")

	devices, err := os.Open(flags[devicesFile])
	exitIf(err, logger, "could not open devices file")

	err = run(ctx, flags, cfg, devices)
	exitIf(err, logger, "failed to run service")
}

func run(ctx context.Context, flags flagMap, cfg *appConfig, devices io.ReadCloser) error {
	log := logging.GetFromContext(ctx)

	s, err := storage.New(ctx, storage.NewConfig(
		flags[dbHost], flags[dbUser], flags[dbPassword], flags[dbPort], flags[dbName], flags[dbSSLMode],
	))
	exitIf(err, log, "could not create or connect to database")
	defer s.Close()

	err = s.CreateTables(ctx)
	exitIf(err, log, "could not create database tables")

	err = seedDevices(ctx, s, devices)
	exitIf(err, log, "could not seed devices")

	messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, log))
	exitIf(err, log, "failed to init messenger")
	defer messenger.Close()

	thresholdStore := thresholds.NewStore(s, cfg.DefaultThreshold)
	err = thresholdStore.Refresh(ctx)
	exitIf(err, log, "could not load thresholds")

	alertSvc := alerts.New(s, messenger, thresholdStore, &cfg.Alerts)
	ingestor := telemetry.New(s, alertSvc, s)

	err = messenger.RegisterTopicMessageHandler("telemetry", telemetry.NewSampleHandler(ingestor))
	exitIf(err, log, "could not register telemetry handler")

	we := webevents.New()
	defer we.Shutdown()

	forward := webevents.NewTopicForwarder(we)
	for _, topic := range []string{"alerts.alertOpened", "alerts.alertEscalated", "alerts.alertAcknowledged", "alerts.alertResolved"} {
		err = messenger.RegisterTopicMessageHandler(topic, forward)
		exitIf(err, log, "could not register web event forwarder", "topic", topic)
	}

	sender := notifications.New(&cfg.Notifications)
	err = notifications.RegisterHandlers(messenger, sender)
	exitIf(err, log, "could not register notification handlers")

	messenger.Start()

	err = alertSvc.Start(ctx)
	exitIf(err, log, "could not restore alert state")
	defer alertSvc.Stop()

	r, err := api.RegisterHandlers(ctx, router.New(serviceName), ingestor, alertSvc, thresholdStore, s, we)
	exitIf(err, log, "failed to register handlers")

	apiPort := flags[servicePort]
	log.Info("starting to listen for incoming connections", "port", apiPort)

	webServer := &http.Server{Addr: flags[listenAddress] + ":" + apiPort, Handler: r}

	errChan := make(chan error, 1)
	go func() {
		if err := webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return webServer.Shutdown(shutdownCtx)
}

func seedDevices(ctx context.Context, s *storage.Storage, devices io.ReadCloser) error {
	defer devices.Close()

	reader := csv.NewReader(devices)
	reader.Comma = ';'
	reader.FieldsPerRecord = 4

	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	// devEUI;deviceID;name;active
	for _, record := range records[1:] {
		err = s.AddDevice(ctx, storage.Device{
			DeviceID:   record[1],
			MacAddress: record[0],
			Name:       record[2],
			Active:     record[3] == "true",
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func parseExternalConfigFile(cfgFile io.ReadCloser) (*appConfig, error) {
	defer cfgFile.Close()

	b, err := io.ReadAll(cfgFile)
	if err != nil {
		return nil, err
	}

	cfg := &appConfig{}
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DefaultThreshold == nil {
		def := thresholds.Default
		cfg.DefaultThreshold = &def
	}

	return cfg, nil
}

func parseExternalConfig(ctx context.Context, flags flagMap) (context.Context, flagMap) {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault

	flags[listenAddress] = envOrDef(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])

	flags[dbHost] = envOrDef(ctx, "POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef(ctx, "POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef(ctx, "POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef(ctx, "POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef(ctx, "POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef(ctx, "POSTGRES_SSLMODE", flags[dbSSLMode])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("devices", "list of known devices", apply(devicesFile))
	flag.Func("config", "service configuration file", apply(configurationFile))
	flag.Parse()

	return ctx, flags
}

func exitIf(err error, logger *slog.Logger, msg string, args ...any) {
	if err != nil {
		logger.With(args...).Error(msg, "err", err.Error())
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
