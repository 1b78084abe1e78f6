package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"log/slog"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/vibemon/iot-fleet-mgmt/pkg/types"
)

// EventSender forwards alert lifecycle events to external subscriber
// endpoints as cloud events. Push, email and SMS gateways live behind
// those endpoints and are out of scope here.
type EventSender interface {
	Send(ctx context.Context, event types.Alert, eventType string) error
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err == nil {
		return &cfg, nil
	} else {
		return nil, err
	}
}

type eventSender struct {
	subscribers map[string][]SubscriberConfig
}

func New(cfg *Config) EventSender {
	e := &eventSender{
		subscribers: make(map[string][]SubscriberConfig),
	}

	if cfg != nil {
		for _, n := range cfg.Notifications {
			e.subscribers[n.Type] = n.Subscribers
		}
	}

	return e
}

func (e *eventSender) Send(ctx context.Context, alert types.Alert, eventType string) error {
	subscribers, ok := e.subscribers[eventType]
	if !ok || len(subscribers) == 0 {
		return nil
	}

	c, err := cloudevents.NewClientHTTP()
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(fmt.Sprintf("%s:%d", alert.ID, alert.CreatedAt.Unix()))
	event.SetTime(time.Now().UTC())
	event.SetSource("github.com/vibemon/iot-fleet-mgmt")
	event.SetType(eventType)

	err = event.SetData(cloudevents.ApplicationJSON, alert)
	if err != nil {
		return err
	}

	logger := logging.GetFromContext(ctx)

	for _, s := range subscribers {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			logger.Error("failed to send event", "endpoint", s.Endpoint, "err", result.Error())
			err = fmt.Errorf("%w", result)
		}
	}

	return err
}

// RegisterHandlers subscribes the sender to every lifecycle topic on
// the message bus.
func RegisterHandlers(messenger messaging.MsgContext, sender EventSender) error {
	topics := []string{
		(&types.AlertOpened{}).TopicName(),
		(&types.AlertEscalated{}).TopicName(),
		(&types.AlertAcknowledged{}).TopicName(),
		(&types.AlertResolved{}).TopicName(),
	}

	for _, topic := range topics {
		err := messenger.RegisterTopicMessageHandler(topic, newLifecycleHandler(sender))
		if err != nil {
			return err
		}
	}

	return nil
}

func newLifecycleHandler(sender EventSender) messaging.TopicMessageHandler {
	return func(ctx context.Context, itm messaging.IncomingTopicMessage, log *slog.Logger) {
		envelope := struct {
			Alert types.Alert `json:"alert"`
		}{}

		err := json.Unmarshal(itm.Body(), &envelope)
		if err != nil {
			log.Error("failed to unmarshal lifecycle event", "err", err.Error())
			return
		}

		err = sender.Send(ctx, envelope.Alert, itm.TopicName())
		if err != nil {
			log.Error("could not forward lifecycle event", "alert_id", envelope.Alert.ID, "err", err.Error())
		}
	}
}
