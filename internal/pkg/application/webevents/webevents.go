package webevents

import (
	"context"
	"encoding/json"

	"log/slog"

	gosse "github.com/alexandrevicenzi/go-sse"

	"github.com/diwise/messaging-golang/pkg/messaging"
)

// WebEvents pushes alert lifecycle events to connected dashboards over
// server-sent events.
type WebEvents interface {
	Server() *gosse.Server
	Shutdown()
	Publish(event string, data any) error
}

type webEvents struct {
	s *gosse.Server
}

func New() WebEvents {
	return &webEvents{
		s: gosse.NewServer(&gosse.Options{}),
	}
}

func (we *webEvents) Server() *gosse.Server {
	return we.s
}

func (we *webEvents) Shutdown() {
	we.s.Shutdown()
}

func (we *webEvents) Publish(event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	message := gosse.NewMessage("", string(b), event)
	we.s.SendMessage("", message)

	return nil
}

// NewTopicForwarder republishes a lifecycle event from the message bus
// to every connected dashboard, using the topic name as the SSE event
// name.
func NewTopicForwarder(we WebEvents) messaging.TopicMessageHandler {
	return func(ctx context.Context, itm messaging.IncomingTopicMessage, log *slog.Logger) {
		err := we.Publish(itm.TopicName(), json.RawMessage(itm.Body()))
		if err != nil {
			log.Error("failed to forward event to dashboards", "topic", itm.TopicName(), "err", err.Error())
		}
	}
}
