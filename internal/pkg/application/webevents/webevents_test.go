package webevents

import (
	"context"
	"encoding/json"
	"testing"

	"log/slog"

	gosse "github.com/alexandrevicenzi/go-sse"
	"github.com/matryer/is"

	"github.com/diwise/messaging-golang/pkg/messaging"
)

func TestPublishAcceptsMarshallablePayload(t *testing.T) {
	is := is.New(t)

	we := New()
	defer we.Shutdown()

	err := we.Publish("alerts.alertOpened", map[string]string{"id": "a-1"})
	is.NoErr(err)
}

func TestPublishRejectsUnmarshallablePayload(t *testing.T) {
	is := is.New(t)

	we := New()
	defer we.Shutdown()

	err := we.Publish("alerts.alertOpened", func() {})
	is.True(err != nil)
}

type publishRecorder struct {
	event string
	data  any
}

func (r *publishRecorder) Server() *gosse.Server { return nil }
func (r *publishRecorder) Shutdown()             {}
func (r *publishRecorder) Publish(event string, data any) error {
	r.event = event
	r.data = data
	return nil
}

func TestTopicForwarderPublishesBusEvents(t *testing.T) {
	is := is.New(t)

	rec := &publishRecorder{}
	handler := NewTopicForwarder(rec)

	itm := &messaging.IncomingTopicMessageMock{
		BodyFunc:      func() []byte { return []byte(`{"alert":{"id":"a-1"}}`) },
		TopicNameFunc: func() string { return "alerts.alertEscalated" },
	}

	handler(context.Background(), itm, slog.Default())

	is.Equal(rec.event, "alerts.alertEscalated")
	is.Equal(rec.data, json.RawMessage(`{"alert":{"id":"a-1"}}`))
}
