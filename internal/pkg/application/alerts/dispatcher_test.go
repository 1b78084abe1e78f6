package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDispatchRunsJobOnWorker(t *testing.T) {
	is := is.New(t)
	d := newDispatcher(4)
	defer d.stop()

	ran := false
	err := d.dispatch(context.Background(), testDevice, func() { ran = true })

	is.NoErr(err)
	is.True(ran)
}

func TestDispatchHonoursCancelledContext(t *testing.T) {
	is := is.New(t)
	d := newDispatcher(1)
	defer d.stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	started := make(chan struct{})
	go d.dispatch(context.Background(), testDevice, func() {
		close(started)
		<-release
	})
	<-started

	// the worker is busy and ctx is already cancelled, so the job is
	// never handed over
	err := d.dispatch(ctx, testDevice, func() {})
	is.True(errors.Is(err, context.Canceled))

	close(release)
}

func TestDispatchReturnsWhenStoppedWithQueuedJob(t *testing.T) {
	is := is.New(t)
	d := newDispatcher(1)

	release := make(chan struct{})
	started := make(chan struct{})

	busy := make(chan error, 1)
	go func() {
		busy <- d.dispatch(context.Background(), testDevice, func() {
			close(started)
			<-release
		})
	}()
	<-started

	// this job goes into the queue behind the busy one and is never
	// picked up once the pool shuts down
	queued := make(chan error, 1)
	go func() {
		queued <- d.dispatch(context.Background(), testDevice, func() {})
	}()

	time.Sleep(10 * time.Millisecond)
	go d.stop()
	time.Sleep(10 * time.Millisecond)
	close(release)

	select {
	case err := <-queued:
		// the job either ran just before the worker exited or the
		// caller was released with a cancellation, never left hanging
		is.True(err == nil || errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked after stop")
	}

	select {
	case <-busy:
	case <-time.After(time.Second):
		t.Fatal("busy dispatch blocked after stop")
	}
}
