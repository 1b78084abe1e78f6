package alerts

import (
	"context"
	"hash/fnv"
	"sync"
)

const DefaultWorkerCount = 8

// dispatcher routes work onto a fixed pool of workers, hashing on the
// device identifier so that all work for one device lands on the same
// worker. This serializes state machine access per device without any
// locking, while work for different devices runs in parallel.
type dispatcher struct {
	queues []chan func()
	wg     sync.WaitGroup
	once   sync.Once
	done   chan struct{}
}

func newDispatcher(workers int) *dispatcher {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}

	d := &dispatcher{
		queues: make([]chan func(), workers),
		done:   make(chan struct{}),
	}

	for i := range d.queues {
		d.queues[i] = make(chan func(), 32)

		d.wg.Add(1)
		go d.work(d.queues[i])
	}

	return d
}

func (d *dispatcher) work(queue <-chan func()) {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case job := <-queue:
			job()
		}
	}
}

// index returns the worker that owns deviceID. Every piece of state
// belonging to the device lives with that worker.
func (d *dispatcher) index(deviceID string) int {
	h := fnv.New32a()
	h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(len(d.queues)))
}

// dispatch runs job on the worker owning deviceID and waits for it to
// finish, or gives up when ctx is cancelled before the job was picked
// up.
func (d *dispatcher) dispatch(ctx context.Context, deviceID string, job func()) error {
	finished := make(chan struct{})

	wrapped := func() {
		defer close(finished)
		job()
	}

	queue := d.queues[d.index(deviceID)]

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return context.Canceled
	case queue <- wrapped:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		// the pool is shutting down; a queued but never started job
		// would otherwise leave the caller waiting forever
		return context.Canceled
	case <-finished:
		return nil
	}
}

func (d *dispatcher) stop() {
	d.once.Do(func() { close(d.done) })
	d.wg.Wait()
}
