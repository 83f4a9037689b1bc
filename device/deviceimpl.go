package device

import (
	"context"
	"time"
)

// RawReading is a chunk of bytes read from, or pushed by, a device
// endpoint. Returned by ReadValue and delivered on the channel returned
// by Subscribe.
type RawReading struct {
	Endpoint Endpoint
	Data     []byte
}

// Impl is the bus-facing capability a protocol handler drives. Concrete
// implementations wrap a specific transport (BLE, serial, a test
// fake); the protocol layer never talks to a transport directly.
type Impl interface {
	Name() string
	Address() string
	Endpoints() []Endpoint
	Connected() bool

	WriteValue(ctx context.Context, endpoint Endpoint, data []byte, writeWithResponse bool) error
	ReadValue(ctx context.Context, endpoint Endpoint) (RawReading, error)

	// Subscribe returns a channel that receives a RawReading every time
	// the endpoint pushes data (e.g. a BLE notify characteristic). The
	// channel is closed when Unsubscribe is called or the device
	// disconnects.
	Subscribe(ctx context.Context, endpoint Endpoint) (<-chan RawReading, error)
	Unsubscribe(ctx context.Context, endpoint Endpoint) error

	Disconnect() error
}

// command is one bus operation queued onto a CommandQueue, along with
// the slot its result should be delivered to.
type command struct {
	run  func(ctx context.Context) (any, error)
	done chan result
}

type result struct {
	val any
	err error
}

// CommandQueue serializes bus access for one device through a single
// background goroutine: many bus stacks (BLE GATT in particular) are
// not safe for concurrent reads/writes/subscribes on the same
// connection, so every DeviceImpl that wraps one of those builds its
// Impl methods on top of a CommandQueue instead of calling the
// underlying transport directly from the caller's goroutine.
type CommandQueue struct {
	in chan command
}

// NewCommandQueue starts the queue's consumer goroutine. It runs until
// ctx is canceled.
func NewCommandQueue(ctx context.Context) *CommandQueue {
	q := &CommandQueue{in: make(chan command, 16)}
	go q.run(ctx)
	return q
}

func (q *CommandQueue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-q.in:
			val, err := cmd.run(ctx)
			cmd.done <- result{val: val, err: err}
		}
	}
}

// Submit queues fn to run on the consumer goroutine and blocks for its
// result, or until ctx is canceled.
func Submit[T any](ctx context.Context, q *CommandQueue, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	done := make(chan result, 1)
	cmd := command{
		run: func(ctx context.Context) (any, error) {
			return fn(ctx)
		},
		done: done,
	}
	select {
	case q.in <- cmd:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-time.After(5 * time.Second):
		return zero, context.DeadlineExceeded
	}
	select {
	case r := <-done:
		if r.err != nil {
			return zero, r.err
		}
		return r.val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
