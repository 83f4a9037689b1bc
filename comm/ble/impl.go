package ble

import (
	"context"
	"fmt"
	"sync"

	blelib "github.com/go-ble/ble"

	"github.com/nonpolynomial/buttplug-go/device"
)

// Impl is a device.Impl backed by one connected ble.Client. Every GATT
// operation runs on the client's CommandQueue goroutine: go-ble/ble
// connections, like most BLE stacks, aren't safe for concurrent
// read/write/subscribe calls.
type Impl struct {
	name    string
	address string
	client  blelib.Client
	chars   map[device.Endpoint]*blelib.Characteristic
	queue   *device.CommandQueue

	mu          sync.Mutex
	subscribers map[device.Endpoint]chan device.RawReading
}

func newImpl(name, address string, client blelib.Client, chars map[device.Endpoint]*blelib.Characteristic) *Impl {
	ctx, cancel := context.WithCancel(context.Background())
	impl := &Impl{
		name:        name,
		address:     address,
		client:      client,
		chars:       chars,
		queue:       device.NewCommandQueue(ctx),
		subscribers: make(map[device.Endpoint]chan device.RawReading),
	}
	go func() {
		<-client.Disconnected()
		cancel()
		impl.mu.Lock()
		for ep, ch := range impl.subscribers {
			close(ch)
			delete(impl.subscribers, ep)
		}
		impl.mu.Unlock()
	}()
	return impl
}

func (i *Impl) Name() string    { return i.name }
func (i *Impl) Address() string { return i.address }

func (i *Impl) Endpoints() []device.Endpoint {
	out := make([]device.Endpoint, 0, len(i.chars))
	for ep := range i.chars {
		out = append(out, ep)
	}
	return out
}

func (i *Impl) Connected() bool {
	select {
	case <-i.client.Disconnected():
		return false
	default:
		return true
	}
}

func (i *Impl) WriteValue(ctx context.Context, endpoint device.Endpoint, data []byte, writeWithResponse bool) error {
	c, ok := i.chars[endpoint]
	if !ok {
		return fmt.Errorf("ble: no characteristic mapped for endpoint %s", endpoint)
	}
	_, err := device.Submit(ctx, i.queue, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, i.client.WriteCharacteristic(c, data, !writeWithResponse)
	})
	return err
}

func (i *Impl) ReadValue(ctx context.Context, endpoint device.Endpoint) (device.RawReading, error) {
	c, ok := i.chars[endpoint]
	if !ok {
		return device.RawReading{}, fmt.Errorf("ble: no characteristic mapped for endpoint %s", endpoint)
	}
	return device.Submit(ctx, i.queue, func(ctx context.Context) (device.RawReading, error) {
		data, err := i.client.ReadCharacteristic(c)
		if err != nil {
			return device.RawReading{}, err
		}
		return device.RawReading{Endpoint: endpoint, Data: data}, nil
	})
}

func (i *Impl) Subscribe(ctx context.Context, endpoint device.Endpoint) (<-chan device.RawReading, error) {
	c, ok := i.chars[endpoint]
	if !ok {
		return nil, fmt.Errorf("ble: no characteristic mapped for endpoint %s", endpoint)
	}
	ch := make(chan device.RawReading, 16)
	i.mu.Lock()
	i.subscribers[endpoint] = ch
	i.mu.Unlock()

	_, err := device.Submit(ctx, i.queue, func(ctx context.Context) (struct{}, error) {
		handler := func(data []byte) {
			i.mu.Lock()
			out, ok := i.subscribers[endpoint]
			i.mu.Unlock()
			if !ok {
				return
			}
			select {
			case out <- device.RawReading{Endpoint: endpoint, Data: data}:
			default:
			}
		}
		return struct{}{}, i.client.Subscribe(c, false, handler)
	})
	if err != nil {
		i.mu.Lock()
		delete(i.subscribers, endpoint)
		i.mu.Unlock()
		return nil, err
	}
	return ch, nil
}

func (i *Impl) Unsubscribe(ctx context.Context, endpoint device.Endpoint) error {
	c, ok := i.chars[endpoint]
	if !ok {
		return fmt.Errorf("ble: no characteristic mapped for endpoint %s", endpoint)
	}
	_, err := device.Submit(ctx, i.queue, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, i.client.Unsubscribe(c, false)
	})
	i.mu.Lock()
	if ch, ok := i.subscribers[endpoint]; ok {
		close(ch)
		delete(i.subscribers, endpoint)
	}
	i.mu.Unlock()
	return err
}

func (i *Impl) Disconnect() error {
	return i.client.CancelConnection()
}
