/*
Package testdevice provides in-memory fakes for the bus-facing
interfaces (device.Impl and devicemanager.CommunicationManager), used
by every unit test and end-to-end scenario instead of a real BLE/serial
backend. Adapted from buttplugtest's mock Buttplug server idiom: where
that package scripts what a fake *server* sends a client, this package
scripts what a fake *bus* reports to the device manager.
*/
package testdevice

import (
	"context"
	"sync"
	"time"

	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/devicemanager"
)

// FakeImpl is an in-memory device.Impl: writes are recorded instead of
// sent anywhere, and reads/subscriptions are driven by test code
// pushing into the fake directly.
type FakeImpl struct {
	mu          sync.Mutex
	name        string
	address     string
	endpoints   []device.Endpoint
	connected   bool
	writes      []FakeWrite
	subscribers map[device.Endpoint]chan device.RawReading
}

// FakeWrite records one WriteValue call for assertions.
type FakeWrite struct {
	Endpoint          device.Endpoint
	Data              []byte
	WriteWithResponse bool
}

// NewFakeImpl returns a connected fake device named name at address,
// exposing the given endpoints.
func NewFakeImpl(name, address string, endpoints ...device.Endpoint) *FakeImpl {
	return &FakeImpl{
		name:        name,
		address:     address,
		endpoints:   endpoints,
		connected:   true,
		subscribers: make(map[device.Endpoint]chan device.RawReading),
	}
}

func (f *FakeImpl) Name() string              { return f.name }
func (f *FakeImpl) Address() string           { return f.address }
func (f *FakeImpl) Endpoints() []device.Endpoint { return f.endpoints }
func (f *FakeImpl) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeImpl) WriteValue(ctx context.Context, endpoint device.Endpoint, data []byte, writeWithResponse bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes = append(f.writes, FakeWrite{Endpoint: endpoint, Data: cp, WriteWithResponse: writeWithResponse})
	return nil
}

func (f *FakeImpl) ReadValue(ctx context.Context, endpoint device.Endpoint) (device.RawReading, error) {
	return device.RawReading{Endpoint: endpoint}, nil
}

func (f *FakeImpl) Subscribe(ctx context.Context, endpoint device.Endpoint) (<-chan device.RawReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan device.RawReading, 8)
	f.subscribers[endpoint] = ch
	return ch, nil
}

func (f *FakeImpl) Unsubscribe(ctx context.Context, endpoint device.Endpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.subscribers[endpoint]; ok {
		close(ch)
		delete(f.subscribers, endpoint)
	}
	return nil
}

func (f *FakeImpl) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	for endpoint, ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, endpoint)
	}
	return nil
}

// Writes returns every WriteValue call recorded so far.
func (f *FakeImpl) Writes() []FakeWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeWrite, len(f.writes))
	copy(out, f.writes)
	return out
}

// PushReading delivers a RawReading to endpoint's subscriber, if any.
func (f *FakeImpl) PushReading(endpoint device.Endpoint, data []byte) {
	f.mu.Lock()
	ch, ok := f.subscribers[endpoint]
	f.mu.Unlock()
	if ok {
		ch <- device.RawReading{Endpoint: endpoint, Data: data}
	}
}

// FakeCommManager is a scripted devicemanager.CommunicationManager:
// test code calls Discover to simulate a bus finding a device, and
// Start/StopScanning flip the scanning flag and report
// ScanningFinished, matching
// buttplugtest.Conn's "respond Ok, then let test code drive events"
// idiom but from the comm-manager side.
type FakeCommManager struct {
	name     string
	status   devicemanager.ScanningFlag
	events   chan<- devicemanager.CommunicationEvent
}

// NewFakeCommManager returns an unstarted manager named name.
func NewFakeCommManager(name string) *FakeCommManager {
	return &FakeCommManager{name: name}
}

func (m *FakeCommManager) Name() string { return m.name }

// StartScanning flips the scanning flag on, then after a brief simulated
// scan duration flips it back off and reports ScanningFinished, the way
// a real bus scan runs for a bounded window and completes on its own
// rather than waiting for StopScanning.
func (m *FakeCommManager) StartScanning(ctx context.Context) error {
	m.status.Store(true)
	go func() {
		time.Sleep(10 * time.Millisecond)
		m.status.Store(false)
		if m.events != nil {
			m.events <- devicemanager.CommunicationEvent{Kind: devicemanager.EventScanningFinished}
		}
	}()
	return nil
}

func (m *FakeCommManager) StopScanning(ctx context.Context) error {
	m.status.Store(false)
	if m.events != nil {
		m.events <- devicemanager.CommunicationEvent{Kind: devicemanager.EventScanningFinished}
	}
	return nil
}

func (m *FakeCommManager) ScanningStatus() *devicemanager.ScanningFlag { return &m.status }

// Discover simulates the bus finding a device, emitting a DeviceFound
// event carrying impl and (optionally) an already-resolved handler. If
// handler is nil, the device manager's protocol registry picks one.
func (m *FakeCommManager) Discover(impl device.Impl, handler device.Handler) {
	if m.events == nil {
		return
	}
	m.events <- devicemanager.CommunicationEvent{
		Kind:    devicemanager.EventDeviceFound,
		Name:    impl.Name(),
		Address: impl.Address(),
		Handler: handler,
		Impl:    impl,
	}
}

// FakeCommManagerBuilder implements devicemanager.CommunicationManagerBuilder
// for FakeCommManager.
type FakeCommManagerBuilder struct {
	mgr *FakeCommManager
}

// NewFakeCommManagerBuilder returns a builder for a manager named name.
func NewFakeCommManagerBuilder(name string) *FakeCommManagerBuilder {
	return &FakeCommManagerBuilder{mgr: NewFakeCommManager(name)}
}

func (b *FakeCommManagerBuilder) EventSender(ch chan<- devicemanager.CommunicationEvent) devicemanager.CommunicationManagerBuilder {
	b.mgr.events = ch
	return b
}

func (b *FakeCommManagerBuilder) Finish() devicemanager.CommunicationManager { return b.mgr }

// Manager returns the manager this builder will finish, so test code
// can call Discover on it directly after registering it.
func (b *FakeCommManagerBuilder) Manager() *FakeCommManager { return b.mgr }
