/*
Package ble is the Bluetooth LE communication manager: a
devicemanager.CommunicationManager that scans for peripherals using
go-ble/ble, and a device.Impl that drives one connected peripheral's
GATT characteristics. Every device model's Endpoint-to-characteristic
mapping is supplied by its caller (the protocol registry knows, for a
given advertised name, which service exposes which endpoints); this
package only knows how to scan, connect, and move bytes once it has
that map.
*/
package ble

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	blelib "github.com/go-ble/ble"

	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/devicemanager"
)

// EndpointMap tells the Impl which characteristic backs each logical
// Endpoint a protocol handler writes to or subscribes on.
type EndpointMap map[device.Endpoint]blelib.UUID

// Resolver picks the EndpointMap for an advertised peripheral, and
// reports whether this manager should even bother connecting to it.
// Concrete resolvers are usually backed by the same candidate-matching
// data a device.Registry uses, but kept separate here since scanning
// happens well before any protocol.Handler is chosen.
type Resolver interface {
	Resolve(localName string) (EndpointMap, bool)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(localName string) (EndpointMap, bool)

func (f ResolverFunc) Resolve(localName string) (EndpointMap, bool) { return f(localName) }

// CentralManager is a devicemanager.CommunicationManager that scans
// for BLE peripherals using the given ble.Device and hands any
// recognized one to the device manager as a new device.Impl.
type CentralManager struct {
	name     string
	dev      blelib.Device
	resolver Resolver
	scanFor  time.Duration

	status devicemanager.ScanningFlag
	events chan<- devicemanager.CommunicationEvent

	mu      sync.Mutex
	cancel  context.CancelFunc
	dialing map[string]bool
}

// Config parameterizes a CentralManager.
type Config struct {
	// Name identifies this manager to the device manager; "ble" if empty.
	Name string
	// Device is the platform BLE host adapter (linux.NewDevice(),
	// darwin.NewDevice(), ...). Required.
	Device blelib.Device
	// Resolver decides which advertised peripherals to connect to and
	// how their endpoints map to characteristics. Required.
	Resolver Resolver
	// ScanFor bounds each scanning window; zero means scan until
	// StopScanning is called.
	ScanFor time.Duration
}

// NewCentralManager returns an unstarted manager; call AddCommManager's
// builder (via CentralManagerBuilder) to bind it to a DeviceManager.
func NewCentralManager(cfg Config) *CentralManager {
	name := cfg.Name
	if name == "" {
		name = "ble"
	}
	return &CentralManager{
		name:     name,
		dev:      cfg.Device,
		resolver: cfg.Resolver,
		scanFor:  cfg.ScanFor,
		dialing:  make(map[string]bool),
	}
}

func (m *CentralManager) Name() string { return m.name }

func (m *CentralManager) ScanningStatus() *devicemanager.ScanningFlag { return &m.status }

// StartScanning begins advertisement scanning in the background. Each
// matching advertisement triggers an asynchronous connect; the scan
// itself never blocks on a connect attempt.
func (m *CentralManager) StartScanning(ctx context.Context) error {
	blelib.SetDefaultDevice(m.dev)

	scanCtx, cancel := context.WithCancel(ctx)
	if m.scanFor > 0 {
		scanCtx, cancel = context.WithTimeout(ctx, m.scanFor)
	}
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	m.status.Store(true)

	go func() {
		err := blelib.Scan(scanCtx, true, m.handleAdvertisement, nil)
		m.status.Store(false)
		if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
			log.Printf("ble: scan ended: %v", err)
		}
		m.emit(devicemanager.CommunicationEvent{Kind: devicemanager.EventScanningFinished})
	}()
	return nil
}

// StopScanning cancels the in-progress scan, if any.
func (m *CentralManager) StopScanning(ctx context.Context) error {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (m *CentralManager) handleAdvertisement(a blelib.Advertisement) {
	name := a.LocalName()
	endpoints, ok := m.resolver.Resolve(name)
	if !ok {
		return
	}
	addr := a.Addr().String()

	m.mu.Lock()
	if m.dialing[addr] {
		m.mu.Unlock()
		return
	}
	m.dialing[addr] = true
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.dialing, addr)
			m.mu.Unlock()
		}()
		impl, err := m.connect(name, addr, endpoints)
		if err != nil {
			log.Printf("ble: connecting to %s (%s): %v", name, addr, err)
			return
		}
		m.emit(devicemanager.CommunicationEvent{
			Kind:    devicemanager.EventDeviceFound,
			Name:    name,
			Address: addr,
			Impl:    impl,
		})
	}()
}

func (m *CentralManager) connect(name, addr string, endpoints EndpointMap) (*Impl, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := blelib.Dial(ctx, blelib.NewAddr(addr))
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		client.CancelConnection()
		return nil, fmt.Errorf("discover profile: %w", err)
	}
	chars := make(map[device.Endpoint]*blelib.Characteristic, len(endpoints))
	for ep, uuid := range endpoints {
		c := findCharacteristic(profile, uuid)
		if c == nil {
			client.CancelConnection()
			return nil, fmt.Errorf("characteristic %s for endpoint %s not found", uuid, ep)
		}
		chars[ep] = c
	}
	return newImpl(name, addr, client, chars), nil
}

func findCharacteristic(p *blelib.Profile, uuid blelib.UUID) *blelib.Characteristic {
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if blelib.Equal(c.UUID, uuid) {
				return c
			}
		}
	}
	return nil
}

func (m *CentralManager) emit(ev devicemanager.CommunicationEvent) {
	if m.events == nil {
		return
	}
	m.events <- ev
}

// CentralManagerBuilder implements devicemanager.CommunicationManagerBuilder.
type CentralManagerBuilder struct {
	mgr *CentralManager
}

// NewCentralManagerBuilder wraps an already-configured CentralManager
// so it can be registered with a devicemanager.DeviceManager.
func NewCentralManagerBuilder(mgr *CentralManager) *CentralManagerBuilder {
	return &CentralManagerBuilder{mgr: mgr}
}

func (b *CentralManagerBuilder) EventSender(ch chan<- devicemanager.CommunicationEvent) devicemanager.CommunicationManagerBuilder {
	b.mgr.events = ch
	return b
}

func (b *CentralManagerBuilder) Finish() devicemanager.CommunicationManager { return b.mgr }

// NameFromAdvertisement strips the trailing NUL padding some
// peripherals include in their local name field.
func NameFromAdvertisement(a blelib.Advertisement) string {
	return strings.TrimRight(a.LocalName(), "\x00")
}
