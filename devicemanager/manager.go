package devicemanager

import (
	"context"
	"fmt"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/message"
	"github.com/nonpolynomial/buttplug-go/observability"
)

// DeviceInfo is the address/display-name pair device_info returns for a
// known device index.
type DeviceInfo struct {
	Address     string
	DisplayName string
}

// DeviceManager is the registry, router, and scanning coordinator for
// every device the server knows about. It owns no bus connections
// itself: CommunicationManagers discover devices and report them here,
// and the single eventLoop goroutine is the sole writer of the shared
// device index.
type DeviceManager struct {
	commMgrs   *commManagerRegistry
	devices    *deviceRegistry
	userConfig *UserConfigStore
	creators   *device.Registry

	events chan CommunicationEvent
	loop   *eventLoop
}

// Option configures optional DeviceManager behavior that most callers
// don't need to set explicitly.
type Option func(*eventLoop)

// WithMetrics instruments the event loop's device-added,
// scanning-finished, and ping-timeout transitions. A nil Metrics (the
// zero value) is also accepted and simply instruments nothing.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *eventLoop) { l.metrics = m }
}

// New starts a DeviceManager and its event loop. outbound receives
// every server event the manager produces (DeviceAdded,
// ScanningFinished, and the Error emitted on ping timeout). A device
// stays registered once added: the manager never emits DeviceRemoved.
// The manager and its event loop run until ctx is canceled.
func New(ctx context.Context, outbound chan<- message.ServerMessage, pingTimer *PingTimer, opts ...Option) *DeviceManager {
	commMgrs := newCommManagerRegistry()
	devices := newDeviceRegistry()
	userConfig := NewUserConfigStore()
	creators := device.NewRegistry()
	events := make(chan CommunicationEvent, 256)

	loop := newEventLoop(devices, commMgrs, userConfig, creators, pingTimer, events, outbound)
	for _, opt := range opts {
		opt(loop)
	}
	go loop.run(ctx)

	return &DeviceManager{
		commMgrs:   commMgrs,
		devices:    devices,
		userConfig: userConfig,
		creators:   creators,
		events:     events,
		loop:       loop,
	}
}

// AddCommManager registers a new CommunicationManager, built from
// builder bound to this manager's event channel. Reports an error if a
// manager with the same name is already registered.
func (m *DeviceManager) AddCommManager(builder CommunicationManagerBuilder) error {
	mgr := builder.EventSender(m.events).Finish()
	if !m.commMgrs.add(mgr) {
		return buttplugerr.NewMessageError("communication manager %q is already registered", mgr.Name())
	}
	m.events <- CommunicationEvent{Kind: EventDeviceManagerAdded, ManagerName: mgr.Name(), ScanningStatus: mgr.ScanningStatus()}
	return nil
}

// AddProtocol registers a protocol Creator under name.
func (m *DeviceManager) AddProtocol(name string, creator device.Creator) error {
	if !m.creators.Add(name, creator) {
		return buttplugerr.NewMessageError("protocol %q is already registered", name)
	}
	return nil
}

// RemoveProtocol unregisters the protocol named name.
func (m *DeviceManager) RemoveProtocol(name string) error {
	if !m.creators.Remove(name) {
		return buttplugerr.NewMessageError("protocol %q is not registered", name)
	}
	return nil
}

// RemoveAllProtocols unregisters every protocol.
func (m *DeviceManager) RemoveAllProtocols() { m.creators.RemoveAll() }

// Ping resets the ping timeout deadline. A session calls this whenever
// the client sends a Ping message.
func (m *DeviceManager) Ping() { m.loop.pingTimer.Ping() }

// AddDeviceUserConfig sets the user config override for address.
func (m *DeviceManager) AddDeviceUserConfig(address string, config DeviceUserConfig) {
	m.userConfig.Add(address, config)
}

// RemoveDeviceUserConfig clears the user config override for address.
func (m *DeviceManager) RemoveDeviceUserConfig(address string) {
	m.userConfig.Remove(address)
}

// DeviceInfo returns the address and display name for a known device
// index, or DeviceNotAvailable if index isn't registered.
func (m *DeviceManager) DeviceInfo(index uint32) (DeviceInfo, error) {
	d, ok := m.devices.get(index)
	if !ok {
		return DeviceInfo{}, buttplugerr.NewDeviceNotAvailable(index)
	}
	return DeviceInfo{Address: d.Impl.Address(), DisplayName: d.Name()}, nil
}

// StartScanning asks every registered communication manager to begin
// scanning. Fails if no managers are registered or if any manager is
// already scanning.
func (m *DeviceManager) StartScanning(ctx context.Context) error {
	if m.commMgrs.empty() {
		return buttplugerr.ErrNoCommManagers
	}
	for _, mgr := range m.commMgrs.all() {
		if mgr.ScanningStatus().Load() {
			return buttplugerr.ErrScanningAlreadyStarted
		}
	}
	for _, mgr := range m.commMgrs.all() {
		if err := mgr.StartScanning(ctx); err != nil {
			return buttplugerr.NewDeviceCommunicationError(err)
		}
	}
	// Probe hack: guarantee the ScanningFinished aggregation check runs
	// even if every manager's scan completes before (or races with)
	// this goroutine reaching the event loop, so a StopScanning that
	// lands in the same instant never gets stuck waiting.
	m.events <- CommunicationEvent{Kind: EventScanningStarted}
	m.events <- CommunicationEvent{Kind: EventScanningFinished}
	return nil
}

// StopScanning asks every registered communication manager to stop
// scanning. Fails if no managers are registered or none are currently
// scanning.
func (m *DeviceManager) StopScanning(ctx context.Context) error {
	if m.commMgrs.empty() {
		return buttplugerr.ErrNoCommManagers
	}
	if !m.commMgrs.anyScanning() {
		return buttplugerr.ErrScanningAlreadyStopped
	}
	for _, mgr := range m.commMgrs.all() {
		if err := mgr.StopScanning(ctx); err != nil {
			return buttplugerr.NewDeviceCommunicationError(err)
		}
	}
	return nil
}

// StopAllDevices sends StopDeviceCmd to every known device concurrently.
func (m *DeviceManager) StopAllDevices(ctx context.Context) error {
	devices := m.devices.all()
	errs := make(chan error, len(devices))
	for _, d := range devices {
		go func(d *device.Device) {
			errs <- d.HandleStopDeviceCmd(ctx)
		}(d)
	}
	var firstErr error
	for range devices {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ParseMessage classifies msg into a device command (routed to the
// addressed device) or a device-manager command (handled here
// directly), in that order, and returns the response.
func (m *DeviceManager) ParseMessage(ctx context.Context, msg message.ClientMessage) (message.ServerMessage, error) {
	if dc, ok := message.AsDeviceCommandMessage(msg); ok {
		return m.parseDeviceMessage(ctx, dc)
	}
	if dm, ok := message.AsDeviceManagerMessage(msg); ok {
		return m.parseDeviceManagerMessage(ctx, dm)
	}
	return nil, buttplugerr.UnexpectedMessageType(messageName(msg))
}

func (m *DeviceManager) parseDeviceMessage(ctx context.Context, msg message.DeviceCommandMessage) (message.ServerMessage, error) {
	d, ok := m.devices.get(msg.GetDeviceIndex())
	if !ok {
		return nil, buttplugerr.NewDeviceNotAvailable(msg.GetDeviceIndex())
	}
	return dispatchDeviceCommand(ctx, d, msg)
}

func (m *DeviceManager) parseDeviceManagerMessage(ctx context.Context, msg message.DeviceManagerMessage) (message.ServerMessage, error) {
	switch typed := msg.(type) {
	case message.RequestDeviceList:
		list := message.DeviceList{Devices: m.deviceList()}
		list.SetID(typed.ID())
		return list, nil
	case message.StopAllDevices:
		if err := m.StopAllDevices(ctx); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.StartScanning:
		if err := m.StartScanning(ctx); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.StopScanning:
		if err := m.StopScanning(ctx); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	default:
		return nil, buttplugerr.UnexpectedMessageType(messageName(msg))
	}
}

func (m *DeviceManager) deviceList() []message.DeviceMessageInfo {
	devices := m.devices.all()
	out := make([]message.DeviceMessageInfo, len(devices))
	for i, d := range devices {
		out[i] = toDeviceMessageInfo(d)
	}
	return out
}

// dispatchDeviceCommand routes a DeviceCommandMessage to the matching
// per-command method on d, wrapping the result into the right reply
// message.
func dispatchDeviceCommand(ctx context.Context, d *device.Device, msg message.DeviceCommandMessage) (message.ServerMessage, error) {
	switch typed := msg.(type) {
	case message.VibrateCmd:
		if err := d.HandleVibrateCmd(ctx, typed); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.RotateCmd:
		if err := d.HandleRotateCmd(ctx, typed); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.LinearCmd:
		if err := d.HandleLinearCmd(ctx, typed); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.StopDeviceCmd:
		if err := d.HandleStopDeviceCmd(ctx); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.RawWriteCmd:
		if err := d.HandleRawWriteCmd(ctx, typed); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.RawReadCmd:
		reading, err := d.HandleRawReadCmd(ctx, typed)
		if err != nil {
			return nil, err
		}
		reading.SetID(typed.ID())
		return reading, nil
	case message.RawSubscribeCmd:
		if err := d.HandleRawSubscribeCmd(ctx, typed); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.RawUnsubscribeCmd:
		if err := d.HandleRawUnsubscribeCmd(ctx, typed); err != nil {
			return nil, err
		}
		return message.NewOk(typed.ID()), nil
	case message.BatteryLevelCmd:
		level, err := d.HandleBatteryLevelCmd(ctx)
		if err != nil {
			return nil, err
		}
		reading := message.BatteryLevelReading{DeviceIndex: d.Index, BatteryLevel: level}
		reading.SetID(typed.ID())
		return reading, nil
	case message.RSSILevelCmd:
		level, err := d.HandleRSSILevelCmd(ctx)
		if err != nil {
			return nil, err
		}
		reading := message.RSSILevelReading{DeviceIndex: d.Index, RSSILevel: level}
		reading.SetID(typed.ID())
		return reading, nil
	default:
		return nil, buttplugerr.UnexpectedMessageType(messageName(msg))
	}
}

func messageName(msg message.ClientMessage) string {
	return fmt.Sprintf("%T", msg)
}
