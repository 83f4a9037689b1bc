package device

import (
	"context"
	"sync"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/message"
)

// State is a position in the device connection lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// Device ties one piece of hardware (an Impl) to the protocol Handler
// that understands it, and enforces the Disconnected -> Connecting ->
// Connected -> Disconnecting -> Disconnected state machine: only
// Connected accepts command messages.
type Device struct {
	Index   uint32
	Handler Handler
	Impl    Impl

	mu    sync.RWMutex
	state State
}

// New returns a device in the Connecting state; call SetState(Connected)
// once the underlying Impl has finished connecting.
func New(index uint32, handler Handler, impl Impl) *Device {
	return &Device{Index: index, Handler: handler, Impl: impl, state: Connecting}
}

// SetState transitions the device to s.
func (d *Device) SetState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

// State returns the device's current lifecycle state.
func (d *Device) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Name returns the device's advertised name.
func (d *Device) Name() string { return d.Impl.Name() }

// MessageAttributes returns the message types and capability attributes
// this device's protocol handler supports.
func (d *Device) MessageAttributes() message.DeviceMessageAttributesMap {
	return d.Handler.MessageAttributes()
}

// checkConnected returns the right error for a command arriving outside
// the Connected state: DeviceNotConnected if the device still exists
// but isn't ready, matching the original state machine's contract.
func (d *Device) checkConnected() error {
	if d.State() != Connected {
		return buttplugerr.NewDeviceNotConnected(d.Index)
	}
	return nil
}

// HandleVibrateCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleVibrateCmd(ctx context.Context, cmd message.VibrateCmd) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleVibrateCmd(ctx, d.Impl, cmd)
}

// HandleRotateCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleRotateCmd(ctx context.Context, cmd message.RotateCmd) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleRotateCmd(ctx, d.Impl, cmd)
}

// HandleLinearCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleLinearCmd(ctx context.Context, cmd message.LinearCmd) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleLinearCmd(ctx, d.Impl, cmd)
}

// HandleStopDeviceCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleStopDeviceCmd(ctx context.Context) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleStopDeviceCmd(ctx, d.Impl)
}

// HandleRawWriteCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleRawWriteCmd(ctx context.Context, cmd message.RawWriteCmd) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleRawWriteCmd(ctx, d.Impl, cmd)
}

// HandleRawReadCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleRawReadCmd(ctx context.Context, cmd message.RawReadCmd) (message.RawReading, error) {
	if err := d.checkConnected(); err != nil {
		return message.RawReading{}, err
	}
	return d.Handler.HandleRawReadCmd(ctx, d.Impl, cmd)
}

// HandleRawSubscribeCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleRawSubscribeCmd(ctx context.Context, cmd message.RawSubscribeCmd) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleRawSubscribeCmd(ctx, d.Impl, cmd)
}

// HandleRawUnsubscribeCmd validates connection state and delegates to
// the protocol handler.
func (d *Device) HandleRawUnsubscribeCmd(ctx context.Context, cmd message.RawUnsubscribeCmd) error {
	if err := d.checkConnected(); err != nil {
		return err
	}
	return d.Handler.HandleRawUnsubscribeCmd(ctx, d.Impl, cmd)
}

// HandleBatteryLevelCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleBatteryLevelCmd(ctx context.Context) (float64, error) {
	if err := d.checkConnected(); err != nil {
		return 0, err
	}
	return d.Handler.HandleBatteryLevelCmd(ctx, d.Impl)
}

// HandleRSSILevelCmd validates connection state and delegates to the
// protocol handler.
func (d *Device) HandleRSSILevelCmd(ctx context.Context) (int32, error) {
	if err := d.checkConnected(); err != nil {
		return 0, err
	}
	return d.Handler.HandleRSSILevelCmd(ctx, d.Impl)
}

// Disconnect transitions the device through Disconnecting to
// Disconnected and releases the underlying bus connection.
func (d *Device) Disconnect() error {
	d.SetState(Disconnecting)
	err := d.Impl.Disconnect()
	d.SetState(Disconnected)
	return err
}
