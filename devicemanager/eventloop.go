package devicemanager

import (
	"context"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/message"
	"github.com/nonpolynomial/buttplug-go/observability"
)

// eventLoop is the single goroutine that owns the devices map, the
// device-index counter, and the ping timer, and is the sole writer of
// outbound server events. It is the only place device add/remove and
// scanning-finished aggregation happen, so there is never a race
// between two goroutines assigning the same device index.
type eventLoop struct {
	devices    *deviceRegistry
	commMgrs   *commManagerRegistry
	userConfig *UserConfigStore
	creators   *device.Registry
	pingTimer  *PingTimer

	incoming chan CommunicationEvent
	outbound chan<- message.ServerMessage

	metrics *observability.Metrics

	nextIndex        uint32
	scanningFinished bool
}

func newEventLoop(
	devices *deviceRegistry,
	commMgrs *commManagerRegistry,
	userConfig *UserConfigStore,
	creators *device.Registry,
	pingTimer *PingTimer,
	incoming chan CommunicationEvent,
	outbound chan<- message.ServerMessage,
) *eventLoop {
	return &eventLoop{
		devices:          devices,
		commMgrs:         commMgrs,
		userConfig:       userConfig,
		creators:         creators,
		pingTimer:        pingTimer,
		incoming:         incoming,
		outbound:         outbound,
		scanningFinished: true,
	}
}

// run drains incoming CommunicationEvents and the ping timer's timeout
// until ctx is canceled.
func (l *eventLoop) run(ctx context.Context) {
	pingTimeout := l.pingTimer.Timeout()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTimeout:
			l.handlePingTimeout(ctx)
			// The timeout fires once; stop selecting on it.
			pingTimeout = nil
		case ev := <-l.incoming:
			l.handle(ctx, ev)
		}
	}
}

func (l *eventLoop) handle(ctx context.Context, ev CommunicationEvent) {
	switch ev.Kind {
	case EventDeviceFound:
		l.handleDeviceFound(ev)
	case EventDeviceManagerAdded:
		// Nothing to aggregate beyond the registry itself; the manager
		// is already visible to comm_managers by the time this event
		// arrives, used only for any future telemetry hook.
	case EventScanningStarted:
		l.scanningFinished = false
		l.metrics.RecordScanningStarted()
	case EventScanningFinished:
		l.handleScanningFinished()
	}
}

func (l *eventLoop) handleDeviceFound(ev CommunicationEvent) {
	if cfg, ok := l.userConfig.Get(ev.Address); ok && cfg.Deny != nil && *cfg.Deny {
		return
	}
	handler := ev.Handler
	if handler == nil {
		h, ok := l.creators.Create(device.CandidateDevice{Name: ev.Name})
		if !ok {
			return
		}
		handler = h
	}
	index := l.nextIndex
	l.nextIndex++
	d := device.New(index, handler, ev.Impl)
	d.SetState(device.Connected)
	l.devices.add(d)

	info := toDeviceMessageInfo(d)
	l.emit(message.DeviceAdded{DeviceMessageInfo: info})
	l.metrics.RecordDeviceAdded()
}

// handleScanningFinished implements the "probe hack" required by
// start_scanning: it may be invoked more than once for a single
// start/stop cycle (once per comm manager finishing, plus the
// synthetic probe start_scanning always sends). It only actually
// emits ScanningFinished once every registered manager has genuinely
// stopped, and only once per cycle.
func (l *eventLoop) handleScanningFinished() {
	if l.scanningFinished {
		return
	}
	if l.commMgrs.anyScanning() {
		return
	}
	l.scanningFinished = true
	l.emit(message.ScanningFinished{})
	l.metrics.RecordScanningFinished()
}

// handlePingTimeout implements stop_all_devices: every known device is
// sent its stop commands, then moved out of Connected so any command
// addressed to it afterward fails with DeviceNotConnected rather than
// reaching the bus, until the client re-handshakes and the device is
// rediscovered.
func (l *eventLoop) handlePingTimeout(ctx context.Context) {
	for _, d := range l.devices.all() {
		_ = d.HandleStopDeviceCmd(ctx)
		d.SetState(device.Disconnected)
	}
	l.emit(message.Error{
		ErrorMessage: buttplugerr.ErrPingTimeout.Error(),
		ErrorCode:    int(buttplugerr.ErrPingTimeout.ErrorCode()),
	})
	l.metrics.RecordPingTimeout()
}

func (l *eventLoop) emit(msg message.ServerMessage) {
	select {
	case l.outbound <- msg:
	default:
	}
}

func toDeviceMessageInfo(d *device.Device) message.DeviceMessageInfo {
	return message.DeviceMessageInfo{
		DeviceIndex:    d.Index,
		DeviceName:     d.Name(),
		DeviceMessages: d.MessageAttributes(),
	}
}
