package devicemanager

import (
	"context"
	"sync/atomic"
)

// ScanningFlag is an atomic bool a CommunicationManager exposes so the
// event loop can poll aggregate scanning state without taking a lock on
// the manager itself.
type ScanningFlag struct {
	v atomic.Bool
}

func (f *ScanningFlag) Load() bool   { return f.v.Load() }
func (f *ScanningFlag) Store(b bool) { f.v.Store(b) }

// CommunicationManager is one bus-specific scanner: BLE, serial, HID,
// or a websocket sub-server forwarding devices from elsewhere. It
// discovers devices and reports them (and its own scanning transitions)
// as CommunicationEvents on the channel it was built with.
type CommunicationManager interface {
	Name() string
	StartScanning(ctx context.Context) error
	StopScanning(ctx context.Context) error
	ScanningStatus() *ScanningFlag
}

// CommunicationManagerBuilder constructs a CommunicationManager bound
// to the event channel it should report to. Mirrors the original
// DeviceCommunicationManagerBuilder's event_sender/finish split so a
// manager never has to be told its own output channel until the device
// manager is ready to own it.
type CommunicationManagerBuilder interface {
	EventSender(ch chan<- CommunicationEvent) CommunicationManagerBuilder
	Finish() CommunicationManager
}
