/*
Package devicemanager owns device discovery, routing, and the
per-connection lifecycle: the registry of communication managers and
connected devices, scanning coordination across buses, ping liveness,
and persisted per-device user configuration.
*/
package devicemanager

import "github.com/nonpolynomial/buttplug-go/device"

// CommunicationEventKind distinguishes the cases of CommunicationEvent.
type CommunicationEventKind int

const (
	EventDeviceFound CommunicationEventKind = iota
	EventDeviceManagerAdded
	EventScanningStarted
	EventScanningFinished
)

// CommunicationEvent is emitted by a CommunicationManager (or, for the
// ScanningStarted/Finished probe, by the DeviceManager itself) onto the
// event loop's incoming channel.
type CommunicationEvent struct {
	Kind CommunicationEventKind

	// Set for EventDeviceFound.
	Name      string
	Address   string
	Handler   device.Handler
	Impl      device.Impl

	// Set for EventDeviceManagerAdded.
	ManagerName     string
	ScanningStatus  *ScanningFlag
}
