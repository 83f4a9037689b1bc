// Package device contains the bus-facing device abstraction: the
// Endpoint/DeviceImpl interfaces a protocol handler drives, the
// ProtocolHandler interface and creator registry, and the Device type
// that ties a connected piece of hardware to its protocol and state
// machine.
package device

// Endpoint names a logical communication channel on a device: a BLE
// characteristic, a serial line direction, or similar. Protocol
// handlers address devices by endpoint rather than raw bus identifiers.
type Endpoint string

const (
	Tx       Endpoint = "tx"
	Rx       Endpoint = "rx"
	Command  Endpoint = "command"
	Firmware Endpoint = "firmware"
	Battery  Endpoint = "battery"
	RSSI     Endpoint = "rssi"
)
