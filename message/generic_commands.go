package message

import "github.com/nonpolynomial/buttplug-go/buttplugerr"

// VibrateSubcommand targets one vibration feature (motor) on a device.
type VibrateSubcommand struct {
	Index uint32  `json:"Index"`
	Speed float64 `json:"Speed"`
}

// VibrateCmd sets vibration speed on one or more features of a device.
type VibrateCmd struct {
	id
	DeviceIndex uint32
	Speeds      []VibrateSubcommand
}

func (VibrateCmd) clientMessage()       {}
func (VibrateCmd) deviceCommandMessage() {}

// GetDeviceIndex satisfies DeviceCommandMessage.
func (m VibrateCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id, unit-interval speeds, and no
// duplicate feature indices.
func (m VibrateCmd) IsValid() error {
	if err := requireRequestID(m.Id); err != nil {
		return err
	}
	seen := make(map[uint32]bool, len(m.Speeds))
	for _, s := range m.Speeds {
		if seen[s.Index] {
			return buttplugerr.NewMessageError("VibrateCmd duplicates feature index %d", s.Index)
		}
		seen[s.Index] = true
		if err := requireUnitInterval(s.Speed, "Speed"); err != nil {
			return err
		}
	}
	return nil
}

// VectorSubcommand targets one linear actuator on a device, moving it to
// Position over Duration milliseconds.
type VectorSubcommand struct {
	Index    uint32  `json:"Index"`
	Duration uint32  `json:"Duration"`
	Position float64 `json:"Position"`
}

// LinearCmd moves one or more linear actuators on a device.
type LinearCmd struct {
	id
	DeviceIndex uint32
	Vectors     []VectorSubcommand
}

func (LinearCmd) clientMessage()        {}
func (LinearCmd) deviceCommandMessage() {}

func (m LinearCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id, unit-interval positions, and no
// duplicate actuator indices.
func (m LinearCmd) IsValid() error {
	if err := requireRequestID(m.Id); err != nil {
		return err
	}
	seen := make(map[uint32]bool, len(m.Vectors))
	for _, v := range m.Vectors {
		if seen[v.Index] {
			return buttplugerr.NewMessageError("LinearCmd duplicates actuator index %d", v.Index)
		}
		seen[v.Index] = true
		if err := requireUnitInterval(v.Position, "Position"); err != nil {
			return err
		}
	}
	return nil
}

// RotationSubcommand targets one rotating feature on a device.
type RotationSubcommand struct {
	Index       uint32  `json:"Index"`
	Speed       float64 `json:"Speed"`
	Clockwise   bool    `json:"Clockwise"`
}

// RotateCmd sets rotation speed and direction on one or more features.
type RotateCmd struct {
	id
	DeviceIndex uint32
	Rotations   []RotationSubcommand
}

func (RotateCmd) clientMessage()        {}
func (RotateCmd) deviceCommandMessage() {}

func (m RotateCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id, unit-interval speeds, and no
// duplicate feature indices.
func (m RotateCmd) IsValid() error {
	if err := requireRequestID(m.Id); err != nil {
		return err
	}
	seen := make(map[uint32]bool, len(m.Rotations))
	for _, r := range m.Rotations {
		if seen[r.Index] {
			return buttplugerr.NewMessageError("RotateCmd duplicates feature index %d", r.Index)
		}
		seen[r.Index] = true
		if err := requireUnitInterval(r.Speed, "Speed"); err != nil {
			return err
		}
	}
	return nil
}

// StopDeviceCmd halts all current commands on a single device, returning
// it to a neutral/idle state.
type StopDeviceCmd struct {
	id
	DeviceIndex uint32
}

func (StopDeviceCmd) clientMessage()        {}
func (StopDeviceCmd) deviceCommandMessage() {}

func (m StopDeviceCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m StopDeviceCmd) IsValid() error { return requireRequestID(m.Id) }

// StopAllDevices halts all current commands on every known device.
type StopAllDevices struct {
	id
}

func (StopAllDevices) clientMessage()         {}
func (StopAllDevices) deviceManagerMessage() {}

// IsValid requires a non-zero request id.
func (m StopAllDevices) IsValid() error { return requireRequestID(m.Id) }

// RawWriteCmd writes raw bytes to a device endpoint, bypassing any
// protocol translation.
type RawWriteCmd struct {
	id
	DeviceIndex uint32
	Endpoint    string
	Data        []byte
	WriteWithResponse bool
}

func (RawWriteCmd) clientMessage()        {}
func (RawWriteCmd) deviceCommandMessage() {}

func (m RawWriteCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m RawWriteCmd) IsValid() error { return requireRequestID(m.Id) }

// RawReadCmd reads raw bytes from a device endpoint, answered with
// RawReading.
type RawReadCmd struct {
	id
	DeviceIndex  uint32
	Endpoint     string
	ExpectedLength uint32
	WaitForData  bool
}

func (RawReadCmd) clientMessage()        {}
func (RawReadCmd) deviceCommandMessage() {}

func (m RawReadCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m RawReadCmd) IsValid() error { return requireRequestID(m.Id) }

// RawReading answers RawReadCmd, or is emitted as an event after
// RawSubscribeCmd, with bytes read from a device endpoint.
type RawReading struct {
	id
	DeviceIndex uint32
	Endpoint    string
	Data        []byte
}

func (RawReading) serverMessage() {}

// IsValid accepts any RawReading: it is sent both as a reply and as an
// event, so no id rule applies.
func (RawReading) IsValid() error { return nil }

// RawSubscribeCmd asks to be notified of data arriving on a device
// endpoint via RawReading events.
type RawSubscribeCmd struct {
	id
	DeviceIndex uint32
	Endpoint    string
}

func (RawSubscribeCmd) clientMessage()        {}
func (RawSubscribeCmd) deviceCommandMessage() {}

func (m RawSubscribeCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m RawSubscribeCmd) IsValid() error { return requireRequestID(m.Id) }

// RawUnsubscribeCmd cancels a RawSubscribeCmd subscription.
type RawUnsubscribeCmd struct {
	id
	DeviceIndex uint32
	Endpoint    string
}

func (RawUnsubscribeCmd) clientMessage()        {}
func (RawUnsubscribeCmd) deviceCommandMessage() {}

func (m RawUnsubscribeCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m RawUnsubscribeCmd) IsValid() error { return requireRequestID(m.Id) }
