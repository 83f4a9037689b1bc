package message

import "github.com/nonpolynomial/buttplug-go/buttplugerr"

// This file holds the deprecated generic and device-specific command
// messages: early protocol versions addressed whole device families
// directly instead of through the generic Vibrate/Rotate/Linear model.
// The serializer parses them from a client of any version, but they are
// not converted to the generic commands: the device manager answers
// them with an unexpected-message-type error. The server never emits
// them.

// SingleMotorVibrateCmd sets a single vibration speed across every
// vibrating feature on a device. Deprecated in favor of VibrateCmd.
type SingleMotorVibrateCmd struct {
	id
	DeviceIndex uint32
	Speed       float64
}

func (SingleMotorVibrateCmd) clientMessage()        {}
func (SingleMotorVibrateCmd) deviceCommandMessage() {}

func (m SingleMotorVibrateCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id and a unit-interval speed.
func (m SingleMotorVibrateCmd) IsValid() error {
	if err := requireRequestID(m.Id); err != nil {
		return err
	}
	return requireUnitInterval(m.Speed, "Speed")
}

// FleshlightLaunchFW12Cmd is the original Fleshlight Launch firmware 1.2
// command: move to Position at Speed, both 0-99. Deprecated in favor of
// LinearCmd.
type FleshlightLaunchFW12Cmd struct {
	id
	DeviceIndex uint32
	Position    uint32
	Speed       uint32
}

func (FleshlightLaunchFW12Cmd) clientMessage()        {}
func (FleshlightLaunchFW12Cmd) deviceCommandMessage() {}

func (m FleshlightLaunchFW12Cmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id and Position/Speed in [0, 99].
func (m FleshlightLaunchFW12Cmd) IsValid() error {
	if err := requireRequestID(m.Id); err != nil {
		return err
	}
	if m.Position > 99 || m.Speed > 99 {
		return buttplugerr.NewMessageError("FleshlightLaunchFW12Cmd Position/Speed must be in [0, 99]")
	}
	return nil
}

// LovenseCmd sends a raw Lovense protocol string command. Deprecated
// with no generic replacement; modern Lovense support goes through the
// device's protocol handler and generic commands instead.
type LovenseCmd struct {
	id
	DeviceIndex uint32
	Command     string
}

func (LovenseCmd) clientMessage()        {}
func (LovenseCmd) deviceCommandMessage() {}

func (m LovenseCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m LovenseCmd) IsValid() error { return requireRequestID(m.Id) }

// KiirooCmd sends a raw single-digit Kiiroo position command ("0"-"4").
// Deprecated in favor of LinearCmd/VibrateCmd.
type KiirooCmd struct {
	id
	DeviceIndex uint32
	Command     string
}

func (KiirooCmd) clientMessage()        {}
func (KiirooCmd) deviceCommandMessage() {}

func (m KiirooCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m KiirooCmd) IsValid() error { return requireRequestID(m.Id) }

// VorzeA10CycloneCmd sets rotation speed and direction on a Vorze A10
// Cyclone. Deprecated in favor of RotateCmd.
type VorzeA10CycloneCmd struct {
	id
	DeviceIndex uint32
	Speed       uint32
	Clockwise   bool
}

func (VorzeA10CycloneCmd) clientMessage()        {}
func (VorzeA10CycloneCmd) deviceCommandMessage() {}

func (m VorzeA10CycloneCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id and Speed in [0, 99].
func (m VorzeA10CycloneCmd) IsValid() error {
	if err := requireRequestID(m.Id); err != nil {
		return err
	}
	if m.Speed > 99 {
		return buttplugerr.NewMessageError("VorzeA10CycloneCmd Speed must be in [0, 99]")
	}
	return nil
}
