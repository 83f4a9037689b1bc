package message

// BatteryLevelCmd requests a device's current battery level, answered
// with BatteryLevelReading.
type BatteryLevelCmd struct {
	id
	DeviceIndex uint32
}

func (BatteryLevelCmd) clientMessage()        {}
func (BatteryLevelCmd) deviceCommandMessage() {}

func (m BatteryLevelCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m BatteryLevelCmd) IsValid() error { return requireRequestID(m.Id) }

// BatteryLevelReading answers BatteryLevelCmd with a battery level in
// [0.0, 1.0].
type BatteryLevelReading struct {
	id
	DeviceIndex  uint32
	BatteryLevel float64
}

func (BatteryLevelReading) serverMessage() {}

// IsValid accepts any BatteryLevelReading.
func (BatteryLevelReading) IsValid() error { return nil }

// RSSILevelCmd requests a device's current radio signal strength,
// answered with RSSILevelReading.
type RSSILevelCmd struct {
	id
	DeviceIndex uint32
}

func (RSSILevelCmd) clientMessage()        {}
func (RSSILevelCmd) deviceCommandMessage() {}

func (m RSSILevelCmd) GetDeviceIndex() uint32 { return m.DeviceIndex }

// IsValid requires a non-zero request id.
func (m RSSILevelCmd) IsValid() error { return requireRequestID(m.Id) }

// RSSILevelReading answers RSSILevelCmd with a signal strength reading,
// in whatever unit the underlying bus reports (typically dBm).
type RSSILevelReading struct {
	id
	DeviceIndex uint32
	RSSILevel   int32
}

func (RSSILevelReading) serverMessage() {}

// IsValid accepts any RSSILevelReading.
func (RSSILevelReading) IsValid() error { return nil }
