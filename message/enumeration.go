package message

// StartScanning asks every registered communication manager to begin
// scanning for devices. Answered with Ok once all managers have started,
// or an error if any manager is already scanning.
type StartScanning struct {
	id
}

func (StartScanning) clientMessage()        {}
func (StartScanning) deviceManagerMessage() {}

// IsValid requires a non-zero request id.
func (m StartScanning) IsValid() error { return requireRequestID(m.Id) }

// StopScanning asks every registered communication manager to stop
// scanning. A ScanningFinished event follows once the last manager to
// stop has actually stopped.
type StopScanning struct {
	id
}

func (StopScanning) clientMessage()        {}
func (StopScanning) deviceManagerMessage() {}

// IsValid requires a non-zero request id.
func (m StopScanning) IsValid() error { return requireRequestID(m.Id) }

// ScanningFinished is a system event announcing that scanning has
// stopped on every communication manager. Emitted at most once per
// start/stop cycle, even when multiple managers finish concurrently.
type ScanningFinished struct {
	id
}

func (ScanningFinished) serverMessage() {}

// IsValid requires the system id 0.
func (m ScanningFinished) IsValid() error { return requireSystemID(m.Id) }

// RequestDeviceList asks for the current list of known devices.
type RequestDeviceList struct {
	id
}

func (RequestDeviceList) clientMessage()        {}
func (RequestDeviceList) deviceManagerMessage() {}

// IsValid requires a non-zero request id.
func (m RequestDeviceList) IsValid() error { return requireRequestID(m.Id) }

// DeviceMessageInfo describes one device in a DeviceList/DeviceAdded
// message: its manager-assigned index, display name, and the message
// types (with capability attributes) it accepts.
type DeviceMessageInfo struct {
	DeviceIndex             uint32
	DeviceName              string
	DeviceMessages          DeviceMessageAttributesMap
	DeviceDisplayName       string  `json:"DeviceDisplayName,omitempty"`
	DeviceMessageTimingGap  *uint32 `json:"DeviceMessageTimingGap,omitempty"`
}

// DeviceList answers RequestDeviceList with every currently known
// device.
type DeviceList struct {
	id
	Devices []DeviceMessageInfo
}

func (DeviceList) serverMessage() {}

// IsValid accepts any DeviceList.
func (DeviceList) IsValid() error { return nil }

// DeviceListV1 is the v1 wire projection of DeviceList: device message
// info omits DeviceDisplayName/DeviceMessageTimingGap (added in v2).
type DeviceListV1 struct {
	id
	Devices []DeviceMessageInfoV0
}

func (DeviceListV1) serverMessage() {}

// IsValid accepts any DeviceListV1.
func (DeviceListV1) IsValid() error { return nil }

// DeviceListV0 is the v0 wire projection of DeviceList.
type DeviceListV0 struct {
	id
	Devices []DeviceMessageInfoV0
}

func (DeviceListV0) serverMessage() {}

// IsValid accepts any DeviceListV0.
func (DeviceListV0) IsValid() error { return nil }

// DeviceMessageInfoV0 is the v0/v1 wire projection of DeviceMessageInfo.
type DeviceMessageInfoV0 struct {
	DeviceIndex    uint32
	DeviceName     string
	DeviceMessages DeviceMessageAttributesMap
}

// DeviceAdded is a system event announcing that a device became
// available after a successful scan.
type DeviceAdded struct {
	id
	DeviceMessageInfo
}

func (DeviceAdded) serverMessage() {}

// IsValid requires the system id 0.
func (m DeviceAdded) IsValid() error { return requireSystemID(m.Id) }

// DeviceAddedV1 is the v1 wire projection of DeviceAdded.
type DeviceAddedV1 struct {
	id
	DeviceMessageInfoV0
}

func (DeviceAddedV1) serverMessage() {}

// IsValid requires the system id 0.
func (m DeviceAddedV1) IsValid() error { return requireSystemID(m.Id) }

// DeviceAddedV0 is the v0 wire projection of DeviceAdded.
type DeviceAddedV0 struct {
	id
	DeviceMessageInfoV0
}

func (DeviceAddedV0) serverMessage() {}

// IsValid requires the system id 0.
func (m DeviceAddedV0) IsValid() error { return requireSystemID(m.Id) }

// DeviceRemoved is a system event announcing that a device disconnected
// or otherwise became unavailable.
type DeviceRemoved struct {
	id
	DeviceIndex uint32
}

func (DeviceRemoved) serverMessage() {}

// IsValid requires the system id 0.
func (m DeviceRemoved) IsValid() error { return requireSystemID(m.Id) }
