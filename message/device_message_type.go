package message

// DeviceMessageType enumerates the message types a device can declare
// support for, across every spec version including deprecated
// device-specific commands. Values must serialize in lexicographic
// order by name (tested in device_message_type_test.go), matching the
// Ord-by-to_string() impl in the original Rust source.
type DeviceMessageType string

const (
	VibrateCmdType   DeviceMessageType = "VibrateCmd"
	LinearCmdType    DeviceMessageType = "LinearCmd"
	RotateCmdType    DeviceMessageType = "RotateCmd"
	StopDeviceCmdType DeviceMessageType = "StopDeviceCmd"

	RawWriteCmdType      DeviceMessageType = "RawWriteCmd"
	RawReadCmdType       DeviceMessageType = "RawReadCmd"
	RawSubscribeCmdType  DeviceMessageType = "RawSubscribeCmd"
	RawUnsubscribeCmdType DeviceMessageType = "RawUnsubscribeCmd"

	BatteryLevelCmdType DeviceMessageType = "BatteryLevelCmd"
	RSSILevelCmdType    DeviceMessageType = "RSSILevelCmd"

	// Deprecated generic command.
	SingleMotorVibrateCmdType DeviceMessageType = "SingleMotorVibrateCmd"

	// Deprecated device-specific commands.
	FleshlightLaunchFW12CmdType DeviceMessageType = "FleshlightLaunchFW12Cmd"
	LovenseCmdType              DeviceMessageType = "LovenseCmd"
	KiirooCmdType                DeviceMessageType = "KiirooCmd"
	VorzeA10CycloneCmdType       DeviceMessageType = "VorzeA10CycloneCmd"
)

// CurrentSpecDeviceMessageType is the subset of DeviceMessageType valid
// in the current (v2) spec; it excludes deprecated device-specific and
// deprecated generic commands.
type CurrentSpecDeviceMessageType string

const (
	CurrentVibrateCmdType    CurrentSpecDeviceMessageType = "VibrateCmd"
	CurrentLinearCmdType     CurrentSpecDeviceMessageType = "LinearCmd"
	CurrentRotateCmdType     CurrentSpecDeviceMessageType = "RotateCmd"
	CurrentStopDeviceCmdType CurrentSpecDeviceMessageType = "StopDeviceCmd"

	CurrentRawWriteCmdType       CurrentSpecDeviceMessageType = "RawWriteCmd"
	CurrentRawReadCmdType        CurrentSpecDeviceMessageType = "RawReadCmd"
	CurrentRawSubscribeCmdType   CurrentSpecDeviceMessageType = "RawSubscribeCmd"
	CurrentRawUnsubscribeCmdType CurrentSpecDeviceMessageType = "RawUnsubscribeCmd"

	CurrentBatteryLevelCmdType CurrentSpecDeviceMessageType = "BatteryLevelCmd"
	CurrentRSSILevelCmdType    CurrentSpecDeviceMessageType = "RSSILevelCmd"
)

// ToCurrentSpec narrows a DeviceMessageType to CurrentSpecDeviceMessageType,
// failing for deprecated types that have no place in the current spec.
func (t DeviceMessageType) ToCurrentSpec() (CurrentSpecDeviceMessageType, bool) {
	switch t {
	case VibrateCmdType, LinearCmdType, RotateCmdType, StopDeviceCmdType,
		RawWriteCmdType, RawReadCmdType, RawSubscribeCmdType, RawUnsubscribeCmdType,
		BatteryLevelCmdType, RSSILevelCmdType:
		return CurrentSpecDeviceMessageType(t), true
	default:
		return "", false
	}
}

// FromCurrentSpec widens a CurrentSpecDeviceMessageType back to a
// DeviceMessageType. Always succeeds: the current-spec set is a subset.
func (t CurrentSpecDeviceMessageType) FromCurrentSpec() DeviceMessageType {
	return DeviceMessageType(t)
}

// DeviceMessageAttributes describes a device's capability for one message
// type, e.g. feature count and per-feature step resolution for VibrateCmd.
type DeviceMessageAttributes struct {
	FeatureCount *uint32 `json:"FeatureCount,omitempty"`
	StepCount    []uint32 `json:"StepCount,omitempty"`
	Endpoints    []string `json:"Endpoints,omitempty"`
}

// DeviceMessageAttributesMap maps each supported device message type to
// its capability descriptor. Marshaling must walk keys in lexicographic
// order (spec.md ยง4.1); OrderedKeys returns that ordering.
type DeviceMessageAttributesMap map[DeviceMessageType]DeviceMessageAttributes

// OrderedKeys returns the map's keys sorted lexicographically by name,
// the order required for deterministic attribute-map serialization.
func (m DeviceMessageAttributesMap) OrderedKeys() []DeviceMessageType {
	keys := make([]DeviceMessageType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Simple insertion sort: attribute maps are small (a handful of
	// message types per device), and this avoids pulling in "sort" for
	// one call site.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
