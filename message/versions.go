package message

import (
	"fmt"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
)

// ToSpecV0ServerMessage downcasts a canonical ServerMessage to the shape
// a v0 client expects. v0's server message union is exactly: Ok, Error,
// Log, ServerInfo, DeviceList, DeviceAdded, DeviceRemoved,
// ScanningFinished. Anything else — RawReading, BatteryLevelReading,
// RSSILevelReading, Test, and any future v2-only addition — has no v0
// representation and fails with a VersionError rather than being
// forwarded unconverted.
func ToSpecV0ServerMessage(msg ServerMessage) (ServerMessage, error) {
	switch m := msg.(type) {
	case Ok:
		return m, nil
	case Log:
		return m, nil
	case ServerInfo:
		return ToServerInfoV0(m), nil
	case Error:
		return ErrorV0{id: id{Id: m.Id}, ErrorMessage: m.ErrorMessage}, nil
	case DeviceList:
		return DeviceListV0{id: id{Id: m.Id}, Devices: toDeviceMessageInfoV0List(m.Devices)}, nil
	case DeviceAdded:
		return DeviceAddedV0{id: id{Id: m.Id}, DeviceMessageInfoV0: toDeviceMessageInfoV0(m.DeviceMessageInfo)}, nil
	case DeviceRemoved:
		return m, nil
	case ScanningFinished:
		return m, nil
	default:
		return nil, buttplugerr.VersionError("ServerMessage", messageTypeName(msg), "v0")
	}
}

// ToSpecV1ServerMessage downcasts a canonical ServerMessage to the shape
// a v1 client expects. v1's server message union is the same set as
// v0's, differing only in the nested DeviceList/DeviceAdded shape.
func ToSpecV1ServerMessage(msg ServerMessage) (ServerMessage, error) {
	switch m := msg.(type) {
	case Ok:
		return m, nil
	case Log:
		return m, nil
	case ServerInfo:
		return ToServerInfoV0(m), nil
	case Error:
		return ErrorV0{id: id{Id: m.Id}, ErrorMessage: m.ErrorMessage}, nil
	case DeviceList:
		return DeviceListV1{id: id{Id: m.Id}, Devices: toDeviceMessageInfoV0List(m.Devices)}, nil
	case DeviceAdded:
		return DeviceAddedV1{id: id{Id: m.Id}, DeviceMessageInfoV0: toDeviceMessageInfoV0(m.DeviceMessageInfo)}, nil
	case DeviceRemoved:
		return m, nil
	case ScanningFinished:
		return m, nil
	default:
		return nil, buttplugerr.VersionError("ServerMessage", messageTypeName(msg), "v1")
	}
}

// ToSpecV2ServerMessage is the identity conversion: v2 is this server's
// native wire shape. Kept for symmetry with the v0/v1 downcasts and so
// server code can dispatch on negotiated SpecVersion uniformly.
func ToSpecV2ServerMessage(msg ServerMessage) (ServerMessage, error) {
	return msg, nil
}

// ToSpecVersion downcasts msg to the wire shape for v, returning
// buttplugerr.VersionError if msg has no representation in that
// version.
func ToSpecVersion(msg ServerMessage, v SpecVersion) (ServerMessage, error) {
	switch v {
	case SpecVersion0:
		return ToSpecV0ServerMessage(msg)
	case SpecVersion1:
		return ToSpecV1ServerMessage(msg)
	case SpecVersion2:
		return ToSpecV2ServerMessage(msg)
	default:
		return nil, buttplugerr.VersionError("ServerMessage", messageTypeName(msg), v.String())
	}
}

func toDeviceMessageInfoV0(info DeviceMessageInfo) DeviceMessageInfoV0 {
	return DeviceMessageInfoV0{
		DeviceIndex:    info.DeviceIndex,
		DeviceName:     info.DeviceName,
		DeviceMessages: info.DeviceMessages,
	}
}

func toDeviceMessageInfoV0List(infos []DeviceMessageInfo) []DeviceMessageInfoV0 {
	out := make([]DeviceMessageInfoV0, len(infos))
	for i, info := range infos {
		out[i] = toDeviceMessageInfoV0(info)
	}
	return out
}

// messageTypeName returns the concrete type name of msg for error
// messages; Go has no runtime "variant name" the way the original enum
// did, so this uses the %T verb instead.
func messageTypeName(msg ServerMessage) string {
	return fmt.Sprintf("%T", msg)
}
