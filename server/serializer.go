package server

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/message"
)

// Serializer turns wire bytes into ClientMessages and ServerMessages
// back into wire bytes. The core server only depends on this interface;
// DefaultSerializer is the JSON codec the published Buttplug Spec
// describes (a JSON array of one-key objects, one per message).
type Serializer interface {
	Deserialize(data []byte) ([]message.ClientMessage, error)
	Serialize(msgs ...message.ServerMessage) ([]byte, error)
}

// DefaultSerializer implements Serializer using encoding/json.
type DefaultSerializer struct{}

// clientFactories maps each wire message name to a zero-value
// constructor; Deserialize unmarshals into the returned value's address.
var clientFactories = map[string]func() message.ClientMessage{
	"RequestServerInfo":  func() message.ClientMessage { return message.RequestServerInfo{} },
	"Ping":                func() message.ClientMessage { return message.Ping{} },
	"Test":                func() message.ClientMessage { return message.Test{} },
	"RequestLog":          func() message.ClientMessage { return message.RequestLog{} },
	"StartScanning":       func() message.ClientMessage { return message.StartScanning{} },
	"StopScanning":        func() message.ClientMessage { return message.StopScanning{} },
	"RequestDeviceList":   func() message.ClientMessage { return message.RequestDeviceList{} },
	"VibrateCmd":          func() message.ClientMessage { return message.VibrateCmd{} },
	"LinearCmd":           func() message.ClientMessage { return message.LinearCmd{} },
	"RotateCmd":           func() message.ClientMessage { return message.RotateCmd{} },
	"StopDeviceCmd":       func() message.ClientMessage { return message.StopDeviceCmd{} },
	"StopAllDevices":      func() message.ClientMessage { return message.StopAllDevices{} },
	"RawWriteCmd":         func() message.ClientMessage { return message.RawWriteCmd{} },
	"RawReadCmd":          func() message.ClientMessage { return message.RawReadCmd{} },
	"RawSubscribeCmd":     func() message.ClientMessage { return message.RawSubscribeCmd{} },
	"RawUnsubscribeCmd":   func() message.ClientMessage { return message.RawUnsubscribeCmd{} },
	"BatteryLevelCmd":     func() message.ClientMessage { return message.BatteryLevelCmd{} },
	"RSSILevelCmd":        func() message.ClientMessage { return message.RSSILevelCmd{} },

	"SingleMotorVibrateCmd":   func() message.ClientMessage { return message.SingleMotorVibrateCmd{} },
	"FleshlightLaunchFW12Cmd": func() message.ClientMessage { return message.FleshlightLaunchFW12Cmd{} },
	"LovenseCmd":              func() message.ClientMessage { return message.LovenseCmd{} },
	"KiirooCmd":               func() message.ClientMessage { return message.KiirooCmd{} },
	"VorzeA10CycloneCmd":      func() message.ClientMessage { return message.VorzeA10CycloneCmd{} },
}

// Deserialize parses a JSON array of one-key objects into ClientMessages,
// in order. An unrecognized message name or malformed payload produces a
// MessageError naming the offending entry; parsing otherwise stops at
// the first error, matching the source's "reject the whole batch"
// behavior for a malformed frame.
func (DefaultSerializer) Deserialize(data []byte) ([]message.ClientMessage, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, buttplugerr.NewMessageError("malformed message array: %v", err)
	}
	out := make([]message.ClientMessage, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != 1 {
			return nil, buttplugerr.NewMessageError("message entry must have exactly one key, got %d", len(entry))
		}
		for name, payload := range entry {
			factory, ok := clientFactories[name]
			if !ok {
				return nil, buttplugerr.NewMessageError("unrecognized message type %q", name)
			}
			msg := factory()
			ptr := reflect.New(reflect.TypeOf(msg))
			if err := json.Unmarshal(payload, ptr.Interface()); err != nil {
				return nil, buttplugerr.NewMessageError("decoding %s: %v", name, err)
			}
			out = append(out, ptr.Elem().Interface().(message.ClientMessage))
		}
	}
	return out, nil
}

// Serialize marshals a batch of already-projected ServerMessages into the
// wire array form. Messages that have no representation in the
// caller's already-projected form (a VersionError bubbled up from
// ToSpecVersion before Serialize was called) should never reach here;
// Serialize itself never downcasts.
func (DefaultSerializer) Serialize(msgs ...message.ServerMessage) ([]byte, error) {
	entries := make([]map[string]message.ServerMessage, 0, len(msgs))
	for _, m := range msgs {
		name, err := wireName(m)
		if err != nil {
			log.Printf("server: dropping undeliverable message: %v", err)
			continue
		}
		entries = append(entries, map[string]message.ServerMessage{name: m})
	}
	return json.Marshal(entries)
}

// wireName returns the published message-type name for a canonical or
// version-projected ServerMessage. Every V0/V1 projection of a message
// shares its canonical name on the wire; only the Go type differs.
func wireName(m message.ServerMessage) (string, error) {
	switch m.(type) {
	case message.Ok:
		return "Ok", nil
	case message.Error, message.ErrorV0:
		return "Error", nil
	case message.Test:
		return "Test", nil
	case message.Log:
		return "Log", nil
	case message.ServerInfo, message.ServerInfoV0:
		return "ServerInfo", nil
	case message.ScanningFinished:
		return "ScanningFinished", nil
	case message.DeviceList, message.DeviceListV0, message.DeviceListV1:
		return "DeviceList", nil
	case message.DeviceAdded, message.DeviceAddedV0, message.DeviceAddedV1:
		return "DeviceAdded", nil
	case message.DeviceRemoved:
		return "DeviceRemoved", nil
	case message.RawReading:
		return "RawReading", nil
	case message.BatteryLevelReading:
		return "BatteryLevelReading", nil
	case message.RSSILevelReading:
		return "RSSILevelReading", nil
	default:
		return "", fmt.Errorf("no wire name for %T", m)
	}
}
