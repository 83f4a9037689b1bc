package message

import (
	"testing"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
)

func TestToSpecV0ServerMessageServerInfo(t *testing.T) {
	info := ServerInfo{id: id{Id: 1}, ServerName: "test-server", MessageVersion: 2, MaxPingTime: 1000}
	out, err := ToSpecV0ServerMessage(info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v0, ok := out.(ServerInfoV0)
	if !ok {
		t.Fatalf("expected ServerInfoV0, got %T", out)
	}
	if v0.ServerName != info.ServerName || v0.MaxPingTime != info.MaxPingTime {
		t.Fatalf("fields not preserved across downcast: %+v", v0)
	}
}

func TestToSpecV0ServerMessageError(t *testing.T) {
	e := Error{id: id{Id: 1}, ErrorMessage: "boom", ErrorCode: 3}
	out, err := ToSpecV0ServerMessage(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v0, ok := out.(ErrorV0)
	if !ok {
		t.Fatalf("expected ErrorV0, got %T", out)
	}
	if v0.ErrorMessage != e.ErrorMessage {
		t.Fatalf("message not preserved: %+v", v0)
	}
}

func TestToSpecV1ServerMessageError(t *testing.T) {
	e := Error{id: id{Id: 1}, ErrorMessage: "boom", ErrorCode: 3}
	out, err := ToSpecV1ServerMessage(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v1, ok := out.(ErrorV0)
	if !ok {
		t.Fatalf("expected ErrorV0 for v1 too (v1's error union is ErrorV0), got %T", out)
	}
	if v1.ErrorMessage != e.ErrorMessage {
		t.Fatalf("message not preserved: %+v", v1)
	}
}

func TestToSpecV2ServerMessageIdentity(t *testing.T) {
	ok := NewOk(1)
	out, err := ToSpecV2ServerMessage(ok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.(Ok) != ok {
		t.Fatal("v2 downcast should be the identity")
	}
}

func TestToSpecV0ServerMessageRejectsV2OnlyMessage(t *testing.T) {
	reading := BatteryLevelReading{id: id{Id: 1}, DeviceIndex: 0, BatteryLevel: 0.5}
	out, err := ToSpecV0ServerMessage(reading)
	if err == nil {
		t.Fatalf("expected VersionError downcasting BatteryLevelReading to v0, got %+v", out)
	}
	if _, ok := err.(buttplugerr.Coder); !ok {
		t.Fatalf("expected a coded buttplugerr, got %v (%T)", err, err)
	}
}

func TestToSpecV1ServerMessageRejectsV2OnlyMessage(t *testing.T) {
	reading := RSSILevelReading{id: id{Id: 1}, DeviceIndex: 0, RSSILevel: -40}
	out, err := ToSpecV1ServerMessage(reading)
	if err == nil {
		t.Fatalf("expected VersionError downcasting RSSILevelReading to v1, got %+v", out)
	}
}

func TestDeviceListDowncastDropsV2Fields(t *testing.T) {
	gap := uint32(5)
	list := DeviceList{
		id: id{Id: 1},
		Devices: []DeviceMessageInfo{
			{
				DeviceIndex:            0,
				DeviceName:             "Test Device",
				DeviceDisplayName:      "Nickname",
				DeviceMessageTimingGap: &gap,
				DeviceMessages:         DeviceMessageAttributesMap{VibrateCmdType: {}},
			},
		},
	}
	out, err := ToSpecV1ServerMessage(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v1, ok := out.(DeviceListV1)
	if !ok {
		t.Fatalf("expected DeviceListV1, got %T", out)
	}
	if len(v1.Devices) != 1 || v1.Devices[0].DeviceName != "Test Device" {
		t.Fatalf("device info not preserved: %+v", v1.Devices)
	}
}
