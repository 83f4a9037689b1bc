package message

import "testing"

func TestIDCounterSkipsServerEventID(t *testing.T) {
	var c IDCounter
	c.value = ^uint32(0) // one below wraparound
	first := c.Generate()
	if first == ServerEventID {
		t.Fatalf("Generate returned reserved id %d", ServerEventID)
	}
	second := c.Generate()
	if second != first+1 {
		t.Fatalf("expected sequential ids, got %d then %d", first, second)
	}
}

func TestIsServerEvent(t *testing.T) {
	ok := NewOk(0)
	if !IsServerEvent(ok) {
		t.Fatal("message with id 0 should be a server event")
	}
	ok = NewOk(5)
	if IsServerEvent(ok) {
		t.Fatal("message with non-zero id should not be a server event")
	}
}

func TestRequestServerInfoValidation(t *testing.T) {
	m := RequestServerInfo{id: id{Id: 0}, ClientName: "test"}
	if err := m.IsValid(); err == nil {
		t.Fatal("expected error for RequestServerInfo with id 0")
	}
	m.Id = 1
	if err := m.IsValid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVibrateCmdValidation(t *testing.T) {
	cases := []struct {
		name    string
		msg     VibrateCmd
		wantErr bool
	}{
		{
			name: "valid",
			msg: VibrateCmd{
				id:          id{Id: 1},
				DeviceIndex: 0,
				Speeds:      []VibrateSubcommand{{Index: 0, Speed: 0.5}},
			},
		},
		{
			name: "zero id",
			msg: VibrateCmd{
				id:          id{Id: 0},
				DeviceIndex: 0,
				Speeds:      []VibrateSubcommand{{Index: 0, Speed: 0.5}},
			},
			wantErr: true,
		},
		{
			name: "speed out of range",
			msg: VibrateCmd{
				id:          id{Id: 1},
				DeviceIndex: 0,
				Speeds:      []VibrateSubcommand{{Index: 0, Speed: 1.5}},
			},
			wantErr: true,
		},
		{
			name: "duplicate index",
			msg: VibrateCmd{
				id:          id{Id: 1},
				DeviceIndex: 0,
				Speeds: []VibrateSubcommand{
					{Index: 0, Speed: 0.1},
					{Index: 0, Speed: 0.2},
				},
			},
			wantErr: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.msg.IsValid()
			if c.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDeviceCommandMessageAssertion(t *testing.T) {
	var cm ClientMessage = VibrateCmd{id: id{Id: 1}, DeviceIndex: 3}
	dc, ok := AsDeviceCommandMessage(cm)
	if !ok {
		t.Fatal("VibrateCmd should satisfy DeviceCommandMessage")
	}
	if dc.GetDeviceIndex() != 3 {
		t.Fatalf("got device index %d, want 3", dc.GetDeviceIndex())
	}

	var dm ClientMessage = StartScanning{id: id{Id: 1}}
	if _, ok := AsDeviceCommandMessage(dm); ok {
		t.Fatal("StartScanning should not satisfy DeviceCommandMessage")
	}
	if _, ok := AsDeviceManagerMessage(dm); !ok {
		t.Fatal("StartScanning should satisfy DeviceManagerMessage")
	}
}
