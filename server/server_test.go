package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/message"
	"github.com/nonpolynomial/buttplug-go/protocols"
	"github.com/nonpolynomial/buttplug-go/server"
	"github.com/nonpolynomial/buttplug-go/testdevice"
)

func newSession(t *testing.T, cfg server.Config) (*server.Session, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	return server.NewSession(ctx, cfg, 64), cancel
}

func TestHandshakeBeforeAnyOtherMessage(t *testing.T) {
	s, cancel := newSession(t, server.Config{})
	defer cancel()

	_, err := s.HandleMessage(context.Background(), message.StartScanning{})
	if err == nil {
		t.Fatal("expected HandshakeError before RequestServerInfo")
	}
}

func TestHandshakeReturnsServerInfo(t *testing.T) {
	s, cancel := newSession(t, server.Config{MaxPingTime: 100 * time.Millisecond})
	defer cancel()

	req := message.RequestServerInfo{ClientName: "test-client", MessageVersion: uint32(message.CurrentSpecVersion)}
	req.SetID(1)
	reply, err := s.HandleMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, ok := reply.(message.ServerInfo)
	if !ok {
		t.Fatalf("expected ServerInfo, got %T", reply)
	}
	if info.ID() != 1 {
		t.Fatalf("expected reply id 1, got %d", info.ID())
	}
	if info.MaxPingTime != 100 {
		t.Fatalf("expected MaxPingTime 100, got %d", info.MaxPingTime)
	}
}

func TestHandshakeRejectsFutureVersion(t *testing.T) {
	s, cancel := newSession(t, server.Config{})
	defer cancel()

	req := message.RequestServerInfo{MessageVersion: uint32(message.CurrentSpecVersion) + 1}
	req.SetID(1)
	if _, err := s.HandleMessage(context.Background(), req); err == nil {
		t.Fatal("expected HandshakeError for an unsupported future version")
	}
}

func TestHandshakeProjectsServerInfoToV0(t *testing.T) {
	s, cancel := newSession(t, server.Config{})
	defer cancel()

	req := message.RequestServerInfo{MessageVersion: uint32(message.SpecVersion0)}
	req.SetID(1)
	reply, err := s.HandleMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reply.(message.ServerInfoV0); !ok {
		t.Fatalf("expected ServerInfoV0 after negotiating v0, got %T", reply)
	}
}

func TestCommandsAreRejectedAfterPingTimeout(t *testing.T) {
	s, cancel := newSession(t, server.Config{MaxPingTime: 50 * time.Millisecond})
	defer cancel()

	req := message.RequestServerInfo{MessageVersion: uint32(message.CurrentSpecVersion)}
	req.SetID(1)
	if _, err := s.HandleMessage(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vibrate := message.VibrateCmd{DeviceIndex: 0, Speeds: []message.VibrateSubcommand{{Index: 0, Speed: 0.1}}}
	vibrate.SetID(2)
	if _, err := s.HandleMessage(context.Background(), vibrate); err == nil {
		t.Fatal("expected DeviceNotAvailable for an unknown device, not a ping error")
	}

	builder := testdevice.NewFakeCommManagerBuilder("fake")
	if err := s.Manager().AddCommManager(builder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	impl := testdevice.NewFakeImpl("TestDevice", "addr-1", device.Tx)
	builder.Manager().Discover(impl, protocols.NewLovehoneyDesire("TestDevice"))

	deadline := time.After(time.Second)
waitForAdd:
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for DeviceAdded")
		case msg := <-s.Outbound():
			if _, ok := msg.(message.DeviceAdded); ok {
				break waitForAdd
			}
		}
	}

	deadline = time.After(time.Second)
waitForTimeout:
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for ping timeout event")
		case msg := <-s.Outbound():
			if _, ok := msg.(message.Error); ok {
				break waitForTimeout
			}
		}
	}

	postTimeout := message.VibrateCmd{DeviceIndex: 0, Speeds: []message.VibrateSubcommand{{Index: 0, Speed: 0.1}}}
	postTimeout.SetID(3)
	_, err := s.HandleMessage(context.Background(), postTimeout)
	if err == nil {
		t.Fatal("expected DeviceNotConnected for a command sent after the ping timeout")
	}
	deviceErr, ok := err.(*buttplugerr.DeviceError)
	if !ok {
		t.Fatalf("expected *buttplugerr.DeviceError, got %T (%v)", err, err)
	}
	if deviceErr.Kind != buttplugerr.DeviceNotConnected {
		t.Fatalf("expected DeviceNotConnected, got %v", deviceErr.Kind)
	}
}

// TestFullHandshakeScanAndDeviceList exercises the handshake + device
// enumeration scenario: connect, RequestServerInfo, StartScanning, a
// simulated bus discovers a device, RequestDeviceList reflects it.
func TestFullHandshakeScanAndDeviceList(t *testing.T) {
	s, cancel := newSession(t, server.Config{})
	defer cancel()

	req := message.RequestServerInfo{ClientName: "test-client", MessageVersion: uint32(message.CurrentSpecVersion)}
	req.SetID(1)
	if _, err := s.HandleMessage(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	builder := testdevice.NewFakeCommManagerBuilder("fake")
	if err := s.Manager().AddCommManager(builder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scan := message.StartScanning{}
	scan.SetID(2)
	reply, err := s.HandleMessage(context.Background(), scan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reply.(message.Ok); !ok {
		t.Fatalf("expected Ok, got %T", reply)
	}

	impl := testdevice.NewFakeImpl("TestDevice", "addr-1", device.Tx)
	builder.Manager().Discover(impl, protocols.NewLovehoneyDesire("TestDevice"))

	deadline := time.After(time.Second)
waitForAdd:
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for DeviceAdded")
		case msg := <-s.Outbound():
			if _, ok := msg.(message.DeviceAdded); ok {
				break waitForAdd
			}
		}
	}

	list := message.RequestDeviceList{}
	list.SetID(3)
	reply, err = s.HandleMessage(context.Background(), list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dl, ok := reply.(message.DeviceList)
	if !ok {
		t.Fatalf("expected DeviceList, got %T", reply)
	}
	if len(dl.Devices) != 1 || dl.Devices[0].DeviceName != "TestDevice" {
		t.Fatalf("got %+v", dl.Devices)
	}
}

func TestSerializerRoundTripsVibrateCmd(t *testing.T) {
	ser := server.DefaultSerializer{}
	data := []byte(`[{"VibrateCmd":{"Id":7,"DeviceIndex":2,"Speeds":[{"Index":0,"Speed":0.5}]}}]`)
	msgs, err := ser.Deserialize(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	cmd, ok := msgs[0].(message.VibrateCmd)
	if !ok {
		t.Fatalf("expected VibrateCmd, got %T", msgs[0])
	}
	if cmd.ID() != 7 || cmd.DeviceIndex != 2 || len(cmd.Speeds) != 1 || cmd.Speeds[0].Speed != 0.5 {
		t.Fatalf("got %+v", cmd)
	}
}

func TestSerializerRejectsUnknownMessageType(t *testing.T) {
	ser := server.DefaultSerializer{}
	_, err := ser.Deserialize([]byte(`[{"NotARealMessage":{}}]`))
	if err == nil {
		t.Fatal("expected error for unrecognized message type")
	}
}

func TestSerializerSerializesOneKeyPerMessage(t *testing.T) {
	ser := server.DefaultSerializer{}
	ok := message.NewOk(5)
	data, err := ser.Serialize(ok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[{"Ok":{"Id":5}}]`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
}
