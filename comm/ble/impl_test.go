package ble

import (
	"context"
	"testing"
	"time"

	blelib "github.com/go-ble/ble"

	"github.com/nonpolynomial/buttplug-go/device"
)

// fakeClient is a minimal blelib.Client double: enough of the surface
// Impl actually calls to exercise write/read/subscribe without a real
// radio.
type fakeClient struct {
	writes       [][]byte
	notifyHandler func([]byte)
	disconnected  chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{disconnected: make(chan struct{})}
}

func (c *fakeClient) Address() blelib.Addr                               { return blelib.NewAddr("AA:BB:CC:DD:EE:FF") }
func (c *fakeClient) Name() string                                       { return "fake" }
func (c *fakeClient) Profile() *blelib.Profile                           { return &blelib.Profile{} }
func (c *fakeClient) DiscoverProfile(force bool) (*blelib.Profile, error) { return &blelib.Profile{}, nil }
func (c *fakeClient) DiscoverServices(filter []blelib.UUID) ([]*blelib.Service, error) {
	return nil, nil
}
func (c *fakeClient) DiscoverIncludedServices(filter []blelib.UUID, s *blelib.Service) ([]*blelib.Service, error) {
	return nil, nil
}
func (c *fakeClient) DiscoverCharacteristics(filter []blelib.UUID, s *blelib.Service) ([]*blelib.Characteristic, error) {
	return nil, nil
}
func (c *fakeClient) DiscoverDescriptors(filter []blelib.UUID, ch *blelib.Characteristic) ([]*blelib.Descriptor, error) {
	return nil, nil
}
func (c *fakeClient) ReadCharacteristic(ch *blelib.Characteristic) ([]byte, error) { return nil, nil }
func (c *fakeClient) ReadLongCharacteristic(ch *blelib.Characteristic) ([]byte, error) {
	return nil, nil
}
func (c *fakeClient) WriteCharacteristic(ch *blelib.Characteristic, data []byte, noRsp bool) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	c.writes = append(c.writes, cp)
	return nil
}
func (c *fakeClient) ReadDescriptor(d *blelib.Descriptor) ([]byte, error) { return nil, nil }
func (c *fakeClient) WriteDescriptor(d *blelib.Descriptor, v []byte) error { return nil }
func (c *fakeClient) ReadRSSI() int                                        { return 0 }
func (c *fakeClient) ExchangeMTU(rxMTU int) (txMTU int, err error)         { return 0, nil }
func (c *fakeClient) Subscribe(ch *blelib.Characteristic, ind bool, h blelib.NotificationHandler) error {
	c.notifyHandler = h
	return nil
}
func (c *fakeClient) Unsubscribe(ch *blelib.Characteristic, ind bool) error {
	c.notifyHandler = nil
	return nil
}
func (c *fakeClient) ClearCachedAttributes() error       { return nil }
func (c *fakeClient) CancelConnection() error             { close(c.disconnected); return nil }
func (c *fakeClient) Conn() blelib.Conn                   { return nil }
func (c *fakeClient) Disconnected() <-chan struct{}       { return c.disconnected }

func testImpl(t *testing.T) (*Impl, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	chars := map[device.Endpoint]*blelib.Characteristic{
		device.Tx: {},
	}
	return newImpl("TestPeripheral", "AA:BB:CC:DD:EE:FF", client, chars), client
}

func TestImplWriteValueReachesClient(t *testing.T) {
	impl, client := testImpl(t)
	if err := impl.WriteValue(context.Background(), device.Tx, []byte{1, 2, 3}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(client.writes))
	}
}

func TestImplWriteValueUnmappedEndpoint(t *testing.T) {
	impl, _ := testImpl(t)
	if err := impl.WriteValue(context.Background(), device.Rx, []byte{1}, false); err == nil {
		t.Fatal("expected error for unmapped endpoint")
	}
}

func TestImplSubscribeDeliversNotifications(t *testing.T) {
	impl, client := testImpl(t)
	ch, err := impl.Subscribe(context.Background(), device.Tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.notifyHandler([]byte{9, 9})

	select {
	case reading := <-ch:
		if len(reading.Data) != 2 || reading.Data[0] != 9 {
			t.Fatalf("got %+v", reading)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestImplDisconnectClosesSubscriptions(t *testing.T) {
	impl, _ := testImpl(t)
	ch, err := impl.Subscribe(context.Background(), device.Tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := impl.Disconnect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected channel to be closed after disconnect")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription channel to close")
	}
}
