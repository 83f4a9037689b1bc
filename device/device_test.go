package device

import (
	"context"
	"testing"

	"github.com/nonpolynomial/buttplug-go/message"
)

type stubImpl struct {
	name    string
	writes  [][]byte
	connected bool
}

func (s *stubImpl) Name() string         { return s.name }
func (s *stubImpl) Address() string      { return "stub-addr" }
func (s *stubImpl) Endpoints() []Endpoint { return []Endpoint{Tx} }
func (s *stubImpl) Connected() bool      { return s.connected }

func (s *stubImpl) WriteValue(ctx context.Context, endpoint Endpoint, data []byte, writeWithResponse bool) error {
	s.writes = append(s.writes, data)
	return nil
}
func (s *stubImpl) ReadValue(ctx context.Context, endpoint Endpoint) (RawReading, error) {
	return RawReading{Endpoint: endpoint, Data: []byte{1}}, nil
}
func (s *stubImpl) Subscribe(ctx context.Context, endpoint Endpoint) (<-chan RawReading, error) {
	ch := make(chan RawReading)
	close(ch)
	return ch, nil
}
func (s *stubImpl) Unsubscribe(ctx context.Context, endpoint Endpoint) error { return nil }
func (s *stubImpl) Disconnect() error                                        { s.connected = false; return nil }

type stubHandler struct {
	BaseHandler
	vibrateCalls int
}

func (h *stubHandler) HandleVibrateCmd(ctx context.Context, impl Impl, cmd message.VibrateCmd) error {
	h.vibrateCalls++
	return impl.WriteValue(ctx, Tx, []byte{0x01}, false)
}

func TestDeviceRejectsCommandsOutsideConnected(t *testing.T) {
	impl := &stubImpl{name: "Test Device", connected: true}
	h := &stubHandler{BaseHandler: BaseHandler{HandlerName: "stub"}}
	d := New(1, h, impl)

	err := d.HandleVibrateCmd(context.Background(), message.VibrateCmd{})
	if err == nil {
		t.Fatal("expected DeviceNotConnected while still Connecting")
	}

	d.SetState(Connected)
	if err := d.HandleVibrateCmd(context.Background(), message.VibrateCmd{}); err != nil {
		t.Fatalf("unexpected error once connected: %v", err)
	}
	if h.vibrateCalls != 1 {
		t.Fatalf("expected handler to be invoked once, got %d", h.vibrateCalls)
	}

	d.SetState(Disconnecting)
	if err := d.HandleVibrateCmd(context.Background(), message.VibrateCmd{}); err == nil {
		t.Fatal("expected DeviceNotConnected while Disconnecting")
	}
}

func TestDeviceDisconnectTransitionsState(t *testing.T) {
	impl := &stubImpl{name: "Test Device", connected: true}
	h := &stubHandler{BaseHandler: BaseHandler{HandlerName: "stub"}}
	d := New(1, h, impl)
	d.SetState(Connected)

	if err := d.Disconnect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.State() != Disconnected {
		t.Fatalf("got state %v, want Disconnected", d.State())
	}
	if impl.connected {
		t.Fatal("impl should report disconnected")
	}
}

func TestBaseHandlerDefaultsToUnsupported(t *testing.T) {
	var h BaseHandler = BaseHandler{HandlerName: "generic"}
	if err := h.HandleRotateCmd(context.Background(), &stubImpl{}, message.RotateCmd{}); err == nil {
		t.Fatal("expected unsupported error from default handler")
	}
}

func TestRegistryTriesCreatorsInOrder(t *testing.T) {
	r := NewRegistry()
	var calls []string
	r.Register(CreatorFunc(func(c CandidateDevice) (Handler, bool) {
		calls = append(calls, "first")
		return nil, false
	}))
	r.Register(CreatorFunc(func(c CandidateDevice) (Handler, bool) {
		calls = append(calls, "second")
		return &stubHandler{BaseHandler: BaseHandler{HandlerName: "second"}}, true
	}))
	r.Register(CreatorFunc(func(c CandidateDevice) (Handler, bool) {
		calls = append(calls, "third")
		return &stubHandler{BaseHandler: BaseHandler{HandlerName: "third"}}, true
	}))

	h, ok := r.Create(CandidateDevice{Name: "Anything"})
	if !ok {
		t.Fatal("expected a handler to be created")
	}
	if h.Name() != "second" {
		t.Fatalf("got handler %q, want first acceptance (second)", h.Name())
	}
	if len(calls) != 2 {
		t.Fatalf("expected registry to stop at first acceptance, called %v", calls)
	}
}
