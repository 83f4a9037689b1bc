package protocols

import (
	"context"
	"testing"

	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/message"
)

func TestGenericWritesOneFramePerChangedFeature(t *testing.T) {
	h := NewGeneric("Generic Vibrator", nil, []uint32{20, 20}, []device.Endpoint{device.Tx, device.Tx})
	impl := &recordingImpl{}

	err := h.HandleVibrateCmd(context.Background(), impl, message.VibrateCmd{
		Speeds: []message.VibrateSubcommand{{Index: 0, Speed: 0.5}, {Index: 1, Speed: 1.0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(impl.writes) != 2 {
		t.Fatalf("got %d writes, want 2", len(impl.writes))
	}
	if impl.writes[0][0] != 0x0A || impl.writes[1][0] != 0x14 {
		t.Fatalf("got %v, want [0x0A] and [0x14]", impl.writes)
	}
}

func TestGenericSuppressesUnchangedFeature(t *testing.T) {
	h := NewGeneric("Generic Vibrator", nil, []uint32{20}, []device.Endpoint{device.Tx})
	impl := &recordingImpl{}

	cmd := message.VibrateCmd{Speeds: []message.VibrateSubcommand{{Index: 0, Speed: 0.5}}}
	if err := h.HandleVibrateCmd(context.Background(), impl, cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	impl.writes = nil
	if err := h.HandleVibrateCmd(context.Background(), impl, cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(impl.writes) != 0 {
		t.Fatalf("expected no writes for repeated command, got %v", impl.writes)
	}
}
