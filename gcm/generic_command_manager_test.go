package gcm

import "testing"

func u32(v uint32) *uint32 { return &v }

func TestUpdateVibrationQuantizesAndDiffs(t *testing.T) {
	g := New([]uint32{20, 20}, nil, 0)

	out, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.5}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0] == nil || *out[0] != 10 || out[1] != nil {
		t.Fatalf("got %v, want [10, nil]", dereference(out))
	}

	// Resending the identical command with sentAllOnce should produce no
	// writes at all.
	out, err = g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.5}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil (no writes) for repeated identical command, got %v", dereference(out))
	}
}

func TestUpdateVibrationTwoMotorScenario(t *testing.T) {
	// Mirrors spec.md 8.2: Lovehoney Desire, two motors, step_count 20.
	g := New([]uint32{20, 20}, nil, 0)

	out, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.5}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0] == nil || *out[0] != 10 || out[1] != nil {
		t.Fatalf("first command: got %v", dereference(out))
	}

	out, err = g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.5}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("repeated command should produce no writes, got %v", dereference(out))
	}

	out, err = g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.1}, {Index: 1, Speed: 0.1}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] == nil || *out[0] != 2 || out[1] == nil || *out[1] != 2 {
		t.Fatalf("both-motor command: got %v, want both set to 2", dereference(out))
	}

	out, err = g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.0}, {Index: 1, Speed: 0.5}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] == nil || *out[0] != 0 || out[1] == nil || *out[1] != 10 {
		t.Fatalf("split command: got %v, want [0, 10]", dereference(out))
	}
}

func TestUpdateVibrationValidation(t *testing.T) {
	g := New([]uint32{20}, nil, 0)

	if _, err := g.UpdateVibration([]VibrateSpeed{{Index: 5, Speed: 0.5}}, true); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if _, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 1.5}}, true); err == nil {
		t.Fatal("expected error for out-of-range speed")
	}
	if _, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.1}, {Index: 0, Speed: 0.2}}, true); err == nil {
		t.Fatal("expected error for duplicate index")
	}
}

func TestUpdateVibrationWithoutSentAllOnceAlwaysReturnsVector(t *testing.T) {
	g := New([]uint32{20}, nil, 0)
	if _, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.0}}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.0}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil {
		t.Fatal("expected a non-nil vector when sentAllOnce is false, even with no actual change")
	}
}

func TestUpdateRotationDiffsOnDirectionChange(t *testing.T) {
	g := New(nil, []uint32{20}, 0)

	out, err := g.UpdateRotation([]RotateSpeed{{Index: 0, Speed: 0.5, Clockwise: true}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] == nil || out[0].Speed != 10 || !out[0].Clockwise {
		t.Fatalf("got %+v", out[0])
	}

	// Same magnitude, opposite direction: still a change.
	out, err = g.UpdateRotation([]RotateSpeed{{Index: 0, Speed: 0.5, Clockwise: false}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] == nil || out[0].Clockwise {
		t.Fatal("direction flip should be reported as a change")
	}
}

func TestUpdateLinearDiffsOnPositionOrDuration(t *testing.T) {
	g := New(nil, nil, 1)

	out, err := g.UpdateLinear([]LinearMove{{Index: 0, Position: 0.5, Duration: 500}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] == nil {
		t.Fatal("expected a change on first command")
	}

	out, err = g.UpdateLinear([]LinearMove{{Index: 0, Position: 0.5, Duration: 500}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("identical repeated command should produce no writes, got %v", out)
	}
}

func TestGetStopCommandsResetsVibration(t *testing.T) {
	g := New([]uint32{20, 20}, nil, 0)
	if _, err := g.UpdateVibration([]VibrateSpeed{{Index: 0, Speed: 0.5}, {Index: 1, Speed: 0.5}}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop := g.GetStopCommands()
	if stop.Vibrate[0] == nil || *stop.Vibrate[0] != 0 || stop.Vibrate[1] == nil || *stop.Vibrate[1] != 0 {
		t.Fatalf("got %v, want both motors zeroed", dereference(stop.Vibrate))
	}

	// Stopping an already-stopped device should be a no-op.
	stop = g.GetStopCommands()
	if stop.Vibrate != nil {
		t.Fatalf("expected no writes stopping an already-stopped device, got %v", dereference(stop.Vibrate))
	}
}

func TestGetStopCommandsResetsRotationAndLinear(t *testing.T) {
	g := New([]uint32{20}, []uint32{20}, 1)
	if _, err := g.UpdateRotation([]RotateSpeed{{Index: 0, Speed: 0.5, Clockwise: true}}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.UpdateLinear([]LinearMove{{Index: 0, Position: 0.5, Duration: 500}}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop := g.GetStopCommands()
	if stop.Rotate[0] == nil || stop.Rotate[0].Speed != 0 || stop.Rotate[0].Clockwise {
		t.Fatalf("got %+v, want rotation zeroed", stop.Rotate[0])
	}
	if stop.Linear[0] == nil || stop.Linear[0].Position != 0 {
		t.Fatalf("got %+v, want linear position zeroed", stop.Linear[0])
	}
}

func dereference(vals []*uint32) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = nil
		} else {
			out[i] = *v
		}
	}
	return out
}
