/*
Package gcm implements the Generic Command Manager: the per-device
commanded-state cache that diffs incoming vibrate/rotate/linear commands
against the last value actually sent to the device, so a protocol
handler only writes to the bus when a feature's quantized value
actually changes.
*/
package gcm

import (
	"sync"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/observability"
)

// entry is one feature's cached commanded state. Value is meaningless
// unless Set is true: a feature starts "unset", distinct from a
// commanded value of zero.
type entry struct {
	Set   bool
	Value uint32
}

// RotationValue is a quantized rotation command: a magnitude plus
// direction, since rotation diffs on both.
type RotationValue struct {
	Speed     uint32
	Clockwise bool
}

type rotationEntry struct {
	Set   bool
	Value RotationValue
}

// LinearValue is a quantized linear command: a target position plus the
// duration over which to reach it. Duration is passed through
// unquantized (it has no step_count) but still participates in the
// diff, since re-sending an identical position with a different
// duration is a real state change.
type LinearValue struct {
	Position uint32
	Duration uint32
}

type linearEntry struct {
	Set   bool
	Value LinearValue
}

// GenericCommandManager caches the last commanded value per feature for
// one device, across all three generic command classes. Zero value is
// not usable; construct with New.
type GenericCommandManager struct {
	mu sync.Mutex

	vibrateStepCounts []uint32
	vibrateState      []entry

	rotateStepCounts []uint32
	rotateState      []rotationEntry

	linearState []linearEntry

	// Metrics, if set, is incremented once per feature whose commanded
	// value was suppressed (the addressed value matched cached state, so
	// no bus write was needed). Left unset by New; a caller that wants
	// instrumentation sets it directly after construction.
	Metrics *observability.Metrics
}

// New builds a manager for a device with the given per-feature step
// counts for vibration and rotation, and the given number of linear
// actuators (which have no step count to quantize against).
func New(vibrateStepCounts, rotateStepCounts []uint32, linearFeatureCount int) *GenericCommandManager {
	return &GenericCommandManager{
		vibrateStepCounts: vibrateStepCounts,
		vibrateState:      make([]entry, len(vibrateStepCounts)),
		rotateStepCounts:  rotateStepCounts,
		rotateState:       make([]rotationEntry, len(rotateStepCounts)),
		linearState:       make([]linearEntry, linearFeatureCount),
	}
}

// VibrateSpeed is one addressed feature's commanded speed, in [0.0, 1.0].
type VibrateSpeed struct {
	Index uint32
	Speed float64
}

// UpdateVibration validates, quantizes, and diffs a vibration command
// against the cached state. The returned slice has one entry per
// feature on the device (not just the addressed ones); entries for
// unaddressed or unchanged features are nil. If every entry is nil and
// sentAllOnce is true, it returns (nil, nil): the caller should send no
// writes at all.
func (g *GenericCommandManager) UpdateVibration(speeds []VibrateSpeed, sentAllOnce bool) ([]*uint32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	featureCount := len(g.vibrateStepCounts)
	seen := make(map[uint32]bool, len(speeds))
	quantized := make(map[uint32]uint32, len(speeds))
	for _, s := range speeds {
		if s.Index >= uint32(featureCount) {
			return nil, buttplugerr.NewMessageError("vibrate index %d out of range for %d features", s.Index, featureCount)
		}
		if s.Speed < 0.0 || s.Speed > 1.0 {
			return nil, buttplugerr.NewMessageError("vibrate speed %v out of range [0.0, 1.0]", s.Speed)
		}
		if seen[s.Index] {
			return nil, buttplugerr.NewMessageError("vibrate command duplicates feature index %d", s.Index)
		}
		seen[s.Index] = true
		quantized[s.Index] = quantize(s.Speed, g.vibrateStepCounts[s.Index])
	}

	out := make([]*uint32, featureCount)
	anyChanged := false
	for idx, q := range quantized {
		cur := g.vibrateState[idx]
		if cur.Set && cur.Value == q {
			g.Metrics.RecordGCMSuppressed(1)
			continue
		}
		v := q
		out[idx] = &v
		g.vibrateState[idx] = entry{Set: true, Value: q}
		anyChanged = true
	}

	if !anyChanged && sentAllOnce {
		return nil, nil
	}
	return out, nil
}

// RotateSpeed is one addressed feature's commanded rotation.
type RotateSpeed struct {
	Index     uint32
	Speed     float64
	Clockwise bool
}

// UpdateRotation is the rotation analogue of UpdateVibration: a feature
// changes if either its quantized magnitude or its direction changes.
func (g *GenericCommandManager) UpdateRotation(rotations []RotateSpeed, sentAllOnce bool) ([]*RotationValue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	featureCount := len(g.rotateStepCounts)
	seen := make(map[uint32]bool, len(rotations))
	quantized := make(map[uint32]RotationValue, len(rotations))
	for _, r := range rotations {
		if r.Index >= uint32(featureCount) {
			return nil, buttplugerr.NewMessageError("rotate index %d out of range for %d features", r.Index, featureCount)
		}
		if r.Speed < 0.0 || r.Speed > 1.0 {
			return nil, buttplugerr.NewMessageError("rotate speed %v out of range [0.0, 1.0]", r.Speed)
		}
		if seen[r.Index] {
			return nil, buttplugerr.NewMessageError("rotate command duplicates feature index %d", r.Index)
		}
		seen[r.Index] = true
		quantized[r.Index] = RotationValue{Speed: quantize(r.Speed, g.rotateStepCounts[r.Index]), Clockwise: r.Clockwise}
	}

	out := make([]*RotationValue, featureCount)
	anyChanged := false
	for idx, q := range quantized {
		cur := g.rotateState[idx]
		if cur.Set && cur.Value == q {
			g.Metrics.RecordGCMSuppressed(1)
			continue
		}
		v := q
		out[idx] = &v
		g.rotateState[idx] = rotationEntry{Set: true, Value: q}
		anyChanged = true
	}

	if !anyChanged && sentAllOnce {
		return nil, nil
	}
	return out, nil
}

// LinearMove is one addressed actuator's commanded move.
type LinearMove struct {
	Index    uint32
	Position float64
	Duration uint32
}

// UpdateLinear is the linear analogue of UpdateVibration. Linear
// actuators have no step_count in this protocol: Position quantizes
// against a fixed range of 100 steps (0-100).
func (g *GenericCommandManager) UpdateLinear(moves []LinearMove, sentAllOnce bool) ([]*LinearValue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	featureCount := len(g.linearState)
	seen := make(map[uint32]bool, len(moves))
	quantized := make(map[uint32]LinearValue, len(moves))
	for _, m := range moves {
		if m.Index >= uint32(featureCount) {
			return nil, buttplugerr.NewMessageError("linear index %d out of range for %d features", m.Index, featureCount)
		}
		if m.Position < 0.0 || m.Position > 1.0 {
			return nil, buttplugerr.NewMessageError("linear position %v out of range [0.0, 1.0]", m.Position)
		}
		if seen[m.Index] {
			return nil, buttplugerr.NewMessageError("linear command duplicates feature index %d", m.Index)
		}
		seen[m.Index] = true
		quantized[m.Index] = LinearValue{Position: quantize(m.Position, 100), Duration: m.Duration}
	}

	out := make([]*LinearValue, featureCount)
	anyChanged := false
	for idx, q := range quantized {
		cur := g.linearState[idx]
		if cur.Set && cur.Value == q {
			g.Metrics.RecordGCMSuppressed(1)
			continue
		}
		v := q
		out[idx] = &v
		g.linearState[idx] = linearEntry{Set: true, Value: q}
		anyChanged = true
	}

	if !anyChanged && sentAllOnce {
		return nil, nil
	}
	return out, nil
}

// StopCommands is the diff returned by GetStopCommands: one slice per
// generic command class, each shaped the same as that class's Update*
// diff (nil entries for features that were already at rest).
type StopCommands struct {
	Vibrate []*uint32
	Rotate  []*RotationValue
	Linear  []*LinearValue
}

// GetStopCommands returns the diff that resets every feature class —
// vibration, rotation, and linear position — to zero, for
// StopDeviceCmd and server shutdown. Rotation zeroes speed with an
// arbitrary (false) direction, since a stopped motor has no direction;
// linear actuators are commanded to position 0 with zero duration.
func (g *GenericCommandManager) GetStopCommands() StopCommands {
	speeds := make([]VibrateSpeed, len(g.vibrateStepCounts))
	for i := range speeds {
		speeds[i] = VibrateSpeed{Index: uint32(i), Speed: 0.0}
	}
	vibrate, err := g.UpdateVibration(speeds, true)
	if err != nil {
		// Stop commands are always in-range by construction.
		panic(err)
	}

	rotations := make([]RotateSpeed, len(g.rotateStepCounts))
	for i := range rotations {
		rotations[i] = RotateSpeed{Index: uint32(i), Speed: 0.0, Clockwise: false}
	}
	rotate, err := g.UpdateRotation(rotations, true)
	if err != nil {
		panic(err)
	}

	moves := make([]LinearMove, len(g.linearState))
	for i := range moves {
		moves[i] = LinearMove{Index: uint32(i), Position: 0.0, Duration: 0}
	}
	linear, err := g.UpdateLinear(moves, true)
	if err != nil {
		panic(err)
	}

	return StopCommands{Vibrate: vibrate, Rotate: rotate, Linear: linear}
}

// quantize maps a [0.0, 1.0] float to an integer step in [0, stepCount],
// rounding to nearest. A stepCount of 0 means the feature accepts no
// commands at all and always quantizes to 0.
func quantize(v float64, stepCount uint32) uint32 {
	if stepCount == 0 {
		return 0
	}
	return uint32(v*float64(stepCount) + 0.5)
}
