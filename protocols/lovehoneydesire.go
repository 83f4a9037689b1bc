package protocols

import (
	"context"
	"strings"

	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/gcm"
	"github.com/nonpolynomial/buttplug-go/message"
	"github.com/nonpolynomial/buttplug-go/observability"
)

// lovehoneyDesireStepCount is the resolution both motors accept
// commands at.
const lovehoneyDesireStepCount = 20

// LovehoneyDesire drives the Lovehoney Desire's two vibration motors.
// The device has two command forms: a "set both motors" frame when
// both values agree, and one "set motor N" frame per differing motor.
type LovehoneyDesire struct {
	device.BaseHandler
	gcm *gcm.GenericCommandManager
}

// NewLovehoneyDesire builds the handler for a Lovehoney Desire-family
// device: two vibrating motors, both at step count 20.
func NewLovehoneyDesire(name string) *LovehoneyDesire {
	stepCounts := []uint32{lovehoneyDesireStepCount, lovehoneyDesireStepCount}
	return &LovehoneyDesire{
		BaseHandler: device.BaseHandler{
			HandlerName: name,
			Attributes: message.DeviceMessageAttributesMap{
				message.VibrateCmdType: {
					FeatureCount: u32Ptr(2),
					StepCount:    []uint32{lovehoneyDesireStepCount, lovehoneyDesireStepCount},
				},
			},
		},
		gcm: gcm.New(stepCounts, nil, 0),
	}
}

func u32Ptr(v uint32) *uint32 { return &v }

// SetMetrics wires an optional GCM-suppression counter into the
// handler's command manager. A nil Metrics is the zero value.
func (h *LovehoneyDesire) SetMetrics(m *observability.Metrics) {
	h.gcm.Metrics = m
}

// NewLovehoneyDesireCreator returns a device.Creator that recognizes any
// advertised peripheral whose name starts with "Lovehoney Desire",
// matching the advertised-name family this hardware line ships under.
// metrics, if non-nil, is wired into every handler the creator builds.
func NewLovehoneyDesireCreator(metrics *observability.Metrics) device.Creator {
	return device.CreatorFunc(func(candidate device.CandidateDevice) (device.Handler, bool) {
		if !strings.HasPrefix(candidate.Name, "Lovehoney Desire") {
			return nil, false
		}
		h := NewLovehoneyDesire(candidate.Name)
		h.SetMetrics(metrics)
		return h, true
	})
}

func (h *LovehoneyDesire) HandleVibrateCmd(ctx context.Context, impl device.Impl, cmd message.VibrateCmd) error {
	speeds := make([]gcm.VibrateSpeed, len(cmd.Speeds))
	for i, s := range cmd.Speeds {
		speeds[i] = gcm.VibrateSpeed{Index: s.Index, Speed: s.Speed}
	}
	diff, err := h.gcm.UpdateVibration(speeds, false)
	if err != nil {
		return err
	}
	return writeLovehoneyDesireFrames(ctx, impl, diff)
}

func (h *LovehoneyDesire) HandleStopDeviceCmd(ctx context.Context, impl device.Impl) error {
	diff := h.gcm.GetStopCommands().Vibrate
	return writeLovehoneyDesireFrames(ctx, impl, diff)
}

// writeLovehoneyDesireFrames implements the device's combine-or-split
// framing: [0xF3, 0, value] if both motors changed to the same value,
// otherwise [0xF3, N, value] (1-based N) per changed motor.
func writeLovehoneyDesireFrames(ctx context.Context, impl device.Impl, diff []*uint32) error {
	if len(diff) == 0 {
		return nil
	}
	bothSet := diff[0] != nil
	allEqual := bothSet
	for _, v := range diff[1:] {
		if v == nil || *v != *diff[0] {
			allEqual = false
			break
		}
	}
	if bothSet && allEqual {
		return impl.WriteValue(ctx, device.Tx, []byte{0xF3, 0, byte(*diff[0])}, false)
	}
	for i, v := range diff {
		if v == nil {
			continue
		}
		if err := impl.WriteValue(ctx, device.Tx, []byte{0xF3, byte(i + 1), byte(*v)}, false); err != nil {
			return err
		}
	}
	return nil
}
