/*
Package protocols holds the per-hardware-model protocol handlers: the
translation from a validated generic command to the device-specific
byte frames written to the bus.
*/
package protocols

import (
	"context"

	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/gcm"
	"github.com/nonpolynomial/buttplug-go/message"
	"github.com/nonpolynomial/buttplug-go/observability"
)

// Generic is the default handler for a device whose message_attributes
// were derived purely from its advertised feature counts and step
// counts, with no bespoke framing. It writes one raw byte per changed
// feature, one feature per endpoint index: Tx for feature 0, and so on
// via a feature-to-endpoint map supplied at construction.
type Generic struct {
	device.BaseHandler
	gcm       *gcm.GenericCommandManager
	endpoints []device.Endpoint
}

// NewGeneric builds a Generic handler from the device's declared
// vibrate step counts, one bus endpoint per feature.
func NewGeneric(name string, attrs message.DeviceMessageAttributesMap, vibrateStepCounts []uint32, endpoints []device.Endpoint) *Generic {
	return &Generic{
		BaseHandler: device.BaseHandler{HandlerName: name, Attributes: attrs},
		gcm:         gcm.New(vibrateStepCounts, nil, 0),
		endpoints:   endpoints,
	}
}

// SetMetrics wires an optional GCM-suppression counter into the
// handler's command manager. A nil Metrics is the zero value.
func (g *Generic) SetMetrics(m *observability.Metrics) {
	g.gcm.Metrics = m
}

func (g *Generic) HandleVibrateCmd(ctx context.Context, impl device.Impl, cmd message.VibrateCmd) error {
	speeds := make([]gcm.VibrateSpeed, len(cmd.Speeds))
	for i, s := range cmd.Speeds {
		speeds[i] = gcm.VibrateSpeed{Index: s.Index, Speed: s.Speed}
	}
	diff, err := g.gcm.UpdateVibration(speeds, true)
	if err != nil {
		return err
	}
	for idx, v := range diff {
		if v == nil {
			continue
		}
		endpoint := device.Tx
		if idx < len(g.endpoints) {
			endpoint = g.endpoints[idx]
		}
		if err := impl.WriteValue(ctx, endpoint, []byte{byte(*v)}, false); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generic) HandleStopDeviceCmd(ctx context.Context, impl device.Impl) error {
	diff := g.gcm.GetStopCommands().Vibrate
	for idx, v := range diff {
		if v == nil {
			continue
		}
		endpoint := device.Tx
		if idx < len(g.endpoints) {
			endpoint = g.endpoints[idx]
		}
		if err := impl.WriteValue(ctx, endpoint, []byte{byte(*v)}, false); err != nil {
			return err
		}
	}
	return nil
}
