package device

import (
	"context"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/message"
)

// Handler is the protocol translation layer for one supported hardware
// model: it turns a validated generic command into bus writes on a
// specific Impl. Each method defaults (via BaseHandler) to reporting
// the message as unsupported; concrete handlers embed BaseHandler and
// override only the commands their hardware understands.
type Handler interface {
	Name() string
	MessageAttributes() message.DeviceMessageAttributesMap

	HandleVibrateCmd(ctx context.Context, impl Impl, cmd message.VibrateCmd) error
	HandleRotateCmd(ctx context.Context, impl Impl, cmd message.RotateCmd) error
	HandleLinearCmd(ctx context.Context, impl Impl, cmd message.LinearCmd) error
	HandleStopDeviceCmd(ctx context.Context, impl Impl) error

	HandleRawWriteCmd(ctx context.Context, impl Impl, cmd message.RawWriteCmd) error
	HandleRawReadCmd(ctx context.Context, impl Impl, cmd message.RawReadCmd) (message.RawReading, error)
	HandleRawSubscribeCmd(ctx context.Context, impl Impl, cmd message.RawSubscribeCmd) error
	HandleRawUnsubscribeCmd(ctx context.Context, impl Impl, cmd message.RawUnsubscribeCmd) error

	HandleBatteryLevelCmd(ctx context.Context, impl Impl) (float64, error)
	HandleRSSILevelCmd(ctx context.Context, impl Impl) (int32, error)
}

// unsupported is returned by BaseHandler's default method bodies.
func unsupported(name, what string) error {
	return buttplugerr.NewMessageError("%s does not support %s", name, what)
}

// BaseHandler gives every concrete Handler a "not supported" default
// for each command, so a protocol only needs to implement the commands
// its hardware actually accepts.
type BaseHandler struct {
	HandlerName string
	Attributes  message.DeviceMessageAttributesMap
}

func (b BaseHandler) Name() string { return b.HandlerName }

func (b BaseHandler) MessageAttributes() message.DeviceMessageAttributesMap { return b.Attributes }

func (b BaseHandler) HandleVibrateCmd(context.Context, Impl, message.VibrateCmd) error {
	return unsupported(b.HandlerName, "VibrateCmd")
}

func (b BaseHandler) HandleRotateCmd(context.Context, Impl, message.RotateCmd) error {
	return unsupported(b.HandlerName, "RotateCmd")
}

func (b BaseHandler) HandleLinearCmd(context.Context, Impl, message.LinearCmd) error {
	return unsupported(b.HandlerName, "LinearCmd")
}

func (b BaseHandler) HandleStopDeviceCmd(context.Context, Impl) error {
	return unsupported(b.HandlerName, "StopDeviceCmd")
}

func (b BaseHandler) HandleRawWriteCmd(context.Context, Impl, message.RawWriteCmd) error {
	return unsupported(b.HandlerName, "RawWriteCmd")
}

func (b BaseHandler) HandleRawReadCmd(context.Context, Impl, message.RawReadCmd) (message.RawReading, error) {
	return message.RawReading{}, unsupported(b.HandlerName, "RawReadCmd")
}

func (b BaseHandler) HandleRawSubscribeCmd(context.Context, Impl, message.RawSubscribeCmd) error {
	return unsupported(b.HandlerName, "RawSubscribeCmd")
}

func (b BaseHandler) HandleRawUnsubscribeCmd(context.Context, Impl, message.RawUnsubscribeCmd) error {
	return unsupported(b.HandlerName, "RawUnsubscribeCmd")
}

func (b BaseHandler) HandleBatteryLevelCmd(context.Context, Impl) (float64, error) {
	return 0, unsupported(b.HandlerName, "BatteryLevelCmd")
}

func (b BaseHandler) HandleRSSILevelCmd(context.Context, Impl) (int32, error) {
	return 0, unsupported(b.HandlerName, "RSSILevelCmd")
}

// CandidateDevice is what a Creator inspects to decide whether it
// recognizes a piece of hardware: the information available before any
// protocol has been chosen.
type CandidateDevice struct {
	Name      string
	Services  []string
	CompanyID uint16
}

// Creator inspects a CandidateDevice and either builds a Handler for it
// or declines by returning (nil, false).
type Creator interface {
	TryCreate(candidate CandidateDevice) (Handler, bool)
}

// CreatorFunc adapts a plain function to Creator.
type CreatorFunc func(candidate CandidateDevice) (Handler, bool)

func (f CreatorFunc) TryCreate(candidate CandidateDevice) (Handler, bool) { return f(candidate) }

// Registry holds Creators in registration order and tries them in that
// order, first acceptance wins, matching the original ButtplugProtocolCreator
// semantics. Entries are also named, so a protocol can be added once
// and later removed by name.
type Registry struct {
	names    []string
	creators []Creator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends c to the end of the try order with no name; it can
// only be removed via RemoveAll. Used for anonymous/adapter creators
// that aren't individually addressable protocols.
func (r *Registry) Register(c Creator) {
	r.names = append(r.names, "")
	r.creators = append(r.creators, c)
}

// Has reports whether a protocol named name is currently registered.
func (r *Registry) Has(name string) bool {
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

// Add registers c under name, appended to the end of the try order.
// Reports false if name is already registered.
func (r *Registry) Add(name string, c Creator) bool {
	if r.Has(name) {
		return false
	}
	r.names = append(r.names, name)
	r.creators = append(r.creators, c)
	return true
}

// Remove unregisters the protocol named name. Reports false if it
// wasn't registered.
func (r *Registry) Remove(name string) bool {
	for i, n := range r.names {
		if n == name && name != "" {
			r.names = append(r.names[:i], r.names[i+1:]...)
			r.creators = append(r.creators[:i], r.creators[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll clears every registered protocol.
func (r *Registry) RemoveAll() {
	r.names = nil
	r.creators = nil
}

// Create tries every registered Creator in order and returns the first
// Handler produced, or (nil, false) if none recognized the device.
func (r *Registry) Create(candidate CandidateDevice) (Handler, bool) {
	for _, c := range r.creators {
		if h, ok := c.TryCreate(candidate); ok {
			return h, true
		}
	}
	return nil, false
}
