package message

import "github.com/nonpolynomial/buttplug-go/buttplugerr"

// ButtplugMessage is implemented by every message variant. It carries the
// plumbing the original implementation attaches via code generation: an
// id accessor and a validator. Go has no derive macros, so every
// concrete type gets these via an embedded id field plus its own
// IsValid. SetID is deliberately not part of this interface: every
// message value is addressable wherever its id actually gets set
// (a local variable before it's returned as the interface type), and
// keeping SetID off the interface lets every message type satisfy it
// by value instead of forcing pointer types throughout the package.
type ButtplugMessage interface {
	ID() uint32
	// IsValid runs the message's validation rules. The zero-value
	// default (no rules) is provided by embedding Unvalidated.
	IsValid() error
}

// IsServerEvent reports whether the id on m marks it as a server-emitted
// event rather than a reply to a specific client request.
func IsServerEvent(m ButtplugMessage) bool {
	return m.ID() == ServerEventID
}

// Unvalidated can be embedded by message types with no validation rules
// beyond the default "always valid".
type Unvalidated struct{}

// IsValid always succeeds.
func (Unvalidated) IsValid() error { return nil }

// id is embedded by every message struct to provide the Id field and the
// ID/SetID accessors.
type id struct {
	Id uint32 `json:"Id"`
}

// ID returns the message id.
func (m id) ID() uint32 { return m.Id }

// SetID sets the message id.
func (m *id) SetID(v uint32) { m.Id = v }

// requireSystemID returns an error unless id is 0. Used by messages that
// must only ever be sent by the server as events.
func requireSystemID(v uint32) error {
	if v != 0 {
		return buttplugerr.NewMessageError("message should have id 0, it is a system message")
	}
	return nil
}

// requireRequestID returns an error if id is 0. Used by client request
// messages, for which 0 is reserved.
func requireRequestID(v uint32) error {
	if v == 0 {
		return buttplugerr.NewMessageError("message should not have id 0, that is reserved for system messages")
	}
	return nil
}

// requireUnitInterval returns an error if v does not lie in [0.0, 1.0].
func requireUnitInterval(v float64, what string) error {
	if v < 0.0 || v > 1.0 {
		return buttplugerr.NewMessageError("%s must be in [0.0, 1.0], got %v", what, v)
	}
	return nil
}
