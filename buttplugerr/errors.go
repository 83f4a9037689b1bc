/*
Package buttplugerr contains the Buttplug server error taxonomy: the
kinds of failure a message can provoke, each carrying the wire error
code it maps to. This mirrors the Rust ButtplugError enum in the
original implementation, but as a handful of concrete error structs
rather than a derive-generated enum.
*/
package buttplugerr

import "fmt"

// Code is the wire-level error code a client sees in an Error message.
type Code int

const (
	CodeUnknown Code = iota
	CodeInit         // HandshakeError
	CodePing
	CodeMessage
	CodeDevice
)

func (c Code) String() string {
	switch c {
	case CodeInit:
		return "ERROR_INIT"
	case CodePing:
		return "ERROR_PING"
	case CodeMessage:
		return "ERROR_MSG"
	case CodeDevice:
		return "ERROR_DEVICE"
	default:
		return "ERROR_UNKNOWN"
	}
}

// Coder is implemented by every error in this package so callers can map
// any error to a wire Code without a type switch at every call site.
type Coder interface {
	error
	ErrorCode() Code
}

// MessageError signals invalid message contents, an unexpected message
// for the current context, or an impossible version conversion.
type MessageError struct {
	Msg string
}

func (e *MessageError) Error() string    { return e.Msg }
func (e *MessageError) ErrorCode() Code { return CodeMessage }

// NewMessageError formats a MessageError.
func NewMessageError(format string, args ...any) *MessageError {
	return &MessageError{Msg: fmt.Sprintf(format, args...)}
}

// VersionError reports that a canonical message has no representation in
// a requested wire spec version.
func VersionError(fromType, value, toType string) *MessageError {
	return NewMessageError("cannot convert %s (%s) to %s: no representation in that spec version", fromType, value, toType)
}

// UnexpectedMessageType reports that a message could not be classified
// into either the device-command or device-manager unions.
func UnexpectedMessageType(value string) *MessageError {
	return NewMessageError("unexpected message type: %s", value)
}

// DeviceErrorKind distinguishes the sub-cases of DeviceError.
type DeviceErrorKind int

const (
	DeviceNotAvailable DeviceErrorKind = iota
	DeviceNotConnected
	DeviceCommunicationError
	DeviceScanningAlreadyStarted
	DeviceScanningAlreadyStopped
)

// DeviceError signals a device-level failure: unknown index, not
// connected, a bus communication failure, or a scanning state conflict.
type DeviceError struct {
	Kind DeviceErrorKind
	Msg  string
}

func (e *DeviceError) Error() string    { return e.Msg }
func (e *DeviceError) ErrorCode() Code { return CodeDevice }

func newDeviceError(kind DeviceErrorKind, format string, args ...any) *DeviceError {
	return &DeviceError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewDeviceNotAvailable reports a device index unknown to the manager.
func NewDeviceNotAvailable(index uint32) *DeviceError {
	return newDeviceError(DeviceNotAvailable, "device %d is not available", index)
}

// NewDeviceNotConnected reports a device that exists but cannot accept
// commands right now (not in the Connected state).
func NewDeviceNotConnected(index uint32) *DeviceError {
	return newDeviceError(DeviceNotConnected, "device %d is not connected", index)
}

// NewDeviceCommunicationError wraps a bus-level write/read/subscribe
// failure.
func NewDeviceCommunicationError(err error) *DeviceError {
	return newDeviceError(DeviceCommunicationError, "device communication error: %v", err)
}

// ErrNoCommManagers reports that start/stop scanning was requested with
// no communication managers registered.
var ErrNoCommManagers = &UnknownError{Msg: "no device communication managers registered"}

// ErrScanningAlreadyStarted reports that at least one manager is already
// scanning.
var ErrScanningAlreadyStarted = &DeviceError{Kind: DeviceScanningAlreadyStarted, Msg: "scanning already in progress on a communication manager"}

// ErrScanningAlreadyStopped reports that no manager is currently scanning.
var ErrScanningAlreadyStopped = &DeviceError{Kind: DeviceScanningAlreadyStopped, Msg: "no communication manager is currently scanning"}

// UnknownError is the catch-all for invariant violations that should
// never happen in a correct server.
type UnknownError struct {
	Msg string
}

func (e *UnknownError) Error() string    { return e.Msg }
func (e *UnknownError) ErrorCode() Code { return CodeUnknown }

// PingError reports that the client missed its negotiated ping deadline.
type PingError struct {
	Msg string
}

func (e *PingError) Error() string    { return e.Msg }
func (e *PingError) ErrorCode() Code { return CodePing }

// ErrPingTimeout is emitted to the client, and logged, whenever the ping
// timer expires.
var ErrPingTimeout = &PingError{Msg: "ping timed out, no ping received within the negotiated interval"}

// HandshakeError reports an operation attempted before RequestServerInfo,
// or a spec version mismatch at handshake.
type HandshakeError struct {
	Msg string
}

func (e *HandshakeError) Error() string    { return e.Msg }
func (e *HandshakeError) ErrorCode() Code { return CodeInit }

// NewHandshakeError formats a HandshakeError.
func NewHandshakeError(format string, args ...any) *HandshakeError {
	return &HandshakeError{Msg: fmt.Sprintf(format, args...)}
}
