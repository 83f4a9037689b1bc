/*
Package server implements the Buttplug server session: the handshake
and ping gating that sits in front of a devicemanager.DeviceManager for
one client connection, and the JSON/websocket transport that carries
messages to and from it.
*/
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/device"
	"github.com/nonpolynomial/buttplug-go/devicemanager"
	"github.com/nonpolynomial/buttplug-go/message"
	"github.com/nonpolynomial/buttplug-go/observability"
)

// Name and the Major/Minor/BuildVersion numbers identify this server
// implementation; DefaultMaxPing is the ping interval used when none is
// configured.
const (
	Name           = "buttplug-go"
	MajorVersion   = 0
	MinorVersion   = 1
	BuildVersion   = 0
	DefaultMaxPing = 1000 * time.Millisecond
)

// Config bounds one server session.
type Config struct {
	// MaxPingTime is the client's negotiated ping interval. Zero
	// disables the ping timeout entirely (useful for tests and
	// clients that never intend to ping).
	MaxPingTime time.Duration
	// Protocols seeds the device manager's protocol registry. If nil,
	// a session starts with no protocols registered and relies on
	// AddProtocol being called before any device can be recognized.
	Protocols map[string]device.Creator
	// Metrics instruments the session and its device manager. A nil
	// Metrics is the zero value and simply instruments nothing.
	Metrics *observability.Metrics
}

// Session is one client's handshake/ping/device-manager state, from
// connection to disconnection. It is not safe for concurrent use by
// more than one reader goroutine; HandleMessage serializes naturally
// because a websocket connection delivers one frame at a time.
type Session struct {
	cfg Config

	// id identifies this session in logs and trace spans; it has no
	// protocol meaning and is never sent to the client.
	id string

	manager  *devicemanager.DeviceManager
	outbound chan message.ServerMessage
	pingTime time.Duration

	shookHands bool
	specVer    message.SpecVersion
}

// ID returns the session's internal identifier, for correlating log
// lines and trace spans across one connection's lifetime.
func (s *Session) ID() string { return s.id }

// NewSession starts a Session. outboundBuffer sizes the channel
// Outbound returns; a full channel drops further events rather than
// blocking the device manager's event loop (see devicemanager.eventLoop.emit).
func NewSession(ctx context.Context, cfg Config, outboundBuffer int) *Session {
	if outboundBuffer <= 0 {
		outboundBuffer = 256
	}
	outbound := make(chan message.ServerMessage, outboundBuffer)
	pingTimer := devicemanager.NewPingTimer(ctx, cfg.MaxPingTime)
	manager := devicemanager.New(ctx, outbound, pingTimer, devicemanager.WithMetrics(cfg.Metrics))
	for name, creator := range cfg.Protocols {
		if err := manager.AddProtocol(name, creator); err != nil {
			log.Printf("server: registering protocol %q: %v", name, err)
		}
	}
	return &Session{
		cfg:      cfg,
		id:       "sess_" + uuid.New().String()[:16],
		manager:  manager,
		outbound: outbound,
		specVer:  message.CurrentSpecVersion,
	}
}

// Manager returns the device manager backing this session, so a
// transport can wire in communication managers before traffic starts.
func (s *Session) Manager() *devicemanager.DeviceManager { return s.manager }

// Outbound is the channel of server-originated events, in their
// canonical (current spec version) form; replies are returned by
// HandleMessage instead. A transport should drain this for the lifetime
// of the connection and pass each message through ProjectOutbound.
func (s *Session) Outbound() <-chan message.ServerMessage { return s.outbound }

// HandleMessage processes one client message and returns the reply, if
// any, to send back immediately. Events raised asynchronously by the
// device manager (DeviceAdded, ScanningFinished, ping timeout errors)
// arrive separately on Outbound and are not returned here.
func (s *Session) HandleMessage(ctx context.Context, msg message.ClientMessage) (reply message.ServerMessage, err error) {
	typeName := fmt.Sprintf("%T", msg)
	ctx, span := observability.StartSpan(ctx, "server.handle_message",
		attribute.String("buttplug.message_type", typeName),
		attribute.String("buttplug.session_id", s.id),
	)
	defer func() {
		observability.EndSpan(span, err)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.cfg.Metrics.RecordMessage(typeName, outcome)
	}()

	if err = msg.IsValid(); err != nil {
		return nil, err
	}

	if req, ok := msg.(message.RequestServerInfo); ok {
		reply, err = s.handshake(req)
		return reply, err
	}
	if !s.shookHands {
		err = buttplugerr.NewHandshakeError("RequestServerInfo must be the first message")
		return nil, err
	}

	if ping, ok := msg.(message.Ping); ok {
		s.manager.Ping()
		reply, err = s.project(message.NewOk(ping.ID()))
		return reply, err
	}

	if test, ok := msg.(message.Test); ok {
		if test.TestString == "Error" {
			err = buttplugerr.NewMessageError("Test message requested an error")
			return nil, err
		}
		reply, err = s.project(test)
		return reply, err
	}

	var managerReply message.ServerMessage
	managerReply, err = s.manager.ParseMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	reply, err = s.project(managerReply)
	return reply, err
}

func (s *Session) handshake(req message.RequestServerInfo) (message.ServerMessage, error) {
	negotiated, err := negotiateVersion(req.MessageVersion)
	if err != nil {
		return nil, err
	}
	s.specVer = negotiated
	s.shookHands = true

	info := message.ServerInfo{
		ServerName:     Name,
		MessageVersion: uint32(message.CurrentSpecVersion),
		MaxPingTime:    uint32(s.cfg.MaxPingTime / time.Millisecond),
	}
	info.SetID(req.ID())
	return s.project(info)
}

// negotiateVersion maps a client-requested wire version to the
// SpecVersion this server speaks for the remainder of the session.
// Requests above the current spec version are rejected rather than
// silently clamped, matching the original RequestServerInfo handshake
// failure mode for an unknown future version.
func negotiateVersion(requested uint32) (message.SpecVersion, error) {
	switch {
	case requested > uint32(message.CurrentSpecVersion):
		return 0, buttplugerr.NewHandshakeError("unsupported message version %d", requested)
	default:
		return message.SpecVersion(requested), nil
	}
}

// project downcasts msg to the session's negotiated spec version
// before it reaches the wire.
func (s *Session) project(msg message.ServerMessage) (message.ServerMessage, error) {
	return message.ToSpecVersion(msg, s.specVer)
}

// ProjectOutbound applies the session's negotiated spec version to an
// asynchronous event read off Outbound, which carries canonical
// messages only.
func (s *Session) ProjectOutbound(msg message.ServerMessage) (message.ServerMessage, error) {
	return s.project(msg)
}
