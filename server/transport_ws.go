package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nonpolynomial/buttplug-go/buttplugerr"
	"github.com/nonpolynomial/buttplug-go/message"
)

// writeBufferSize bounds how many outbound frames can queue for a slow
// client before WSHandler starts dropping frames, mirroring the
// client-side Sender's bufferSize.
const writeBufferSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler serves one Buttplug session per websocket connection. Each
// accepted connection gets its own Session (and so its own
// DeviceManager); Config is shared across connections and used to seed
// every new session identically.
type WSHandler struct {
	Config     Config
	Serializer Serializer
	// OnSession, if set, is called with the new session right after
	// the connection is accepted, so a caller can
	// register communication managers (BLE, etc.) before traffic
	// starts flowing.
	OnSession func(s *Session)
}

// NewWSHandler returns a handler using DefaultSerializer.
func NewWSHandler(cfg Config) *WSHandler {
	return &WSHandler{Config: cfg, Serializer: DefaultSerializer{}}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade failed: %v", err)
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := NewSession(ctx, h.Config, writeBufferSize)
	log.Printf("server: %s connected from %s", session.ID(), r.RemoteAddr)
	defer log.Printf("server: %s disconnected", session.ID())
	if h.OnSession != nil {
		h.OnSession(session)
	}

	out := make(chan message.ServerMessage, writeBufferSize)
	go forwardOutbound(ctx, session, out)
	go writeLoop(ctx, conn, out)
	readLoop(ctx, conn, h.Serializer, session, out)

	cancel()
	_ = conn.Close()
}

// forwardOutbound relays every asynchronous event the session's device
// manager produces onto out, which writeLoop drains to the socket. This
// is the server-side analogue of the client's hub broadcasting incoming
// messages to subscribed Readers: here there is exactly one reader per
// connection, so no fan-out bookkeeping is needed. It exits when ctx is
// canceled, since the device manager's Outbound channel is never closed.
func forwardOutbound(ctx context.Context, s *Session, out chan<- message.ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.Outbound():
			projected, err := s.ProjectOutbound(msg)
			if err != nil {
				log.Printf("server: dropping event with no representation in negotiated spec version: %v", err)
				continue
			}
			select {
			case out <- projected:
			default:
				log.Printf("server: outbound buffer full, dropping event %T", msg)
			}
		}
	}
}

// writeLoop drains buffered outbound replies/events and writes them to
// the websocket, one JSON array entry per message the way the published
// spec batches frames. Mirrors message.Sender.writeLoop from the client,
// exiting on ctx cancellation instead of a closed channel since out is
// shared with forwardOutbound and never closed.
func writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan message.ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-out:
			data, err := DefaultSerializer{}.Serialize(msg)
			if err != nil {
				log.Printf("server: error serializing outbound message: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if err == websocket.ErrCloseSent {
					return
				}
				log.Printf("server: error writing to websocket: %v", err)
				return
			}
		}
	}
}

// readLoop reads client frames until the connection closes, dispatching
// each parsed message to the session and writing its reply (if any)
// straight back onto out.
func readLoop(ctx context.Context, conn *websocket.Conn, ser Serializer, s *Session, out chan<- message.ServerMessage) {
	for {
		messageType, r, err := conn.NextReader()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			log.Println("server: ignoring non-text websocket frame")
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			log.Printf("server: error reading websocket frame: %v", err)
			return
		}
		msgs, err := ser.Deserialize(data)
		if err != nil {
			log.Printf("server: %v", err)
			continue
		}
		for _, msg := range msgs {
			handleOne(ctx, s, msg, out)
		}
	}
}

func handleOne(ctx context.Context, s *Session, msg message.ClientMessage, out chan<- message.ServerMessage) {
	deadline, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	reply, err := s.HandleMessage(deadline, msg)
	if err != nil {
		reply = errorReply(msg, err)
	}
	if reply == nil {
		return
	}
	select {
	case out <- reply:
	default:
		log.Printf("server: outbound buffer full, dropping reply to %T", msg)
	}
}

func errorReply(req message.ClientMessage, err error) message.ServerMessage {
	code := buttplugerr.CodeUnknown
	if coder, ok := err.(buttplugerr.Coder); ok {
		code = coder.ErrorCode()
	}
	errMsg := message.Error{ErrorMessage: err.Error(), ErrorCode: int(code)}
	errMsg.SetID(req.ID())
	return errMsg
}
