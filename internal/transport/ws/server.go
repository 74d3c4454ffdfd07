package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim/world"
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/kernel/model"
)

type Server struct {
	world *world.World
	log   *log.Logger

	// cmdSchema, when set, rejects malformed CMD messages before they reach the world.
	cmdSchema *jsonschema.Schema

	upgrader websocket.Upgrader

	// live holds the session ids with an open connection.
	mu   sync.Mutex
	live map[string]struct{}
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		live:  map[string]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// LoadCmdSchema enables validation of inbound commands against a JSON schema file.
func (s *Server) LoadCmdSchema(path string) error {
	sch, err := jsonschema.Compile(path)
	if err != nil {
		return err
	}
	s.cmdSchema = sch
	return nil
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, out := s.handshake(conn)
		if sessionID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine. Protocol rejections share the world's out channel
		// so every write happens here.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			cmd, reject := s.decodeCmd(msg)
			if reject != nil {
				s.reject(out, *reject)
				continue
			}
			if cmd == nil {
				continue
			}
			select {
			case s.world.Inbox() <- world.CommandEnvelope{SessionID: sessionID, Cmd: *cmd}:
			case <-ctx.Done():
			}
		}

		// Cleanup.
		s.world.Leave() <- sessionID
		s.release(sessionID)
	}
}

// decodeCmd returns the command in msg, a rejection to send back, or neither
// for messages that are silently ignored.
func (s *Server) decodeCmd(msg []byte) (*protocol.CmdMsg, *protocol.ResultMsg) {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeCmd {
		return nil, nil
	}
	var cmd protocol.CmdMsg
	if err := json.Unmarshal(msg, &cmd); err != nil {
		return nil, s.protoReject("", "malformed CMD: "+err.Error())
	}
	if !protocol.Compatible(cmd.ProtocolVersion) {
		return nil, s.protoReject(cmd.ID, "unsupported protocol_version "+cmd.ProtocolVersion)
	}
	if s.cmdSchema != nil {
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, s.protoReject(cmd.ID, err.Error())
		}
		if err := s.cmdSchema.Validate(v); err != nil {
			return nil, s.protoReject(cmd.ID, err.Error())
		}
	}
	return &cmd, nil
}

func (s *Server) protoReject(cmdID, why string) *protocol.ResultMsg {
	m := s.world.Metrics()
	return &protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Tick:            m.Tick,
		CmdID:           cmdID,
		OK:              false,
		Code:            protocol.ErrProtoBadRequest,
		Status:          action.StatusInvalidParameters.String(),
		ErrorTitle:      string(action.StrCantDoThis),
		ErrorMessage:    why,
		Cost:            model.Money(0).String(),
		Cash:            model.Money(m.CashCents).String(),
	}
}

func (s *Server) reject(out chan []byte, res protocol.ResultMsg) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
		if s.log != nil {
			s.log.Printf("ws: dropped rejection for cmd %q", res.CmdID)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if !protocol.Compatible(hello.ProtocolVersion) {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out = make(chan []byte, maxQ)

	// A reconnecting client may present its previous session id, but only
	// once that session has no open connection.
	sessionID = ""
	if hello.Auth != nil {
		if id, err := uuid.Parse(strings.TrimSpace(hello.Auth.Token)); err == nil && s.claim(id.String()) {
			sessionID = id.String()
		}
	}
	for sessionID == "" {
		if id := uuid.NewString(); s.claim(id) {
			sessionID = id
		}
	}

	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{
		SessionID: sessionID,
		Name:      hello.ClientName,
		QueryOnly: hello.Capabilities.QueryOnly,
		Out:       out,
		Resp:      respCh,
	}
	resp := <-respCh
	if resp.Welcome.SessionID == "" {
		s.release(sessionID)
		return "", nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.world.Leave() <- sessionID
		s.release(sessionID)
		return "", nil
	}
	if s.log != nil {
		s.log.Printf("ws: session %s joined as %q query_only=%v", sessionID, hello.ClientName, hello.Capabilities.QueryOnly)
	}
	return sessionID, out
}

// claim reserves id for a new connection. It fails while another connection
// holds the id.
func (s *Server) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live[id]; ok {
		return false
	}
	s.live[id] = struct{}{}
	return true
}

func (s *Server) release(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
