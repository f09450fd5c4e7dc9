package api

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/youngcruel/blog-multiutente/modules/notify"
)

const (
	// wsUserLocal holds the user id a socket was authenticated as.
	wsUserLocal = "ws_user"
	writeWait   = 10 * time.Second
)

var (
	errMissingUserID = errors.New("a user id is required")
	errForeignRoom   = errors.New("cannot join another user's notifications")
)

// wsSink writes registry frames to a websocket. Only the registry's writer
// goroutine for the connection calls Send.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(frame []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// clientFrame is a client to server message, e.g.
// {"type":"join","payload":"<userId>"}.
type clientFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// socketSession handles the frames of one connection.
type socketSession struct {
	registry  *notify.Registry
	id        notify.ConnectionID
	boundUser string
}

func newSocketSession(registry *notify.Registry, sink notify.Sink, boundUser string) *socketSession {
	return &socketSession{
		registry:  registry,
		id:        registry.Connect(sink),
		boundUser: boundUser,
	}
}

func (s *socketSession) handle(raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.sendError("Invalid message format")
		return
	}

	switch frame.Type {
	case notify.FrameJoin:
		userID, err := s.roomFor(frame.Payload)
		if err != nil {
			s.sendError(err.Error())
			return
		}
		s.registry.Join(s.id, userID)
		s.send(notify.Frame{Type: notify.FrameJoined, Payload: userID})
	case notify.FrameLeave:
		userID, err := s.roomFor(frame.Payload)
		if err != nil {
			s.sendError(err.Error())
			return
		}
		s.registry.Leave(s.id, userID)
		s.send(notify.Frame{Type: notify.FrameLeft, Payload: userID})
	default:
		s.sendError("Unknown message type: " + frame.Type)
	}
}

// roomFor resolves the user room named by a join or leave payload. A socket
// authenticated with a token may only use its own room and may omit the id.
func (s *socketSession) roomFor(payload json.RawMessage) (string, error) {
	var userID string
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &userID); err != nil {
			return "", errMissingUserID
		}
	}
	userID = strings.TrimSpace(userID)

	if s.boundUser != "" {
		if userID == "" {
			return s.boundUser, nil
		}
		if userID != s.boundUser {
			return "", errForeignRoom
		}
	}
	if userID == "" {
		return "", errMissingUserID
	}
	return userID, nil
}

func (s *socketSession) send(frame notify.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[api] Failed to encode %s frame: %v", frame.Type, err)
		return
	}
	s.registry.Send(s.id, data)
}

func (s *socketSession) sendError(message string) {
	s.send(notify.Frame{Type: notify.FrameError, Error: message})
}

func (s *socketSession) close() {
	s.registry.Disconnect(s.id)
}

// websocketGuard rejects non-upgrade requests and authenticates the socket
// from the token query parameter.
func (m *APIModule) websocketGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			if m.config.RequireWSAuth {
				return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
					Error:   "unauthorized",
					Message: "token query parameter is required",
				})
			}
			return c.Next()
		}

		claims, err := m.authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}
		c.Locals(wsUserLocal, claims.UserID)
		return c.Next()
	}
}

// handleWebSocket serves one notification socket until it closes.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	boundUser, _ := c.Locals(wsUserLocal).(string)
	session := newSocketSession(m.registry, &wsSink{conn: c}, boundUser)
	defer func() {
		session.close()
		log.Printf("[api] WebSocket client disconnected: %s", session.id)
	}()

	log.Printf("[api] WebSocket client connected: %s", session.id)

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", session.id)
			} else {
				log.Printf("[api] Read error from %s: %v", session.id, err)
			}
			return
		}
		session.handle(msg)
	}
}
