package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/termlab/termlab/internal/infrastructure/logging"
	"github.com/termlab/termlab/internal/session"
	"github.com/termlab/termlab/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin enforcement happens at the CORS layer
	},
}

// Message is one inbound WebSocket frame.
type Message struct {
	Type   string `json:"type"`
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// Handler manages WebSocket terminal connections.
type Handler struct {
	sessions *session.Manager
	logger   *logging.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(sessions *session.Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// HandleConnection handles WebSocket upgrade and messages.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	reqCtx := c.Request.Context()

	h.send(conn, map[string]interface{}{
		"type":    "system",
		"message": "Connected to terminal stream",
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case "enter":
			h.handleEnter(conn, msg, reqCtx)
		case "input":
			h.handleInput(conn, msg, reqCtx)
		case "ping":
			h.send(conn, map[string]interface{}{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

func (h *Handler) handleEnter(conn *websocket.Conn, msg Message, reqCtx context.Context) {
	if msg.UserID == 0 {
		h.sendError(conn, "user_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(reqCtx, 30*time.Second)
	defer cancel()

	reply, err := h.sessions.Enter(ctx, msg.UserID)
	if err != nil {
		h.logger.Error("enter failed", zap.Int64("user_id", msg.UserID), zap.Error(err))
		h.sendError(conn, "Terminal error. Please try again.")
		return
	}

	h.sendReply(conn, reply)
}

func (h *Handler) handleInput(conn *websocket.Conn, msg Message, reqCtx context.Context) {
	if msg.UserID == 0 {
		h.sendError(conn, "user_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(reqCtx, 30*time.Second)
	defer cancel()

	reply, err := h.sessions.Handle(ctx, msg.UserID, msg.Text)
	if err != nil {
		h.logger.Error("input failed", zap.Int64("user_id", msg.UserID), zap.Error(err))
		h.sendError(conn, "Terminal error. Please try again.")
		return
	}

	h.sendReply(conn, reply)
}

func (h *Handler) sendReply(conn *websocket.Conn, reply types.Reply) {
	h.send(conn, map[string]interface{}{
		"type":      "reply",
		"reply":     reply,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	return conn.WriteJSON(data)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
