package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Converser produces a chat reply. It never fails; a fallback text is
// returned instead.
type Converser interface {
	Converse(ctx context.Context, message, chatContext string) string
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8 << 10
)

type Handler struct {
	conv     Converser
	hub      *Hub
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	// pongWait bounds how long a silent peer stays connected. Pings go
	// out at nine tenths of it.
	pongWait time.Duration
}

// NewHandler accepts websocket connections from allowedOrigins; "*" or an
// empty list allows any origin.
func NewHandler(conv Converser, hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		conv:   conv,
		hub:    hub,
		logger:   logger.With().Str("component", "chat_handler").Logger(),
		pongWait: pongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterRoutes mounts POST /chat on api and the relay at /ws/chat on root.
func RegisterRoutes(api, root gin.IRouter, h *Handler) {
	api.POST("/chat", h.Reply)
	root.GET("/ws/chat", h.Connect)
}

type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

type chatResponse struct {
	Reply     string  `json:"reply"`
	ReplyHTML string  `json:"replyHtml"`
	Message   Message `json:"message"`
}

func (h *Handler) Reply(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"message": "message is required",
		})
		return
	}

	reply := h.conv.Converse(c.Request.Context(), req.Message, req.Context)
	html, err := RenderMarkdown(reply)
	if err != nil {
		h.logger.Warn().Err(err).Msg("render reply markdown")
		html = ""
	}

	msg := NewMessage(SenderAI, reply)
	h.hub.Broadcast(msg, nil)

	c.JSON(http.StatusOK, chatResponse{Reply: reply, ReplyHTML: html, Message: msg})
}

// Connect upgrades to a websocket and relays every message the client
// sends to the other connected clients.
func (h *Handler) Connect(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(uuid.NewString())
	h.hub.Register(client)
	h.logger.Debug().Str("client_id", client.ID).Msg("chat client connected")

	go h.writeLoop(client, ws)
	h.readLoop(client, ws)
}

func (h *Handler) readLoop(client *Client, ws *websocket.Conn) {
	defer func() {
		h.hub.Unregister(client)
		ws.Close()
		h.logger.Debug().Str("client_id", client.ID).Msg("chat client disconnected")
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(h.pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if !msg.Sender.Valid() {
			msg.Sender = SenderUser
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.Timestamp == 0 {
			msg.Timestamp = time.Now().UnixMilli()
		}
		h.hub.Broadcast(msg, client)
	}
}

func (h *Handler) writeLoop(client *Client, ws *websocket.Conn) {
	ticker := time.NewTicker(h.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()
	for {
		select {
		case data, ok := <-client.Send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
