package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	httpapi "github.com/retrodesk/desktopd/internal/api/http"
	"github.com/retrodesk/desktopd/internal/infrastructure/logging"
	"github.com/retrodesk/desktopd/internal/infrastructure/monitoring"
	"github.com/retrodesk/desktopd/internal/runtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The desktop shell is served from arbitrary dev hosts; CORS on the
		// REST surface is the real gate.
		return true
	},
}

// Handler upgrades shell connections and bridges them to the runtime:
// inbound messages become dispatched actions, runtime events stream out.
type Handler struct {
	runtime *runtime.Runtime
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a WebSocket handler.
func NewHandler(rt *runtime.Runtime, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{runtime: rt, log: log, metrics: metrics}
}

// HandleConnection handles the WebSocket upgrade and runs the connection
// until either side closes.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	events, cancel := h.runtime.Events().Subscribe()
	defer cancel()

	h.send(conn, map[string]any{
		"type":    "welcome",
		"service": "desktopd",
	})

	ctx := c.Request.Context()
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if !h.send(conn, event) {
					return
				}
				h.countMessage("out", event.Type)
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			break
		}
		h.handleMessage(c, conn, raw)
	}

	conn.Close()
	<-done
}

func (h *Handler) handleMessage(c *gin.Context, conn *websocket.Conn, raw []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		h.sendError(conn, "malformed message")
		return
	}
	h.countMessage("in", probe.Type)

	switch probe.Type {
	case "ping":
		h.send(conn, map[string]any{"type": "pong"})
	case "action":
		var msg struct {
			Action json.RawMessage `json:"action"`
		}
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			h.sendError(conn, "malformed action message")
			return
		}
		action, err := httpapi.DecodeAction(msg.Action)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		if err := h.runtime.Dispatch(c.Request.Context(), action); err != nil {
			h.sendError(conn, err.Error())
			return
		}
	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *Handler) send(conn *websocket.Conn, payload any) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(payload); err != nil {
		h.log.Debug("websocket write failed", zap.Error(err))
		return false
	}
	return true
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, map[string]any{
		"type":  "error",
		"error": message,
	})
}

func (h *Handler) countMessage(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.WSMessages.WithLabelValues(direction, msgType).Inc()
	}
}
