package ws

import (
	"encoding/json"
	"net/http"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/model"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// TokenValidator validates owner dashboard tokens
type TokenValidator interface {
	ValidateOwnerToken(token string) (*model.OwnerClaims, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	authSvc TokenValidator
	log     *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc TokenValidator, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		log:     log,
	}
}

// DashboardWS handles GET /v1/ws/businesses/{businessId}
func (h *Handler) DashboardWS(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateOwnerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if claims.BusinessID != businessID {
		http.Error(w, "token not valid for this business", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade error", "error", err)
		return
	}

	conn := h.hub.NewConnection(businessID)
	hello, _ := json.Marshal(&Message{
		Type:    MsgConnected,
		Payload: json.RawMessage(`{"businessId":"` + businessID + `"}`),
	})
	conn.Send <- hello
	h.hub.Register(conn)

	h.log.Info("Owner dashboard connected", "businessId", businessID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("WebSocket read error", "businessId", conn.BusinessID, "error", err)
			}
			break
		}
		// Dashboards are receive-only
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
