package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/KP12130/KPCasinoAI/internal/middleware"
	"github.com/KP12130/KPCasinoAI/internal/models"
	"github.com/KP12130/KPCasinoAI/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams settlement events to connected clients. It is the
// live-feed side of the settlement pipeline and implements
// services.Broadcaster.
type WebSocketHandler struct {
	settlement *services.Settlement
	hub        *webSocketHub
}

type webSocketHub struct {
	clients    map[uuid.UUID][]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan *wsMessage
}

type wsClient struct {
	accountID uuid.UUID
	conn      *websocket.Conn
}

type wsMessage struct {
	Type      string    `json:"type"`
	AccountID uuid.UUID `json:"-"`
	Data      any       `json:"data"`
}

func NewWebSocketHandler(settlement *services.Settlement) *WebSocketHandler {
	hub := &webSocketHub{
		clients:    make(map[uuid.UUID][]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan *wsMessage, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		settlement: settlement,
		hub:        hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	subjectID := c.GetString(middleware.ContextSubjectID)

	account, err := h.settlement.Profile(c.Request.Context(), subjectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade to websocket", "error", err)
		return
	}

	client := &wsClient{
		accountID: account.ID,
		conn:      conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendBalance(client, account)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "account_id", client.accountID, "error", err)
			}
			break
		}

		if msg.Type == "PING" {
			h.sendPong(client)
		}
	}
}

// BroadcastSettlement pushes a settled game and the resulting balance to every
// connection the account holds. Never blocks the settlement path.
func (h *WebSocketHandler) BroadcastSettlement(accountID uuid.UUID, game models.SettledGame, newBalance decimal.Decimal) {
	msg := &wsMessage{
		Type:      "GAME_SETTLED",
		AccountID: accountID,
		Data: gin.H{
			"game":       game,
			"newBalance": newBalance,
			"timestamp":  time.Now().Unix(),
		},
	}

	select {
	case h.hub.broadcast <- msg:
	default:
		slog.Warn("websocket broadcast queue full, dropping event", "account_id", accountID)
	}
}

func (h *WebSocketHandler) sendBalance(client *wsClient, account models.Account) {
	msg := wsMessage{
		Type: "BALANCE_UPDATE",
		Data: gin.H{
			"balance":      account.Balance,
			"totalWagered": account.TotalWagered,
			"totalWon":     account.TotalWon,
			"gamesPlayed":  account.GamesPlayed,
		},
	}

	if err := client.conn.WriteJSON(msg); err != nil {
		slog.Warn("websocket write failed", "account_id", client.accountID, "error", err)
	}
}

func (h *WebSocketHandler) sendPong(client *wsClient) {
	msg := wsMessage{
		Type: "PONG",
		Data: gin.H{
			"timestamp": time.Now().Unix(),
		},
	}

	if err := client.conn.WriteJSON(msg); err != nil {
		slog.Warn("websocket write failed", "account_id", client.accountID, "error", err)
	}
}

func (hub *webSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.accountID] = append(hub.clients[client.accountID], client)

		case client := <-hub.unregister:
			conns := hub.clients[client.accountID]
			for i, c := range conns {
				if c == client {
					hub.clients[client.accountID] = append(conns[:i], conns[i+1:]...)
					break
				}
			}
			if len(hub.clients[client.accountID]) == 0 {
				delete(hub.clients, client.accountID)
			}

		case msg := <-hub.broadcast:
			for _, client := range hub.clients[msg.AccountID] {
				if err := client.conn.WriteJSON(msg); err != nil {
					slog.Warn("websocket write failed", "account_id", client.accountID, "error", err)
				}
			}
		}
	}
}
