package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamClient 代表一个订阅了某会话的 WebSocket 连接。
type StreamClient struct {
	ID        string
	SessionID uint
	Role      string // user, admin, anonymous
	Conn      *websocket.Conn
	Send      chan map[string]interface{} // 发送队列 (缓冲256条)
	ctx       context.Context
	cancel    context.CancelFunc
}

// StreamHub 按会话分发实时事件。消息仍然以数据库为准,
// 这里只做"新消息到了"的推送, 掉线重连后靠历史接口补齐。
type StreamHub struct {
	mu      sync.RWMutex
	clients map[uint]map[string]*StreamClient // sessionID -> clientID -> client
}

func NewStreamHub() *StreamHub {
	return &StreamHub{
		clients: make(map[uint]map[string]*StreamClient),
	}
}

func (h *StreamHub) register(client *StreamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.SessionID] == nil {
		h.clients[client.SessionID] = make(map[string]*StreamClient)
	}
	h.clients[client.SessionID][client.ID] = client
}

// unregister 只把客户端摘出映射, 不关闭 Send: broadcast 在锁外写
// 通道, 关闭会和并发广播撞出 panic。writePump 由 ctx 取消收尾。
func (h *StreamHub) unregister(client *StreamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.clients[client.SessionID]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.clients, client.SessionID)
		}
	}
}

func (h *StreamHub) broadcast(sessionID uint, data map[string]interface{}) {
	h.mu.RLock()
	clients := make([]*StreamClient, 0)
	for _, client := range h.clients[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// 发送队列满说明客户端卡死, 踢掉
			log.Printf("Stream client %s send buffer full, disconnecting", client.ID)
			client.cancel()
		}
	}
}

// BroadcastMessage 在消息落库后推给会话的所有订阅者。
// hub 为 nil 时 (测试环境) 直接跳过。
func (h *StreamHub) BroadcastMessage(sessionID uint, message *models.ChatMessage) {
	if h == nil {
		return
	}
	h.broadcast(sessionID, map[string]interface{}{
		"type":    "message",
		"payload": message,
	})
}

func (h *StreamHub) BroadcastSessionClosed(sessionID uint) {
	if h == nil {
		return
	}
	h.broadcast(sessionID, map[string]interface{}{
		"type": "session_closed",
		"payload": map[string]interface{}{
			"session_id": sessionID,
		},
	})
}

// ChatStreamHandler 处理实时通道的协商。这是全站唯一允许匿名
// 降级的入口: 令牌无效时连接仍然建立, 只是身份记为 anonymous。
type ChatStreamHandler struct {
	hub              *StreamHub
	authService      *services.AuthService
	adminAuthService *services.AdminAuthService
}

func NewChatStreamHandler(hub *StreamHub, authService *services.AuthService, adminAuthService *services.AdminAuthService) *ChatStreamHandler {
	return &ChatStreamHandler{
		hub:              hub,
		authService:      authService,
		adminAuthService: adminAuthService,
	}
}

func (h *ChatStreamHandler) HandleWebSocket(c echo.Context) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
	}

	role := h.resolveRole(c.QueryParam("token"))

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &StreamClient{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Conn:      ws,
		Send:      make(chan map[string]interface{}, 256),
		ctx:       ctx,
		cancel:    cancel,
	}

	h.hub.register(client)

	go h.writePump(client)
	h.readPump(client)

	return nil
}

// resolveRole 依次用顾客和管理员的校验器尝试令牌。
// 两边都失败时按匿名处理, 不拒绝连接。
func (h *ChatStreamHandler) resolveRole(token string) string {
	if token == "" {
		return "anonymous"
	}
	if _, err := h.authService.ValidateToken(token); err == nil {
		return "user"
	}
	if _, err := h.adminAuthService.ValidateToken(token); err == nil {
		return "admin"
	}
	return "anonymous"
}

func (h *ChatStreamHandler) readPump(client *StreamClient) {
	defer func() {
		client.cancel()
		h.hub.unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// 入站只当保活用, 消息都走 HTTP 接口
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (h *ChatStreamHandler) writePump(client *StreamClient) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case <-client.ctx.Done():
			return

		case message := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteJSON(message); err != nil {
				log.Printf("WriteJSON error: %v", err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
