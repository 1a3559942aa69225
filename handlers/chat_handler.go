package handlers

import (
	"net/http"
	"strconv"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

// ChatHandler 是顾客侧的聊天接口。
type ChatHandler struct {
	chatService *services.ChatService
	hub         *StreamHub
}

func NewChatHandler(chatService *services.ChatService, hub *StreamHub) *ChatHandler {
	return &ChatHandler{chatService: chatService, hub: hub}
}

type SendMessageRequest struct {
	SessionID uint   `json:"session_id"`
	Content   string `json:"content" validate:"required"`
}

// GetSession 返回顾客当前的 active 会话, 没有则创建。
func (h *ChatHandler) GetSession(c echo.Context) error {
	user := c.Get("user").(*models.User)

	session, err := h.chatService.GetOrCreateSession(user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get session"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

// SendMessage 发一条顾客消息。session_id 缺省时落到顾客当前
// 会话 (首条消息隐式建会话)。
func (h *ChatHandler) SendMessage(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sessionID := req.SessionID
	if sessionID == 0 {
		session, err := h.chatService.GetOrCreateSession(user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get session"})
		}
		sessionID = session.ID
	}

	message, err := h.chatService.SendUserMessage(user.ID, sessionID, req.Content)
	if err != nil {
		switch err {
		case services.ErrEmptyMessage:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrNotSessionOwner:
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		case services.ErrSessionClosed:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		}
	}

	h.hub.BroadcastMessage(sessionID, message)
	return c.JSON(http.StatusCreated, message)
}

// MarkRead 把客服发来的未读消息全部置为已读, 返回翻转行数。
func (h *ChatHandler) MarkRead(c echo.Context) error {
	user := c.Get("user").(*models.User)

	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
	}

	count, err := h.chatService.MarkReadByUser(user.ID, sessionID)
	if err != nil {
		switch err {
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrNotSessionOwner:
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mark messages read"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"marked_as_read": count,
	})
}

// GetMessages 返回顾客自己会话的完整历史。
func (h *ChatHandler) GetMessages(c echo.Context) error {
	user := c.Get("user").(*models.User)

	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
	}

	if _, err := h.chatService.SessionForUser(user.ID, sessionID); err != nil {
		switch err {
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrNotSessionOwner:
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch session"})
		}
	}

	messages, err := h.chatService.Messages(sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch messages"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// ListAdmins 返回客服列表, 在线的排前面。
func (h *ChatHandler) ListAdmins(c echo.Context) error {
	admins, err := h.chatService.ListAdminsForCustomer()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch admins"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admins": admins,
	})
}

// GetRecent 返回顾客与指定客服最近的会话概要。
func (h *ChatHandler) GetRecent(c echo.Context) error {
	user := c.Get("user").(*models.User)

	adminID, err := parseUintParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid admin ID"})
	}

	session, last, unread, err := h.chatService.RecentWithAdmin(user.ID, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch recent session"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session":      session,
		"last_message": last,
		"unread_count": unread,
	})
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
