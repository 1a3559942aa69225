package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/storage"

	"github.com/labstack/echo/v4"
)

// AdminChatHandler 是管理端的聊天接口。
type AdminChatHandler struct {
	chatService *services.ChatService
	store       *storage.BlobStore
	hub         *StreamHub
}

func NewAdminChatHandler(chatService *services.ChatService, store *storage.BlobStore, hub *StreamHub) *AdminChatHandler {
	return &AdminChatHandler{chatService: chatService, store: store, hub: hub}
}

// ListSessions 返回全部会话, 最近活跃在前, 带未读数。
func (h *AdminChatHandler) ListSessions(c echo.Context) error {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch sessions"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

type AdminSendRequest struct {
	SessionID uint   `json:"session_id" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

func (h *AdminChatHandler) SendMessage(c echo.Context) error {
	admin := c.Get("admin").(*models.Admin)

	var req AdminSendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	message, err := h.chatService.SendAdminMessage(admin.ID, req.SessionID, req.Content)
	if err != nil {
		switch err {
		case services.ErrEmptyMessage:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrSessionClosed:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		}
	}

	message.AdminUsername = admin.Username
	h.hub.BroadcastMessage(req.SessionID, message)
	return c.JSON(http.StatusCreated, message)
}

// MarkRead 把顾客发来的未读消息全部置为已读。
func (h *AdminChatHandler) MarkRead(c echo.Context) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
	}

	count, err := h.chatService.MarkReadByAdmin(sessionID)
	if err != nil {
		switch err {
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mark messages read"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"marked_as_read": count,
	})
}

type CloseSessionRequest struct {
	SessionID uint `json:"session_id" validate:"required"`
}

// CloseSession 关闭会话并追加系统消息。
func (h *AdminChatHandler) CloseSession(c echo.Context) error {
	admin := c.Get("admin").(*models.Admin)

	var req CloseSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	session, err := h.chatService.CloseSession(admin.ID, req.SessionID)
	if err != nil {
		switch err {
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrSessionClosed:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to close session"})
		}
	}

	h.hub.BroadcastSessionClosed(session.ID)
	return c.JSON(http.StatusOK, session)
}

// Upload 上传附件并落一条 image/file 消息。
// 这里有意不检查会话状态: 关闭后的补充材料仍然允许归档。
func (h *AdminChatHandler) Upload(c echo.Context) error {
	admin := c.Get("admin").(*models.Admin)

	if h.store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "storage not configured"})
	}

	sessionID64, err := strconv.ParseUint(c.FormValue("session_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
	}
	sessionID := uint(sessionID64)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	msgType := models.MessageFile
	if strings.HasPrefix(contentType, "image/") {
		msgType = models.MessageImage
	}

	url, err := h.store.SaveAttachment(c.Request().Context(), sessionID, fileHeader.Filename, contentType, src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
	}

	message, err := h.chatService.CreateAttachmentMessage(admin.ID, sessionID, msgType, url, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		switch err {
		case services.ErrSessionNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create message"})
		}
	}

	message.AdminUsername = admin.Username
	h.hub.BroadcastMessage(sessionID, message)
	return c.JSON(http.StatusCreated, message)
}
