package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/config"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is not active")
	ErrNotSessionOwner = errors.New("session does not belong to user")
	ErrEmptyMessage    = errors.New("message content is empty")
)

// ChatService 是会话台账: 会话、消息、已读状态和客服在线列表
// 都以数据库为准, 不在进程内维护任何状态机。
type ChatService struct {
	db             *gorm.DB
	presenceWindow time.Duration
}

func NewChatService(db *gorm.DB, cfg *config.ChatConfig) *ChatService {
	return &ChatService{
		db:             db,
		presenceWindow: time.Duration(cfg.PresenceWindowMinutes) * time.Minute,
	}
}

// GetOrCreateSession 返回顾客当前的 active 会话, 没有则新建。
// 已关闭的会话不会被复活, 保证 active -> closed 单向流转。
func (s *ChatService) GetOrCreateSession(userID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.db.Where("user_id = ? AND status = ?", userID, models.SessionActive).
		Order("id DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = models.ChatSession{
			UserID: userID,
			Status: models.SessionActive,
		}
		if err := s.db.Create(&session).Error; err != nil {
			return nil, err
		}
		return &session, nil
	} else if err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionForUser 校验会话归属后返回会话。
func (s *ChatService) SessionForUser(userID, sessionID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return &session, nil
}

// SendUserMessage 校验归属和会话状态后落一条顾客消息。
func (s *ChatService) SendUserMessage(userID, sessionID uint, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	var session models.ChatSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.Status != models.SessionActive {
		return nil, ErrSessionClosed
	}

	message := models.ChatMessage{
		SessionID:  session.ID,
		Content:    content,
		IsFromUser: true,
		Type:       models.MessageText,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&session).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// SendAdminMessage 落一条客服消息, 并在会话尚无受理客服时认领。
func (s *ChatService) SendAdminMessage(adminID, sessionID uint, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	var session models.ChatSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, ErrSessionClosed
	}

	message := models.ChatMessage{
		SessionID:  session.ID,
		Content:    content,
		IsFromUser: false,
		AdminID:    &adminID,
		Type:       models.MessageText,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"updated_at": time.Now()}
		if session.AdminID == nil {
			updates["admin_id"] = adminID
		}
		return tx.Model(&session).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// CloseSession 关闭会话并追加一条系统消息, 两步在同一事务内。
func (s *ChatService) CloseSession(adminID, sessionID uint) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, ErrSessionClosed
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&session).Updates(map[string]interface{}{
			"status":     models.SessionClosed,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}
		systemMsg := models.ChatMessage{
			SessionID:  session.ID,
			Content:    "Sesi chat telah ditutup oleh admin",
			IsFromUser: false,
			AdminID:    &adminID,
			Type:       models.MessageSystem,
		}
		return tx.Create(&systemMsg).Error
	})
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionClosed
	return &session, nil
}

// MarkReadByAdmin 把会话里顾客发出的未读消息全部置为已读,
// 返回实际翻转的行数。重复调用翻转 0 行, 仍然成功。
func (s *ChatService) MarkReadByAdmin(sessionID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.ChatSession{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrSessionNotFound
	}

	result := s.db.Model(&models.ChatMessage{}).
		Where("session_id = ? AND is_from_user = ? AND is_read = ?", sessionID, true, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// MarkReadByUser 是顾客侧的对称操作, 只翻客服发出的消息。
func (s *ChatService) MarkReadByUser(userID, sessionID uint) (int64, error) {
	var session models.ChatSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	if session.UserID != userID {
		return 0, ErrNotSessionOwner
	}

	result := s.db.Model(&models.ChatMessage{}).
		Where("session_id = ? AND is_from_user = ? AND is_read = ?", sessionID, false, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// Messages 返回会话的完整历史, 客服消息批量补齐用户名,
// 避免每条消息一次查询。
func (s *ChatService) Messages(sessionID uint) ([]models.ChatMessage, error) {
	var count int64
	if err := s.db.Model(&models.ChatSession{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrSessionNotFound
	}

	var messages []models.ChatMessage
	if err := s.db.Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}

	if err := s.fillAdminUsernames(messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *ChatService) fillAdminUsernames(messages []models.ChatMessage) error {
	idSet := make(map[uint]bool)
	for _, m := range messages {
		if m.AdminID != nil {
			idSet[*m.AdminID] = true
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var admins []models.Admin
	if err := s.db.Select("id, username").Where("id IN ?", ids).Find(&admins).Error; err != nil {
		return err
	}
	names := make(map[uint]string, len(admins))
	for _, a := range admins {
		names[a.ID] = a.Username
	}

	for i := range messages {
		if messages[i].AdminID != nil {
			messages[i].AdminUsername = names[*messages[i].AdminID]
		}
	}
	return nil
}

// ListSessions 返回全部会话, 最近活跃的排前面, 每个会话带
// 完整消息和查询时统计的未读数。
func (s *ChatService) ListSessions() ([]models.SessionSummary, error) {
	var sessions []models.ChatSession
	err := s.db.Preload("User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("chat_messages.created_at ASC, chat_messages.id ASC")
		}).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	// 未读数一条分组查询拿全, 不逐会话数
	type unreadRow struct {
		SessionID uint
		Count     int64
	}
	var rows []unreadRow
	err = s.db.Model(&models.ChatMessage{}).
		Select("session_id, COUNT(*) AS count").
		Where("is_from_user = ? AND is_read = ?", true, false).
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	unread := make(map[uint]int64, len(rows))
	for _, r := range rows {
		unread[r.SessionID] = r.Count
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		if err := s.fillAdminUsernames(session.Messages); err != nil {
			return nil, err
		}
		summaries = append(summaries, models.SessionSummary{
			ChatSession: session,
			UnreadCount: unread[session.ID],
		})
	}
	return summaries, nil
}

// RecentWithAdmin 返回顾客与指定客服之间最近的会话、最后一条
// 消息和顾客侧未读数。没有历史会话时三者都为空。
func (s *ChatService) RecentWithAdmin(userID, adminID uint) (*models.ChatSession, *models.ChatMessage, int64, error) {
	var session models.ChatSession
	err := s.db.Where("user_id = ? AND admin_id = ?", userID, adminID).
		Order("updated_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, 0, nil
	} else if err != nil {
		return nil, nil, 0, err
	}

	var last models.ChatMessage
	err = s.db.Where("session_id = ?", session.ID).
		Order("created_at DESC, id DESC").First(&last).Error
	var lastPtr *models.ChatMessage
	if err == nil {
		lastPtr = &last
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, 0, err
	}

	var unread int64
	err = s.db.Model(&models.ChatMessage{}).
		Where("session_id = ? AND is_from_user = ? AND is_read = ?", session.ID, false, false).
		Count(&unread).Error
	if err != nil {
		return nil, nil, 0, err
	}

	return &session, lastPtr, unread, nil
}

// ListAdminsForCustomer 返回可联系的客服列表。
// 排序: 在线优先, 再按 LastSeen 新鲜度, 最后按用户名, 保证稳定。
// 在线判定结合心跳新鲜度: IsOnline 但 LastSeen 超过窗口的视为离线,
// 覆盖客服端异常断开没走登出的情况。
func (s *ChatService) ListAdminsForCustomer() ([]models.AdminPresence, error) {
	var admins []models.Admin
	if err := s.db.Where("is_active = ?", true).Find(&admins).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	list := make([]models.AdminPresence, 0, len(admins))
	for _, a := range admins {
		online := a.IsOnline && a.LastSeen != nil && now.Sub(*a.LastSeen) <= s.presenceWindow
		list = append(list, models.AdminPresence{
			ID:       a.ID,
			Username: a.Username,
			Online:   online,
			LastSeen: a.LastSeen,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Online != list[j].Online {
			return list[i].Online
		}
		li, lj := list[i].LastSeen, list[j].LastSeen
		if li != nil && lj != nil && !li.Equal(*lj) {
			return li.After(*lj)
		}
		if (li != nil) != (lj != nil) {
			return li != nil
		}
		return list[i].Username < list[j].Username
	})
	return list, nil
}

// CreateAttachmentMessage 由上传接口调用, 不检查会话状态:
// 关闭后的补充截图仍然允许归档 (与文字发送不同, 有意为之)。
func (s *ChatService) CreateAttachmentMessage(adminID, sessionID uint, msgType, url, name string, size int64) (*models.ChatMessage, error) {
	var session models.ChatSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	message := models.ChatMessage{
		SessionID:      session.ID,
		Content:        name,
		IsFromUser:     false,
		AdminID:        &adminID,
		Type:           msgType,
		AttachmentURL:  url,
		AttachmentName: name,
		AttachmentSize: size,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&session).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}
