package models

import "time"

// 会话状态只能单向流转 active -> closed
const (
	SessionActive = "active"
	SessionClosed = "closed"
)

const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageFile   = "file"
	MessageSystem = "system"
)

type ChatSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	AdminID   *uint     `json:"admin_id"` // 最多一个受理客服
	Status    string    `json:"status" gorm:"default:'active'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User     User          `json:"user" gorm:"foreignKey:UserID"`
	Messages []ChatMessage `json:"messages" gorm:"foreignKey:SessionID"`
}

type ChatMessage struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	SessionID      uint      `json:"session_id" gorm:"index"`
	Content        string    `json:"content" gorm:"type:text"`
	IsFromUser     bool      `json:"is_from_user"`
	AdminID        *uint     `json:"admin_id"` // 管理员发言时记录
	Type           string    `json:"type" gorm:"default:'text'"` // text, image, file, system
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentName string    `json:"attachment_name,omitempty"`
	AttachmentSize int64     `json:"attachment_size,omitempty"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`

	AdminUsername string `json:"admin_username,omitempty" gorm:"-"` // 查询时批量补齐
}

// SessionSummary 是管理端会话列表的条目, 未读数在查询时统计。
type SessionSummary struct {
	ChatSession
	UnreadCount int64 `json:"unread_count"`
}
