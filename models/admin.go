package models

import "time"

type Admin struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Username  string     `json:"username" gorm:"uniqueIndex"`
	Password  string     `json:"-"`
	Role      string     `json:"role" gorm:"default:'admin'"` // admin, super_admin
	// 不挂 default 标签: GORM 建行时会把显式的 false 当零值吞掉
	IsActive  bool       `json:"is_active"`
	IsOnline  bool       `json:"is_online" gorm:"default:false"`
	LastSeen  *time.Time `json:"last_seen"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AdminPresence 是客服列表里返回给客户端的条目。
// Online 根据 IsOnline 和 LastSeen 的新鲜度在查询时计算,不落库。
type AdminPresence struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen"`
}

type AdminAuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	Admin     Admin  `json:"admin"`
}
