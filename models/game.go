package models

import "time"

type Game struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug" gorm:"uniqueIndex"`
	Category  string    `json:"category"` // moba, fps, rpg, ...
	ImageURL  string    `json:"image_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TopupItems []TopupItem `json:"topup_items,omitempty" gorm:"foreignKey:GameID"`
}

// TopupItem 是某个游戏下的充值面额, 如 "86 Diamonds"。
type TopupItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GameID    uint      `json:"game_id" gorm:"index"`
	Name      string    `json:"name"`
	Amount    int       `json:"amount"` // 游戏内数量
	Price     float64   `json:"price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
