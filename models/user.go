package models

import "time"

type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Email      string    `json:"email" gorm:"uniqueIndex"`
	Username   string    `json:"username" gorm:"uniqueIndex"`
	Password   string    `json:"-"` // bcrypt hash
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	Balance    float64   `json:"balance" gorm:"default:0"` // 余额, 任何扣减后不得为负
	TotalSpent float64   `json:"total_spent" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	User      User   `json:"user"`
}
