package models

import "time"

const (
	OrderPaid       = "paid"
	OrderProcessing = "processing"
	OrderDelivered  = "delivered"
)

type Order struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index"`
	GameID        uint      `json:"game_id"`
	TopupItemID   uint      `json:"topup_item_id"`
	GameAccountID string    `json:"game_account_id"` // 玩家在游戏内的账号
	Price         float64   `json:"price"`           // 下单时的价格快照
	Status        string    `json:"status" gorm:"default:'paid'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Game      Game      `json:"game,omitempty" gorm:"foreignKey:GameID"`
	TopupItem TopupItem `json:"topup_item,omitempty" gorm:"foreignKey:TopupItemID"`
}

const (
	TxDeposit    = "deposit"
	TxPurchase   = "purchase"
	TxAdjustment = "adjustment"
)

// Transaction 是余额流水审计行, 与对应的余额变更必须在同一事务内写入。
type Transaction struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	UserID  uint    `json:"user_id" gorm:"index"`
	AdminID *uint   `json:"admin_id"` // 管理员操作时记录操作者
	Type    string  `json:"type"`     // deposit, purchase, adjustment
	Amount  float64 `json:"amount"`   // 有符号, 扣减为负
	// 网关侧支付单号, 入账的幂等键。指针型: 非入账流水留 NULL,
	// 不占用唯一索引
	Reference   *string   `json:"reference,omitempty" gorm:"uniqueIndex"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
