package services

import (
	"errors"
	"fmt"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidAction       = errors.New("action must be add or subtract")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// EventPublisher 把审计事件发到事件总线, 由 kafka.Publisher 实现。
// 事件在数据库事务提交之后发出, 发送失败不回滚业务。
type EventPublisher interface {
	Publish(eventType string, key string, payload interface{}) error
}

// BalanceService 负责余额变动。余额更新和审计流水必须落在同一个
// 事务里, 任何一半失败则整体回滚。
type BalanceService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewBalanceService(db *gorm.DB, events EventPublisher) *BalanceService {
	return &BalanceService{db: db, events: events}
}

// Adjust 按管理员指令增减用户余额。subtract 导致负余额时直接拒绝,
// 不做部分写入。
func (s *BalanceService) Adjust(adminID, userID uint, amount float64, action string) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if action != "add" && action != "subtract" {
		return nil, ErrInvalidAction
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		delta := amount
		if action == "subtract" {
			if user.Balance < amount {
				return ErrInsufficientBalance
			}
			delta = -amount
		}
		user.Balance += delta

		if err := tx.Model(&user).Update("balance", user.Balance).Error; err != nil {
			return err
		}

		audit := models.Transaction{
			UserID:      user.ID,
			AdminID:     &adminID,
			Type:        models.TxAdjustment,
			Amount:      delta,
			Description: fmt.Sprintf("Penyesuaian saldo oleh admin #%d (%s %.2f)", adminID, action, amount),
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		payload := map[string]interface{}{
			"user_id":  user.ID,
			"admin_id": adminID,
			"action":   action,
			"amount":   amount,
			"balance":  user.Balance,
		}
		// 审计事件丢失不影响已提交的变更
		_ = s.events.Publish("balance.adjusted", fmt.Sprintf("%d", user.ID), payload)
	}

	return &user, nil
}

// Deposit 由支付通知消费者调用: 入账 + deposit 流水一个事务。
// 同一支付单号重复投递时跳过, 保证至少一次消费下不重复加钱。
func (s *BalanceService) Deposit(userID uint, amount float64, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 幂等键是网关单号本身, 不依赖描述文本的拼法;
		// reference 列上的唯一索引兜底并发投递
		var dup int64
		if err := tx.Model(&models.Transaction{}).
			Where("type = ? AND reference = ?", models.TxDeposit, reference).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return nil
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&user).Update("balance", user.Balance+amount).Error; err != nil {
			return err
		}

		return tx.Create(&models.Transaction{
			UserID:      userID,
			Type:        models.TxDeposit,
			Amount:      amount,
			Reference:   &reference,
			Description: fmt.Sprintf("Top up saldo via pembayaran %s", reference),
		}).Error
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.Publish("deposit.credited", fmt.Sprintf("%d", userID), map[string]interface{}{
			"user_id":   userID,
			"amount":    amount,
			"reference": reference,
		})
	}
	return nil
}

// Transactions 返回用户的流水, 新的在前。
func (s *BalanceService) Transactions(userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&txs).Error
	return txs, err
}
