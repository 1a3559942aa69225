package services

import (
	"errors"
	"fmt"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("topup item not found")
	ErrItemInactive = errors.New("topup item is not available")
)

// OrderService 处理充值下单: 扣余额、建订单、记流水三步一个事务。
type OrderService struct {
	db     *gorm.DB
	events EventPublisher
}

func NewOrderService(db *gorm.DB, events EventPublisher) *OrderService {
	return &OrderService{db: db, events: events}
}

// PlaceTopupOrder 以服务端价格快照下单, 余额不足整单拒绝。
func (s *OrderService) PlaceTopupOrder(userID, itemID uint, gameAccountID string) (*models.Order, error) {
	var item models.TopupItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrItemInactive
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Balance < item.Price {
			return ErrInsufficientBalance
		}

		updates := map[string]interface{}{
			"balance":     user.Balance - item.Price,
			"total_spent": user.TotalSpent + item.Price,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}

		order = models.Order{
			UserID:        userID,
			GameID:        item.GameID,
			TopupItemID:   item.ID,
			GameAccountID: gameAccountID,
			Price:         item.Price,
			Status:        models.OrderPaid,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Create(&models.Transaction{
			UserID:      userID,
			Type:        models.TxPurchase,
			Amount:      -item.Price,
			Description: fmt.Sprintf("Pembelian %s (order #%d)", item.Name, order.ID),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		_ = s.events.Publish("order.created", fmt.Sprintf("%d", userID), map[string]interface{}{
			"order_id": order.ID,
			"user_id":  userID,
			"item_id":  item.ID,
			"price":    item.Price,
		})
	}

	return &order, nil
}

// ListOrders 返回用户订单, 新的在前。
func (s *OrderService) ListOrders(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Game").Preload("TopupItem").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}
