package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"
)

// PaymentNotification 是支付网关回调主题里的消息体。
type PaymentNotification struct {
	Reference string  `json:"reference"` // 网关侧的支付单号, 用作幂等键
	UserID    uint    `json:"user_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"` // settlement, pending, expire
	Timestamp int64   `json:"timestamp"`
}

// Depositor 由余额服务实现: 入账 + 审计流水一个事务。
type Depositor interface {
	Deposit(userID uint, amount float64, reference string) error
}

type PaymentHandler struct {
	deposits Depositor
}

func NewPaymentHandler(deposits Depositor) *PaymentHandler {
	return &PaymentHandler{deposits: deposits}
}

func (h *PaymentHandler) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notif PaymentNotification

	if err := json.Unmarshal(message.Value, &notif); err != nil {
		log.Printf("Failed to unmarshal payment notification: %v", err)
		// 格式错误的消息重投也不会成功, 直接吞掉
		return nil
	}

	if notif.Status != "settlement" {
		return nil
	}

	log.Printf("Crediting payment %s: user=%d amount=%.2f", notif.Reference, notif.UserID, notif.Amount)
	return h.deposits.Deposit(notif.UserID, notif.Amount, notif.Reference)
}
