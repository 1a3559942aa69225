package kafka

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// StoreEvent 是发往事件总线的统一信封。
type StoreEvent struct {
	Type      string      `json:"type"` // order.created, balance.adjusted, deposit.credited
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// Publisher 把订单/余额审计事件发到事件主题。
// 发布失败只记日志, 不阻塞业务事务 (事件在 DB 提交之后发出)。
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(brokers []string, topic string, config *sarama.Config) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &Publisher{producer: producer, topic: topic}, nil
}

// Publish 满足 services.EventPublisher。nil 接收者表示事件总线未配置。
func (p *Publisher) Publish(eventType string, key string, payload interface{}) error {
	if p == nil || p.producer == nil {
		return nil
	}

	event := StoreEvent{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}
	jsonValue, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(jsonValue),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
		return err
	}

	log.Printf("Event %s sent to partition %d at offset %d", eventType, partition, offset)
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
