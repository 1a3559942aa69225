package kafka

import (
	"github.com/IBM/sarama"
)

// OriginInterceptor 给每条出站事件打上来源标头, 方便下游按服务过滤。
type OriginInterceptor struct {
}

func (i *OriginInterceptor) OnSend(msg *sarama.ProducerMessage) {
	msg.Headers = append(msg.Headers, sarama.RecordHeader{
		Key:   []byte("origin"),
		Value: []byte("store-backend"),
	})
}

func NewOriginInterceptor() *OriginInterceptor {
	return &OriginInterceptor{}
}
