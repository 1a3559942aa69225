package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
)

type recordedDeposit struct {
	userID    uint
	amount    float64
	reference string
}

type fakeDepositor struct {
	deposits []recordedDeposit
	err      error
}

func (f *fakeDepositor) Deposit(userID uint, amount float64, reference string) error {
	if f.err != nil {
		return f.err
	}
	f.deposits = append(f.deposits, recordedDeposit{userID, amount, reference})
	return nil
}

func paymentMessage(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic: "payment-notifications",
		Value: []byte(value),
	}
}

func TestPaymentHandlerSettlement(t *testing.T) {
	dep := &fakeDepositor{}
	h := NewPaymentHandler(dep)

	msg := paymentMessage(`{"reference":"PAY-001","user_id":7,"amount":50000,"status":"settlement"}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(dep.deposits) != 1 {
		t.Fatalf("expected one deposit, got %d", len(dep.deposits))
	}
	got := dep.deposits[0]
	if got.userID != 7 || got.amount != 50000 || got.reference != "PAY-001" {
		t.Fatalf("unexpected deposit: %+v", got)
	}
}

func TestPaymentHandlerSkipsNonSettlement(t *testing.T) {
	dep := &fakeDepositor{}
	h := NewPaymentHandler(dep)

	for _, status := range []string{"pending", "expire", "cancel"} {
		msg := paymentMessage(`{"reference":"PAY-002","user_id":7,"amount":100,"status":"` + status + `"}`)
		if err := h.Handle(context.Background(), msg); err != nil {
			t.Fatalf("handle %s: %v", status, err)
		}
	}
	if len(dep.deposits) != 0 {
		t.Fatalf("non-settlement statuses must not credit, got %d deposits", len(dep.deposits))
	}
}

// 格式错误的消息重投也不会成功, 必须吞掉而不是卡死分区。
func TestPaymentHandlerSwallowsMalformed(t *testing.T) {
	dep := &fakeDepositor{}
	h := NewPaymentHandler(dep)

	if err := h.Handle(context.Background(), paymentMessage(`{bukan json`)); err != nil {
		t.Fatalf("malformed message must not return error, got %v", err)
	}
	if len(dep.deposits) != 0 {
		t.Fatalf("malformed message must not credit")
	}
}

// 入账失败要把错误抛回消费组, offset 不前移, 等重投。
func TestPaymentHandlerPropagatesDepositError(t *testing.T) {
	dep := &fakeDepositor{err: errors.New("db down")}
	h := NewPaymentHandler(dep)

	msg := paymentMessage(`{"reference":"PAY-003","user_id":7,"amount":100,"status":"settlement"}`)
	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatalf("deposit failure must propagate")
	}
}

func TestPublisherNilSafe(t *testing.T) {
	var p *Publisher
	if err := p.Publish("order.created", "1", map[string]interface{}{"order_id": 1}); err != nil {
		t.Fatalf("nil publisher must be a no-op, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nil publisher close: %v", err)
	}
}
