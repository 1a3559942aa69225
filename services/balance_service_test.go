package services

import (
	"testing"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"gorm.io/gorm"
)

type capturedEvent struct {
	Type string
	Key  string
}

// recordingPublisher 只记录事件, 测试用。
type recordingPublisher struct {
	events []capturedEvent
}

func (p *recordingPublisher) Publish(eventType, key string, payload interface{}) error {
	p.events = append(p.events, capturedEvent{Type: eventType, Key: key})
	return nil
}

func seedUserWithBalance(t *testing.T, db *gorm.DB, username string, balance float64) *models.User {
	t.Helper()
	user := createUser(t, db, username)
	if err := db.Model(user).Update("balance", balance).Error; err != nil {
		t.Fatalf("seed balance: %v", err)
	}
	user.Balance = balance
	return user
}

func TestAdjustAdd(t *testing.T) {
	db := setupChatDB(t)
	pub := &recordingPublisher{}
	svc := NewBalanceService(db, pub)
	admin := createAdmin(t, db, "cs1")
	user := seedUserWithBalance(t, db, "budi", 100)

	updated, err := svc.Adjust(admin.ID, user.ID, 50, "add")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.Balance != 150 {
		t.Fatalf("expected balance 150, got %v", updated.Balance)
	}

	var audit models.Transaction
	if err := db.Where("user_id = ?", user.ID).First(&audit).Error; err != nil {
		t.Fatalf("audit row missing: %v", err)
	}
	if audit.Type != models.TxAdjustment || audit.Amount != 50 || audit.AdminID == nil || *audit.AdminID != admin.ID {
		t.Fatalf("audit row wrong: %+v", audit)
	}

	if len(pub.events) != 1 || pub.events[0].Type != "balance.adjusted" {
		t.Fatalf("expected one balance.adjusted event, got %+v", pub.events)
	}
}

func TestAdjustSubtractInsufficient(t *testing.T) {
	db := setupChatDB(t)
	svc := NewBalanceService(db, nil)
	admin := createAdmin(t, db, "cs1")
	user := seedUserWithBalance(t, db, "budi", 30)

	if _, err := svc.Adjust(admin.ID, user.ID, 50, "subtract"); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// 整体回滚: 余额不动, 流水不落
	var got models.User
	db.First(&got, user.ID)
	if got.Balance != 30 {
		t.Fatalf("balance must be untouched, got %v", got.Balance)
	}
	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Fatalf("no audit row expected, got %d", count)
	}
}

func TestAdjustValidation(t *testing.T) {
	db := setupChatDB(t)
	svc := NewBalanceService(db, nil)
	admin := createAdmin(t, db, "cs1")
	user := seedUserWithBalance(t, db, "budi", 30)

	if _, err := svc.Adjust(admin.ID, user.ID, 0, "add"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Adjust(admin.ID, user.ID, -5, "add"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Adjust(admin.ID, user.ID, 10, "multiply"); err != ErrInvalidAction {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := svc.Adjust(admin.ID, 9999, 10, "add"); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDepositIdempotent(t *testing.T) {
	db := setupChatDB(t)
	svc := NewBalanceService(db, nil)
	user := seedUserWithBalance(t, db, "budi", 0)

	// 至少一次投递: 同一单号重复两次只加一次钱
	for i := 0; i < 2; i++ {
		if err := svc.Deposit(user.ID, 75, "PAY-001"); err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}

	var got models.User
	db.First(&got, user.ID)
	if got.Balance != 75 {
		t.Fatalf("expected balance 75 after duplicate delivery, got %v", got.Balance)
	}
	var rows []models.Transaction
	db.Where("user_id = ? AND type = ?", user.ID, models.TxDeposit).Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("expected single deposit row, got %d", len(rows))
	}
	if rows[0].Reference == nil || *rows[0].Reference != "PAY-001" {
		t.Fatalf("deposit row must carry the gateway reference, got %+v", rows[0])
	}

	// 不同单号正常入账
	if err := svc.Deposit(user.ID, 25, "PAY-002"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	db.First(&got, user.ID)
	if got.Balance != 100 {
		t.Fatalf("expected balance 100, got %v", got.Balance)
	}
}

func TestTransactionsOrder(t *testing.T) {
	db := setupChatDB(t)
	svc := NewBalanceService(db, nil)
	user := seedUserWithBalance(t, db, "budi", 0)
	admin := createAdmin(t, db, "cs1")

	svc.Deposit(user.ID, 10, "PAY-A")
	svc.Deposit(user.ID, 20, "PAY-B")

	// 非入账流水不带单号, 多行 NULL 不撞 reference 唯一索引
	if _, err := svc.Adjust(admin.ID, user.ID, 5, "add"); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := svc.Adjust(admin.ID, user.ID, 5, "add"); err != nil {
		t.Fatalf("second adjust: %v", err)
	}

	txs, err := svc.Transactions(user.ID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(txs))
	}
	if txs[3].Amount != 10 || txs[2].Amount != 20 {
		t.Fatalf("expected oldest deposits last, got %v then %v", txs[3].Amount, txs[2].Amount)
	}
}
