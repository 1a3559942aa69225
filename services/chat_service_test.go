package services

import (
	"testing"
	"time"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/config"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupChatDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newChatService(db *gorm.DB) *ChatService {
	return NewChatService(db, &config.ChatConfig{PresenceWindowMinutes: 5})
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Email: username + "@example.com", Username: username, Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createAdmin(t *testing.T, db *gorm.DB, username string) *models.Admin {
	t.Helper()
	admin := &models.Admin{Username: username, Password: "x", Role: "admin", IsActive: true}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func TestGetOrCreateSession(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")

	first, err := svc.GetOrCreateSession(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	second, err := svc.GetOrCreateSession(user.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same active session, got %d and %d", first.ID, second.ID)
	}

	admin := createAdmin(t, db, "cs1")
	if _, err := svc.CloseSession(admin.ID, first.ID); err != nil {
		t.Fatalf("close session: %v", err)
	}

	// 关闭的会话不复活, 再要会话时新建一个
	third, err := svc.GetOrCreateSession(user.ID)
	if err != nil {
		t.Fatalf("recreate session: %v", err)
	}
	if third.ID == first.ID {
		t.Fatalf("closed session must not be reused")
	}
	var closed models.ChatSession
	if err := db.First(&closed, first.ID).Error; err != nil {
		t.Fatalf("load closed session: %v", err)
	}
	if closed.Status != models.SessionClosed {
		t.Fatalf("expected closed status, got %s", closed.Status)
	}
}

func TestSendMessageValidation(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	other := createUser(t, db, "siti")
	session, _ := svc.GetOrCreateSession(user.ID)

	if _, err := svc.SendUserMessage(user.ID, session.ID, "   "); err != ErrEmptyMessage {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.SendUserMessage(user.ID, 9999, "halo"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.SendUserMessage(other.ID, session.ID, "halo"); err != ErrNotSessionOwner {
		t.Fatalf("expected ErrNotSessionOwner, got %v", err)
	}

	msg, err := svc.SendUserMessage(user.ID, session.ID, "  Halo  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Content != "Halo" {
		t.Fatalf("content not trimmed: %q", msg.Content)
	}
	if !msg.IsFromUser || msg.IsRead {
		t.Fatalf("unexpected flags: from_user=%v read=%v", msg.IsFromUser, msg.IsRead)
	}
}

func TestClosedSessionRejectsSends(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	admin := createAdmin(t, db, "cs1")
	session, _ := svc.GetOrCreateSession(user.ID)

	if _, err := svc.CloseSession(admin.ID, session.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := svc.SendUserMessage(user.ID, session.ID, "halo"); err != ErrSessionClosed {
		t.Fatalf("customer send to closed session: expected ErrSessionClosed, got %v", err)
	}
	if _, err := svc.SendAdminMessage(admin.ID, session.ID, "hi"); err != ErrSessionClosed {
		t.Fatalf("admin send to closed session: expected ErrSessionClosed, got %v", err)
	}
	if _, err := svc.CloseSession(admin.ID, session.ID); err != ErrSessionClosed {
		t.Fatalf("double close: expected ErrSessionClosed, got %v", err)
	}

	// 附件归档是唯一的例外, 关闭后仍然允许
	if _, err := svc.CreateAttachmentMessage(admin.ID, session.ID, models.MessageImage, "http://x/y.png", "y.png", 10); err != nil {
		t.Fatalf("attachment to closed session should be allowed: %v", err)
	}
}

func TestCloseSessionAppendsSystemMessage(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	admin := createAdmin(t, db, "cs1")
	session, _ := svc.GetOrCreateSession(user.ID)

	if _, err := svc.CloseSession(admin.ID, session.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	var msgs []models.ChatMessage
	if err := db.Where("session_id = ?", session.ID).Find(&msgs).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one system message, got %d", len(msgs))
	}
	if msgs[0].Type != models.MessageSystem || msgs[0].AdminID == nil || *msgs[0].AdminID != admin.ID {
		t.Fatalf("system message not attributed to closing admin: %+v", msgs[0])
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	admin := createAdmin(t, db, "cs1")
	session, _ := svc.GetOrCreateSession(user.ID)

	for i := 0; i < 3; i++ {
		if _, err := svc.SendUserMessage(user.ID, session.ID, "halo"); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	n, err := svc.MarkReadByAdmin(session.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 marked, got %d", n)
	}

	n, err = svc.MarkReadByAdmin(session.ID)
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if n != 0 {
		t.Fatalf("second call should mark 0, got %d", n)
	}

	// 不存在的会话和顾客侧一样报错, 不静默返回 0
	if _, err := svc.MarkReadByAdmin(9999); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	// 顾客侧对称操作只翻客服消息
	if _, err := svc.SendAdminMessage(admin.ID, session.ID, "hi"); err != nil {
		t.Fatalf("admin send: %v", err)
	}
	n, err = svc.MarkReadByUser(user.ID, session.ID)
	if err != nil {
		t.Fatalf("user mark read: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 marked on user side, got %d", n)
	}
}

func TestListSessionsUnreadCount(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	session, _ := svc.GetOrCreateSession(user.ID)

	const k = 4
	for i := 0; i < k; i++ {
		if _, err := svc.SendUserMessage(user.ID, session.ID, "pesan"); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	summaries, err := svc.ListSessions()
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 session, got %d", len(summaries))
	}
	if summaries[0].UnreadCount != k {
		t.Fatalf("expected unread %d, got %d", k, summaries[0].UnreadCount)
	}
	if len(summaries[0].Messages) != k {
		t.Fatalf("expected %d messages nested, got %d", k, len(summaries[0].Messages))
	}

	if _, err := svc.MarkReadByAdmin(session.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	summaries, _ = svc.ListSessions()
	if summaries[0].UnreadCount != 0 {
		t.Fatalf("expected unread 0 after mark read, got %d", summaries[0].UnreadCount)
	}
}

func TestListSessionsOrder(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	u1 := createUser(t, db, "budi")
	u2 := createUser(t, db, "siti")

	s1, _ := svc.GetOrCreateSession(u1.ID)
	s2, _ := svc.GetOrCreateSession(u2.ID)

	// 把 s1 的活跃时间推到更晚
	later := time.Now().Add(2 * time.Second)
	if err := db.Model(&models.ChatSession{}).Where("id = ?", s1.ID).Update("updated_at", later).Error; err != nil {
		t.Fatalf("touch session: %v", err)
	}

	summaries, err := svc.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summaries[0].ID != s1.ID || summaries[1].ID != s2.ID {
		t.Fatalf("expected order [%d %d], got [%d %d]", s1.ID, s2.ID, summaries[0].ID, summaries[1].ID)
	}
}

func TestMessagesEnrichAdminUsername(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	a1 := createAdmin(t, db, "cs-rina")
	a2 := createAdmin(t, db, "cs-dewi")
	session, _ := svc.GetOrCreateSession(user.ID)

	svc.SendUserMessage(user.ID, session.ID, "halo")
	svc.SendAdminMessage(a1.ID, session.ID, "hai")
	svc.SendAdminMessage(a2.ID, session.ID, "ada yang bisa dibantu?")

	msgs, err := svc.Messages(session.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].AdminUsername != "" {
		t.Fatalf("customer message must not carry admin username")
	}
	if msgs[1].AdminUsername != "cs-rina" || msgs[2].AdminUsername != "cs-dewi" {
		t.Fatalf("admin usernames not enriched: %q %q", msgs[1].AdminUsername, msgs[2].AdminUsername)
	}

	if _, err := svc.Messages(9999); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAdminAssignmentOnFirstReply(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	a1 := createAdmin(t, db, "cs1")
	a2 := createAdmin(t, db, "cs2")
	session, _ := svc.GetOrCreateSession(user.ID)

	if _, err := svc.SendAdminMessage(a1.ID, session.ID, "hai"); err != nil {
		t.Fatalf("send: %v", err)
	}
	var got models.ChatSession
	db.First(&got, session.ID)
	if got.AdminID == nil || *got.AdminID != a1.ID {
		t.Fatalf("session not claimed by first replying admin")
	}

	// 第二个客服回复不抢走会话
	if _, err := svc.SendAdminMessage(a2.ID, session.ID, "hai juga"); err != nil {
		t.Fatalf("send: %v", err)
	}
	db.First(&got, session.ID)
	if *got.AdminID != a1.ID {
		t.Fatalf("assignment must not change on later replies")
	}
}

func TestRecentWithAdmin(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)
	user := createUser(t, db, "budi")
	admin := createAdmin(t, db, "cs1")

	session, lastMsg, unread, err := svc.RecentWithAdmin(user.ID, admin.ID)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if session != nil || lastMsg != nil || unread != 0 {
		t.Fatalf("expected empty result without history")
	}

	s, _ := svc.GetOrCreateSession(user.ID)
	svc.SendUserMessage(user.ID, s.ID, "halo")
	svc.SendAdminMessage(admin.ID, s.ID, "hai")

	session, lastMsg, unread, err = svc.RecentWithAdmin(user.ID, admin.ID)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if session == nil || session.ID != s.ID {
		t.Fatalf("expected session %d", s.ID)
	}
	if lastMsg == nil || lastMsg.Content != "hai" {
		t.Fatalf("expected last message 'hai', got %+v", lastMsg)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread admin message for customer, got %d", unread)
	}
}

func TestListAdminsOrdering(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)

	now := time.Now()
	older := now.Add(-30 * time.Minute)
	newer := now.Add(-20 * time.Minute)

	// (online, A), (offline, B 更近), (offline, C)
	a := createAdmin(t, db, "andi")
	b := createAdmin(t, db, "bima")
	c := createAdmin(t, db, "cahya")
	db.Model(a).Updates(map[string]interface{}{"is_online": true, "last_seen": now})
	db.Model(b).Updates(map[string]interface{}{"is_online": false, "last_seen": newer})
	db.Model(c).Updates(map[string]interface{}{"is_online": false, "last_seen": older})

	list, err := svc.ListAdminsForCustomer()
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 admins, got %d", len(list))
	}
	got := []string{list[0].Username, list[1].Username, list[2].Username}
	want := []string{"andi", "bima", "cahya"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", got, want)
		}
	}
	if !list[0].Online || list[1].Online || list[2].Online {
		t.Fatalf("online flags wrong: %+v", list)
	}
}

func TestPresenceDecay(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)

	stale := time.Now().Add(-time.Hour)
	a := createAdmin(t, db, "andi")
	// 没走登出的僵尸在线状态: is_online 还是 true 但心跳早停了
	db.Model(a).Updates(map[string]interface{}{"is_online": true, "last_seen": stale})

	list, err := svc.ListAdminsForCustomer()
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if list[0].Online {
		t.Fatalf("stale heartbeat must count as offline")
	}
}

func TestInactiveAdminHiddenFromCustomer(t *testing.T) {
	db := setupChatDB(t)
	svc := newChatService(db)

	a := createAdmin(t, db, "andi")
	db.Model(a).Update("is_active", false)

	list, err := svc.ListAdminsForCustomer()
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("disabled admin must not be listed, got %d", len(list))
	}
}
