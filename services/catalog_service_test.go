package services

import (
	"fmt"
	"testing"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
)

func TestListGamesActiveOnly(t *testing.T) {
	db := setupChatDB(t)
	svc := NewCatalogService(db)

	db.Create(&models.Game{Name: "Valorant", Slug: "valorant", IsActive: true})
	db.Create(&models.Game{Name: "Mobile Legends", Slug: "ml", IsActive: true})
	// 下架状态建行时就得生效, 不能被建行默认值吃掉
	db.Create(&models.Game{Name: "Lama", Slug: "lama", IsActive: false})

	games, err := svc.ListGames()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 active games, got %d", len(games))
	}
	if games[0].Name != "Mobile Legends" || games[1].Name != "Valorant" {
		t.Fatalf("expected alphabetical order, got %s, %s", games[0].Name, games[1].Name)
	}
}

func TestGetGameByIDOrSlug(t *testing.T) {
	db := setupChatDB(t)
	svc := NewCatalogService(db)

	game := &models.Game{Name: "Mobile Legends", Slug: "mobile-legends", IsActive: true}
	db.Create(game)
	db.Create(&models.TopupItem{GameID: game.ID, Name: "86 Diamonds", Price: 25, IsActive: true})
	db.Create(&models.TopupItem{GameID: game.ID, Name: "Lama", Price: 5, IsActive: false})

	bySlug, err := svc.GetGame("mobile-legends")
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	byID, err := svc.GetGame(fmt.Sprintf("%d", game.ID))
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if bySlug.ID != byID.ID {
		t.Fatalf("slug and id lookup disagree")
	}
	if len(bySlug.TopupItems) != 1 {
		t.Fatalf("expected only active items preloaded, got %d", len(bySlug.TopupItems))
	}

	if _, err := svc.GetGame("tidak-ada"); err != ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestUpdateAndDeleteGame(t *testing.T) {
	db := setupChatDB(t)
	svc := NewCatalogService(db)

	game := &models.Game{Name: "Valorant", Slug: "valorant", IsActive: true}
	db.Create(game)

	updated, err := svc.UpdateGame(game.ID, map[string]interface{}{"category": "fps"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != "fps" {
		t.Fatalf("expected category fps, got %s", updated.Category)
	}
	if _, err := svc.UpdateGame(9999, map[string]interface{}{"category": "x"}); err != ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}

	if err := svc.DeleteGame(game.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteGame(game.ID); err != ErrGameNotFound {
		t.Fatalf("double delete: expected ErrGameNotFound, got %v", err)
	}
}

func TestCreateTopupItemRequiresGame(t *testing.T) {
	db := setupChatDB(t)
	svc := NewCatalogService(db)

	item := &models.TopupItem{GameID: 9999, Name: "86 Diamonds", Price: 25}
	if err := svc.CreateTopupItem(item); err != ErrGameNotFound {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}

	game := &models.Game{Name: "ML", Slug: "ml", IsActive: true}
	db.Create(game)
	item.GameID = game.ID
	if err := svc.CreateTopupItem(item); err != nil {
		t.Fatalf("create item: %v", err)
	}
}
