package handlers

import (
	"net/http"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListGames 获取在售游戏列表
func (h *CatalogHandler) ListGames(c echo.Context) error {
	games, err := h.catalogService.ListGames()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch games"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"games": games,
	})
}

// GetGame 获取游戏详情和可购买的面额
func (h *CatalogHandler) GetGame(c echo.Context) error {
	game, err := h.catalogService.GetGame(c.Param("id"))
	if err != nil {
		switch err {
		case services.ErrGameNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch game"})
		}
	}
	return c.JSON(http.StatusOK, game)
}

type CreateGameRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Slug     string `json:"slug" validate:"required,max=100"`
	Category string `json:"category" validate:"max=50"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// CreateGame 创建游戏（管理员）
func (h *CatalogHandler) CreateGame(c echo.Context) error {
	var req CreateGameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	game := &models.Game{
		Name:     req.Name,
		Slug:     req.Slug,
		Category: req.Category,
		ImageURL: req.ImageURL,
		IsActive: true,
	}
	if err := h.catalogService.CreateGame(game); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create game"})
	}
	return c.JSON(http.StatusCreated, game)
}

// UpdateGame 更新游戏（管理员）
func (h *CatalogHandler) UpdateGame(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid game ID"})
	}

	var req map[string]interface{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// 只接受白名单字段, 不信任任意 JSON 形状
	updates := make(map[string]interface{})
	for _, field := range []string{"name", "category", "image_url", "is_active"} {
		if v, ok := req[field]; ok {
			updates[field] = v
		}
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no updatable fields"})
	}

	game, err := h.catalogService.UpdateGame(id, updates)
	if err != nil {
		switch err {
		case services.ErrGameNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update game"})
		}
	}
	return c.JSON(http.StatusOK, game)
}

// DeleteGame 下架游戏（仅超级管理员）
func (h *CatalogHandler) DeleteGame(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid game ID"})
	}

	if err := h.catalogService.DeleteGame(id); err != nil {
		switch err {
		case services.ErrGameNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete game"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "game deleted"})
}

type CreateTopupItemRequest struct {
	GameID uint    `json:"game_id" validate:"required"`
	Name   string  `json:"name" validate:"required,max=100"`
	Amount int     `json:"amount" validate:"required,gt=0"`
	Price  float64 `json:"price" validate:"required,gt=0"`
}

// CreateTopupItem 给游戏添加充值面额（管理员）
func (h *CatalogHandler) CreateTopupItem(c echo.Context) error {
	var req CreateTopupItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	item := &models.TopupItem{
		GameID:   req.GameID,
		Name:     req.Name,
		Amount:   req.Amount,
		Price:    req.Price,
		IsActive: true,
	}
	if err := h.catalogService.CreateTopupItem(item); err != nil {
		switch err {
		case services.ErrGameNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		}
	}
	return c.JSON(http.StatusCreated, item)
}
