package handlers

import (
	"net/http"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

type BalanceHandler struct {
	balanceService *services.BalanceService
}

func NewBalanceHandler(balanceService *services.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

type AdjustBalanceRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Action string  `json:"action" validate:"required,oneof=add subtract"`
}

// AdjustBalance 管理员增减用户余额。扣减导致负余额时整单拒绝,
// 余额和流水都不动。
func (h *BalanceHandler) AdjustBalance(c echo.Context) error {
	admin := c.Get("admin").(*models.Admin)

	userID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
	}

	var req AdjustBalanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.balanceService.Adjust(admin.ID, userID, req.Amount, req.Action)
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrInvalidAmount, services.ErrInvalidAction:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrInsufficientBalance:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to adjust balance"})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// GetTransactions 返回用户流水（管理员视角）。
func (h *BalanceHandler) GetTransactions(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
	}

	txs, err := h.balanceService.Transactions(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch transactions"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": txs,
	})
}
