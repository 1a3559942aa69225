package handlers

import (
	"net/http"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type PlaceOrderRequest struct {
	TopupItemID   uint   `json:"topup_item_id" validate:"required"`
	GameAccountID string `json:"game_account_id" validate:"required,max=100"`
}

// PlaceOrder 余额支付下单, 价格以服务端为准。
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	order, err := h.orderService.PlaceTopupOrder(user.ID, req.TopupItemID, req.GameAccountID)
	if err != nil {
		switch err {
		case services.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case services.ErrItemInactive:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case services.ErrInsufficientBalance:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to place order"})
		}
	}
	return c.JSON(http.StatusCreated, order)
}

// ListOrders 返回自己的订单历史。
func (h *OrderHandler) ListOrders(c echo.Context) error {
	user := c.Get("user").(*models.User)

	orders, err := h.orderService.ListOrders(user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
	})
}
