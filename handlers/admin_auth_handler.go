package handlers

import (
	"net/http"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

type AdminAuthHandler struct {
	adminAuthService *services.AdminAuthService
}

func NewAdminAuthHandler(adminAuthService *services.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{adminAuthService: adminAuthService}
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	admin, err := h.adminAuthService.Login(req.Username, req.Password)
	if err != nil {
		switch err {
		case services.ErrAdminInactive:
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
	}

	resp, err := h.adminAuthService.GenerateToken(admin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate token"})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetCurrentAdmin 的副作用是刷新在线心跳。
func (h *AdminAuthHandler) GetCurrentAdmin(c echo.Context) error {
	admin := c.Get("admin").(*models.Admin)

	refreshed, err := h.adminAuthService.Heartbeat(admin.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to refresh presence"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admin": refreshed,
	})
}

func (h *AdminAuthHandler) Logout(c echo.Context) error {
	admin := c.Get("admin").(*models.Admin)

	if err := h.adminAuthService.Logout(admin.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to logout"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
