package middleware

import (
	"net/http"
	"strings"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

// AdminAuthMiddleware 认证管理端请求, 只接受 Bearer 头。
func AdminAuthMiddleware(adminAuthService *services.AdminAuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing authorization token",
				})
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid authorization header",
				})
			}

			claims, err := adminAuthService.ValidateToken(parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid token",
				})
			}
			var admin models.Admin
			if err := adminAuthService.Db.First(&admin, claims.AdminID).Error; err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "admin not found",
				})
			}
			if !admin.IsActive {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "admin account is disabled",
				})
			}

			c.Set("admin", &admin)
			return next(c)
		}
	}
}

// SuperAdminMiddleware 在 AdminAuthMiddleware 之后使用。
func SuperAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			admin, ok := c.Get("admin").(*models.Admin)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "unauthorized",
				})
			}
			if admin.Role != "super_admin" {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "super admin required",
				})
			}
			return next(c)
		}
	}
}
