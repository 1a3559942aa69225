package middleware

import (
	"net/http"
	"strings"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware 认证顾客请求。令牌可以放 Authorization 头,
// 也可以走登录时种下的 httpOnly cookie。
func AuthMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, errMsg := extractToken(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": errMsg,
				})
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid token",
				})
			}
			var user models.User
			if err := authService.Db.First(&user, claims.UserID).Error; err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "user not found",
				})
			}

			c.Set("user", &user)
			return next(c)
		}
	}
}

// extractToken 依次尝试 Authorization 头和 cookie。
func extractToken(c echo.Context) (string, string) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "invalid authorization header"
		}
		return parts[1], ""
	}

	cookie, err := c.Cookie("token")
	if err == nil && cookie.Value != "" {
		return cookie.Value, ""
	}

	return "", "missing authorization token"
}
