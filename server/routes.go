package server

import (
	custommiddleware "github.com/Cholifbima/Pemweb-Project-Besar-sub001/middleware"

	"github.com/labstack/echo/v4"
)

func (s *Server) SetupRoutes(authMiddleware, adminMiddleware, loginLimiter, sendLimiter echo.MiddlewareFunc) {
	e := s.Echo
	api := e.Group("/api/v1")

	// Auth routes (unprotected)
	auth := api.Group("/auth")
	{
		auth.POST("/register", s.AuthHandler.Register, loginLimiter)
		auth.POST("/login", s.AuthHandler.Login, loginLimiter)
		auth.POST("/logout", s.AuthHandler.Logout)
	}

	// 公开目录
	api.GET("/games", s.CatalogHandler.ListGames)
	api.GET("/games/:id", s.CatalogHandler.GetGame)

	// 实时通道协商: 唯一允许匿名降级的入口, 不挂认证中间件
	api.GET("/chat/sessions/:id/ws", s.ChatStreamHandler.HandleWebSocket)

	// 需要顾客认证
	protected := api.Group("", authMiddleware)
	{
		protected.GET("/auth/me", s.AuthHandler.GetCurrentUser)

		protected.POST("/orders/topup", s.OrderHandler.PlaceOrder)
		protected.GET("/orders", s.OrderHandler.ListOrders)

		chat := protected.Group("/chat")
		{
			chat.GET("/session", s.ChatHandler.GetSession)              // 获取/创建当前会话
			chat.POST("/send", s.ChatHandler.SendMessage, sendLimiter)  // 发消息, 令牌桶限流
			chat.POST("/sessions/:id/read", s.ChatHandler.MarkRead)     // 标记客服消息已读
			chat.GET("/sessions/:id/messages", s.ChatHandler.GetMessages)
			chat.GET("/admins", s.ChatHandler.ListAdmins)               // 客服列表, 在线优先
			chat.GET("/recent/:adminId", s.ChatHandler.GetRecent)       // 与某客服最近的会话
		}
	}

	// 管理端
	admin := e.Group("/admin")
	admin.POST("/auth/login", s.AdminAuthHandler.Login, loginLimiter)

	adminProtected := admin.Group("", adminMiddleware)
	{
		adminProtected.GET("/auth/me", s.AdminAuthHandler.GetCurrentAdmin) // 顺带刷新心跳
		adminProtected.POST("/auth/logout", s.AdminAuthHandler.Logout)

		chat := adminProtected.Group("/chat")
		{
			chat.GET("/sessions", s.AdminChatHandler.ListSessions)
			chat.POST("/send", s.AdminChatHandler.SendMessage, sendLimiter)
			chat.POST("/sessions/:id/read", s.AdminChatHandler.MarkRead)
			chat.POST("/close", s.AdminChatHandler.CloseSession)
			chat.POST("/upload", s.AdminChatHandler.Upload)
		}

		adminProtected.POST("/users/:id/balance", s.BalanceHandler.AdjustBalance)
		adminProtected.GET("/users/:id/transactions", s.BalanceHandler.GetTransactions)

		adminProtected.POST("/games", s.CatalogHandler.CreateGame)
		adminProtected.PUT("/games/:id", s.CatalogHandler.UpdateGame)
		adminProtected.DELETE("/games/:id", s.CatalogHandler.DeleteGame, custommiddleware.SuperAdminMiddleware())
		adminProtected.POST("/topup-items", s.CatalogHandler.CreateTopupItem)
	}
}
