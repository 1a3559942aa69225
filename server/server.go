package server

import (
	"context"
	"time"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/config"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/handlers"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/kafka"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/limiter"
	custommiddleware "github.com/Cholifbima/Pemweb-Project-Besar-sub001/middleware"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"
	appredis "github.com/Cholifbima/Pemweb-Project-Besar-sub001/redis"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/services"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/storage"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Echo   *echo.Echo
	DB     *gorm.DB
	Config *config.Config

	AuthHandler       *handlers.AuthHandler
	AdminAuthHandler  *handlers.AdminAuthHandler
	ChatHandler       *handlers.ChatHandler
	AdminChatHandler  *handlers.AdminChatHandler
	ChatStreamHandler *handlers.ChatStreamHandler
	CatalogHandler    *handlers.CatalogHandler
	BalanceHandler    *handlers.BalanceHandler
	OrderHandler      *handlers.OrderHandler

	BalanceService *services.BalanceService

	consumer *kafka.Consumer
}

// NewServer 装配生产环境: 配置文件 + Postgres + Redis + Kafka + 对象存储。
func NewServer() *Server {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := models.AutoMigrateAll(db); err != nil {
		log.Fatal("Failed to auto-migrate database:", err)
	}

	// Redis 只服务限流, 连不上降级为不限流
	var limiterManager *limiter.Manager
	if cfg.Redis.Addr != "" {
		redisClient, err := appredis.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, rate limiting disabled:", err)
		} else {
			limiterManager = limiter.NewManager(redisClient.Client, &limiter.FixedWindowStrategy{})
		}
	}

	// Kafka 事件总线, 未配置时事件静默丢弃
	var publisher *kafka.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaCfg, err := kafka.NewSaramaConfig(&cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to build kafka config:", err)
		}
		publisher, err = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventTopic, kafkaCfg)
		if err != nil {
			log.Fatal("Failed to connect to kafka:", err)
		}
	}

	var store *storage.BlobStore
	if cfg.Storage.BucketURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = storage.NewBlobStore(ctx, &cfg.Storage)
		cancel()
		if err != nil {
			log.Fatal("Failed to open blob storage:", err)
		}
	}

	s := NewWithDB(&cfg, db, store, publisher, limiterManager)

	// 支付通知消费者: 入账走 BalanceService, 同样的事务保证
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaCfg, err := kafka.NewSaramaConfig(&cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to build kafka config:", err)
		}
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup,
			[]string{cfg.Kafka.PaymentTopic}, kafkaCfg, kafka.NewPaymentHandler(s.BalanceService))
		if err != nil {
			log.Fatal("Failed to start kafka consumer:", err)
		}
		s.consumer = consumer
	}

	return s
}

// NewWithDB 在给定的数据库连接上装配全部服务和路由。
// store/events/limiterManager 允许为 nil (测试环境)。
func NewWithDB(cfg *config.Config, db *gorm.DB, store *storage.BlobStore,
	events services.EventPublisher, limiterManager *limiter.Manager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.PATCH},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentLength},
		MaxAge:           86400,
	}))

	authService := services.NewAuthService(db, &cfg.Auth)
	adminAuthService := services.NewAdminAuthService(db, &cfg.Auth)
	chatService := services.NewChatService(db, &cfg.Chat)
	balanceService := services.NewBalanceService(db, events)
	orderService := services.NewOrderService(db, events)
	catalogService := services.NewCatalogService(db)

	hub := handlers.NewStreamHub()

	s := &Server{
		Echo:              e,
		DB:                db,
		Config:            cfg,
		AuthHandler:       handlers.NewAuthHandler(authService),
		AdminAuthHandler:  handlers.NewAdminAuthHandler(adminAuthService),
		ChatHandler:       handlers.NewChatHandler(chatService, hub),
		AdminChatHandler:  handlers.NewAdminChatHandler(chatService, store, hub),
		ChatStreamHandler: handlers.NewChatStreamHandler(hub, authService, adminAuthService),
		CatalogHandler:    handlers.NewCatalogHandler(catalogService),
		BalanceHandler:    handlers.NewBalanceHandler(balanceService),
		OrderHandler:      handlers.NewOrderHandler(orderService),
		BalanceService:    balanceService,
	}

	authMiddleware := custommiddleware.AuthMiddleware(authService)
	adminMiddleware := custommiddleware.AdminAuthMiddleware(adminAuthService)
	loginLimiter := custommiddleware.NewRateLimitMiddleware(limiterManager, custommiddleware.RateLimitConfig{
		Limit:  10,
		Window: time.Minute,
	})
	// 发消息允许突发, 走令牌桶而不是固定窗口
	sendLimiter := custommiddleware.NewRateLimitMiddleware(
		limiterManager.WithStrategy(&limiter.TokenBucketStrategy{}),
		custommiddleware.RateLimitConfig{
			Limit:  30,
			Window: time.Minute,
		})
	s.SetupRoutes(authMiddleware, adminMiddleware, loginLimiter, sendLimiter)
	return s
}

func (s *Server) Start(addr string) {
	if s.consumer != nil {
		go func() {
			if err := s.consumer.Start(context.Background()); err != nil {
				log.Error("Kafka consumer stopped:", err)
			}
		}()
	}
	log.Fatal(s.Echo.Start(addr))
}
