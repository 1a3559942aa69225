package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Redis    RedisConfig    `json:"redis"`
	Kafka    KafkaConfig    `json:"kafka"`
	Storage  StorageConfig  `json:"storage"`
	Chat     ChatConfig     `json:"chat"`
}

type ServerConfig struct {
	Addr        string   `json:"addr"`         // 监听地址, 如 ":8080"
	CORSOrigins []string `json:"cors_origins"` // 允许携带 cookie 的前端地址
}

type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

type AuthConfig struct {
	UserJWTSecret    string `json:"user_jwt_secret"`
	AdminJWTSecret   string `json:"admin_jwt_secret"`
	UserTokenExpiry  int    `json:"user_token_expiry"`  // in hours, 默认 168 (7天)
	AdminTokenExpiry int    `json:"admin_token_expiry"` // in hours, 默认 24
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type KafkaConfig struct {
	Brokers       []string `json:"brokers"`
	Username      string   `json:"username"`
	Password      string   `json:"password"`
	UseTLS        bool     `json:"use_tls"`
	CertFile      string   `json:"cert_file"`
	KeyFile       string   `json:"key_file"`
	CAFile        string   `json:"ca_file"`
	EventTopic    string   `json:"event_topic"`   // 订单/余额审计事件
	PaymentTopic  string   `json:"payment_topic"` // 支付网关回调通知
	ConsumerGroup string   `json:"consumer_group"`
}

type StorageConfig struct {
	// gocloud.dev blob URL, 如 "file:///var/data/uploads" 或 "s3://bucket"
	BucketURL string `json:"bucket_url"`
	// 附件对外访问的基础地址
	PublicBaseURL string `json:"public_base_url"`
}

type ChatConfig struct {
	// 管理员多少分钟没有心跳后视为离线
	PresenceWindowMinutes int `json:"presence_window_minutes"`
}

func LoadConfig() (config Config, err error) {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config/config.json"
	}
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer func(file *os.File) {
		closeErr := file.Close()
		if closeErr != nil {
			log.Printf("Error closing config file: %v", closeErr)
		}
	}(file)
	decoder := json.NewDecoder(file)
	err = decoder.Decode(&config)
	if err != nil {
		return config, err
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Auth.UserTokenExpiry == 0 {
		c.Auth.UserTokenExpiry = 24 * 7
	}
	if c.Auth.AdminTokenExpiry == 0 {
		c.Auth.AdminTokenExpiry = 24
	}
	if c.Chat.PresenceWindowMinutes == 0 {
		c.Chat.PresenceWindowMinutes = 5
	}
	if c.Kafka.EventTopic == "" {
		c.Kafka.EventTopic = "store-events"
	}
	if c.Kafka.PaymentTopic == "" {
		c.Kafka.PaymentTopic = "payment-notifications"
	}
	if c.Kafka.ConsumerGroup == "" {
		c.Kafka.ConsumerGroup = "store-backend"
	}
}
