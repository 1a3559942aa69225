package services

import (
	"errors"
	"time"

	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/config"
	"github.com/Cholifbima/Pemweb-Project-Besar-sub001/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrAdminInactive = errors.New("admin account is disabled")

// AdminAuthService 负责管理端登录和在线状态维护。
// 管理员令牌走独立密钥, 有效期默认 24 小时。
// 在线状态: 登录和每次 "me" 心跳置为在线, 只有显式登出置为离线;
// 客服列表查询时会结合 LastSeen 的新鲜度判断实际在线与否。
type AdminAuthService struct {
	Db          *gorm.DB
	jwtSecret   []byte
	tokenExpiry time.Duration
}

func NewAdminAuthService(db *gorm.DB, config *config.AuthConfig) *AdminAuthService {
	return &AdminAuthService{
		Db:          db,
		jwtSecret:   []byte(config.AdminJWTSecret),
		tokenExpiry: time.Duration(config.AdminTokenExpiry) * time.Hour,
	}
}

// AdminClaims 是所有管理端接口共用的令牌载荷, 字段名在签发和
// 校验两侧只有这一份定义。
type AdminClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AdminAuthService) GenerateToken(admin *models.Admin) (*models.AdminAuthResponse, error) {
	claims := &AdminClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &models.AdminAuthResponse{
		Token:     tokenString,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokenExpiry.Seconds()),
		Admin:     *admin,
	}, nil
}

func (s *AdminAuthService) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Login 成功后同时更新在线标记和登录时间。
func (s *AdminAuthService) Login(username, password string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.Db.Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	now := time.Now()
	admin.IsOnline = true
	admin.LastSeen = &now
	admin.LastLogin = &now
	if err := s.Db.Save(&admin).Error; err != nil {
		return nil, err
	}

	return &admin, nil
}

func (s *AdminAuthService) Logout(adminID uint) error {
	now := time.Now()
	return s.Db.Model(&models.Admin{}).Where("id = ?", adminID).
		Updates(map[string]interface{}{"is_online": false, "last_seen": now}).Error
}

// Heartbeat 在每次认证过的 "me" 请求里顺带刷新在线状态。
func (s *AdminAuthService) Heartbeat(adminID uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.Db.First(&admin, adminID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	admin.IsOnline = true
	admin.LastSeen = &now
	if err := s.Db.Save(&admin).Error; err != nil {
		return nil, err
	}

	return &admin, nil
}
