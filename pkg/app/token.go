package app

import (
	"fmt"
	"time"

	"github.com/haierkeys/pin-notes-service/pkg/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "pin-notes-service"

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"` // JWT 签名密钥
	Expiry    time.Duration `yaml:"expiry"`     // Token 过期时间，默认 7 天
	Issuer    string        `yaml:"issuer"`     // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	Generate(username, ip string) (string, *UserEntity, error)
	Parse(token string) (*UserEntity, error)
	Validate(token string) error
}

// tokenManager 实现 TokenManager 接口
type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg}
}

// UserEntity 会话令牌中携带的用户信息，RegisteredClaims.ID 为会话 ID (jti)
type UserEntity struct {
	Username string `json:"username"`
	IP       string `json:"ip"`
	jwt.RegisteredClaims
}

func (t *tokenManager) signingKey() []byte {
	return []byte(t.config.SecretKey + "_" + util.GetMachineID())
}

// Generate 生成一个新的 JWT Token
func (t *tokenManager) Generate(username, ip string) (string, *UserEntity, error) {
	now := time.Now()
	claims := &UserEntity{
		Username: username,
		IP:       ip,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   "user-token",
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey())
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse 解析 JWT Token 并返回用户信息
func (t *tokenManager) Parse(token string) (*UserEntity, error) {
	claims := &UserEntity{}

	parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.signingKey(), nil
	}, jwt.WithIssuer(t.config.Issuer), jwt.WithSubject("user-token"))
	if err != nil {
		return nil, err
	}

	if !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// Validate 验证 Token 是否有效
func (t *tokenManager) Validate(token string) error {
	_, err := t.Parse(token)
	return err
}
