package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/model"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
type JWTConfig struct {
	Realm     string        // Authorization 方案名
	SecretKey string        // 签名密钥
	TTL       time.Duration // Token 有效期
	Leeway    time.Duration // 时间校验容差
	Issuer    string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Realm:     "jwt",
		SecretKey: "plus-admin-secret-key-change-in-production",
		TTL:       12 * time.Hour,
		Leeway:    10 * time.Second,
		Issuer:    "plus-admin",
	}
}

// ==================== Claims 定义 ====================

// UserClaims 用户声明，identity 为用户 ID
type UserClaims struct {
	Identity int64 `json:"identity"`
	jwt.RegisteredClaims
}

// ==================== JWTScheme ====================

// JWTScheme JWT 认证方案
type JWTScheme struct {
	cfg   *JWTConfig
	users UserFinder
	now   func() time.Time
}

// NewJWTScheme 创建 JWT 认证方案
func NewJWTScheme(cfg *JWTConfig, users UserFinder) *JWTScheme {
	if cfg == nil {
		cfg = DefaultJWTConfig()
	}
	return &JWTScheme{cfg: cfg, users: users, now: time.Now}
}

// WithClock 替换时钟
func (s *JWTScheme) WithClock(now func() time.Time) *JWTScheme {
	s.now = now
	return s
}

// Realm 方案名
func (s *JWTScheme) Realm() string {
	return s.cfg.Realm
}

// GenerateToken 签发 Token
func (s *JWTScheme) GenerateToken(userID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TTL)
	claims := &UserClaims{
		Identity: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken 解析 Token
func (s *JWTScheme) ParseToken(tokenString string) (*UserClaims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return nil, errcode.New(errcode.JWTFormatErr, "token 应由三段组成")
	}

	claims := &UserClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return []byte(s.cfg.SecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.cfg.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errcode.Wrap(errcode.JWTExpiredErr, err, "")
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, errcode.Wrap(errcode.JWTImmatureErr, err, "")
	default:
		return nil, errcode.Wrap(errcode.JWTDecodeErr, err, "")
	}
}

// Authenticate 校验 Token 并加载用户
func (s *JWTScheme) Authenticate(c *gin.Context, credential string) (*CurrentUser, error) {
	claims, err := s.ParseToken(credential)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(c.Request.Context(), claims.Identity)
	if err != nil {
		return nil, errcode.Wrap(errcode.DBErr, err, "")
	}
	if err := checkUser(user); err != nil {
		return nil, err
	}
	return NewCurrentUser(user, GetRequestFrom(c)), nil
}

// IssueFor 为用户签发 Token
func (s *JWTScheme) IssueFor(user *model.SysUser) (string, time.Time, error) {
	return s.GenerateToken(user.ID)
}
