package middleware

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/store"
)

// ==================== 签名认证配置 ====================

// SignatureConfig 服务间签名认证配置
type SignatureConfig struct {
	Realm         string        // Authorization 方案名
	RequestExpire time.Duration // 时间戳有效窗口
	NonceExpire   time.Duration // nonce 去重时长
	NoncePrefix   string        // nonce 键前缀
}

// DefaultSignatureConfig 默认配置
func DefaultSignatureConfig() *SignatureConfig {
	return &SignatureConfig{
		Realm:         "api",
		RequestExpire: 600 * time.Second,
		NonceExpire:   4 * time.Second,
		NoncePrefix:   "request_nonce",
	}
}

var signatureKeys = []string{"username", "password", "timestamp", "nonce"}

// ==================== SignatureScheme ====================

// SignatureScheme 签名认证方案
// 凭证为 base64(JSON{username,password,timestamp,nonce})
type SignatureScheme struct {
	cfg    *SignatureConfig
	users  UserFinder
	nonces store.NonceStore
	now    func() time.Time
}

// NewSignatureScheme 创建签名认证方案
func NewSignatureScheme(cfg *SignatureConfig, users UserFinder, nonces store.NonceStore) *SignatureScheme {
	if cfg == nil {
		cfg = DefaultSignatureConfig()
	}
	return &SignatureScheme{cfg: cfg, users: users, nonces: nonces, now: time.Now}
}

// WithClock 替换时钟
func (s *SignatureScheme) WithClock(now func() time.Time) *SignatureScheme {
	s.now = now
	return s
}

// Realm 方案名
func (s *SignatureScheme) Realm() string {
	return s.cfg.Realm
}

// Authenticate 校验签名凭证
func (s *SignatureScheme) Authenticate(c *gin.Context, credential string) (*CurrentUser, error) {
	raw, err := base64.StdEncoding.DecodeString(credential)
	if err != nil {
		return nil, errcode.Wrap(errcode.JWTDecodeErr, err, "凭证解码失败")
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errcode.Wrap(errcode.JWTDecodeErr, err, "凭证解码失败")
	}

	for _, key := range signatureKeys {
		if v, ok := payload[key]; !ok || v == nil {
			return nil, errcode.New(errcode.AuthErr, "缺少认证参数: %s", key)
		}
	}

	timestamp, err := cast.ToInt64E(payload["timestamp"])
	if err != nil {
		return nil, errcode.New(errcode.AuthErr, "timestamp 格式错误")
	}
	if s.now().Unix()-timestamp > int64(s.cfg.RequestExpire/time.Second) {
		return nil, errcode.New(errcode.JWTExpiredErr, "请求已过期")
	}

	ctx := c.Request.Context()
	nonceKey := s.cfg.NoncePrefix + cast.ToString(payload["nonce"])
	if _, seen, err := s.nonces.Get(ctx, nonceKey); err != nil {
		return nil, errcode.Wrap(errcode.SysErr, err, "nonce 校验失败")
	} else if seen {
		return nil, errcode.New(errcode.AuthErr, "重复请求")
	}
	origin := fmt.Sprintf("%s:%s:%s", c.ClientIP(), c.Request.Method, c.Request.URL.Path)
	if err := s.nonces.Set(ctx, nonceKey, origin, s.cfg.NonceExpire); err != nil {
		return nil, errcode.Wrap(errcode.SysErr, err, "nonce 写入失败")
	}

	user, err := s.users.GetByUsername(ctx, cast.ToString(payload["username"]))
	if err != nil {
		return nil, errcode.Wrap(errcode.DBErr, err, "")
	}
	if user == nil {
		return nil, errcode.New(errcode.UserNotExist, "")
	}
	if !user.CheckPassword(cast.ToString(payload["password"])) {
		return nil, errcode.New(errcode.PwdErr, "")
	}
	if err := checkUser(user); err != nil {
		return nil, err
	}
	return NewCurrentUser(user, GetRequestFrom(c)), nil
}

// EncodeSignature 生成签名凭证，供服务间调用
func EncodeSignature(username, password string, at time.Time) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"username":  username,
		"password":  password,
		"timestamp": at.Unix(),
		"nonce":     strings.ReplaceAll(uuid.NewString(), "-", ""),
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
