package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
	"plus_admin_v1/internal/model"
)

// ==================== 认证方案 ====================

// UserFinder 认证时查询有效用户
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*model.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*model.SysUser, error)
}

// Scheme 认证方案，按 Authorization 首段匹配
type Scheme interface {
	Realm() string
	Authenticate(c *gin.Context, credential string) (*CurrentUser, error)
}

// Authenticator 按顺序尝试认证方案
type Authenticator struct {
	schemes []Scheme
	log     *zap.Logger
}

// NewAuthenticator 创建认证器
func NewAuthenticator(log *zap.Logger, schemes ...Scheme) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{schemes: schemes, log: log}
}

// Resolve 解析身份
// 无 Authorization 或无匹配方案返回 nil, nil（匿名）
func (a *Authenticator) Resolve(c *gin.Context) (*CurrentUser, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return nil, nil
	}

	parts := strings.Fields(header)
	for _, scheme := range a.schemes {
		if !strings.EqualFold(parts[0], scheme.Realm()) {
			continue
		}
		if len(parts) != 2 {
			return nil, errcode.New(errcode.JWTFormatErr, "Authorization 格式应为 %s {credential}", scheme.Realm())
		}
		return scheme.Authenticate(c, parts[1])
	}
	return nil, nil
}

// Middleware 认证中间件，失败时直接返回统一响应
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.Resolve(c)
		if err != nil {
			e, ok := errcode.From(err)
			if !ok {
				e = errcode.Wrap(errcode.AuthErr, err, "")
			}
			a.log.Warn("认证失败",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.String("code", string(e.Code)),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusOK, dto.FromError(e))
			return
		}

		if user != nil {
			SetCurrentUser(c, user)
		}
		c.Next()
	}
}

// checkUser 校验用户状态
func checkUser(user *model.SysUser) error {
	if user == nil {
		return errcode.New(errcode.UserNotExist, "")
	}
	if !user.IsActive {
		return errcode.New(errcode.NotActive, "")
	}
	return nil
}
