package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"plus_admin_v1/internal/model"
)

// ==================== 当前用户 ====================

// CurrentUser 当前请求身份，匿名请求 ID 与 Role 为空
type CurrentUser struct {
	ID          *int64 `json:"id"`
	Username    string `json:"username"`
	Role        *int   `json:"role"`
	RequestFrom string `json:"request_from"`
}

// NewCurrentUser 由用户记录构造身份
func NewCurrentUser(user *model.SysUser, requestFrom string) *CurrentUser {
	id := user.ID
	role := user.Role
	return &CurrentUser{
		ID:          &id,
		Username:    user.Username,
		Role:        &role,
		RequestFrom: requestFrom,
	}
}

// Anonymous 匿名身份，用户名取请求 Host
func Anonymous(c *gin.Context) *CurrentUser {
	return &CurrentUser{
		Username:    c.Request.Host,
		RequestFrom: GetRequestFrom(c),
	}
}

// IsAuthenticated 是否已登录
func (u *CurrentUser) IsAuthenticated() bool {
	return u != nil && u.ID != nil
}

// IsAdmin 是否管理员
func (u *CurrentUser) IsAdmin() bool {
	return u.IsAuthenticated() && u.Role != nil && *u.Role == model.RoleAdmin
}

// UserID 用户 ID，匿名返回 0
func (u *CurrentUser) UserID() int64 {
	if u == nil || u.ID == nil {
		return 0
	}
	return *u.ID
}

// ==================== Context 读写 ====================

// ContextKeyCurrentUser gin Context Key
const ContextKeyCurrentUser = "current_user"

type currentUserKey struct{}

// WithCurrentUser 注入身份到 context
func WithCurrentUser(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey{}, user)
}

// UserFromContext 从 context 获取身份
func UserFromContext(ctx context.Context) *CurrentUser {
	if ctx == nil {
		return nil
	}
	if user, ok := ctx.Value(currentUserKey{}).(*CurrentUser); ok {
		return user
	}
	return nil
}

// SetCurrentUser 同时写入 gin Context 与 request context
func SetCurrentUser(c *gin.Context, user *CurrentUser) {
	c.Set(ContextKeyCurrentUser, user)
	c.Request = c.Request.WithContext(WithCurrentUser(c.Request.Context(), user))
}

// GetCurrentUser 获取已认证身份，未认证返回 nil
func GetCurrentUser(c *gin.Context) *CurrentUser {
	if v, exists := c.Get(ContextKeyCurrentUser); exists {
		if user, ok := v.(*CurrentUser); ok {
			return user
		}
	}
	return nil
}
