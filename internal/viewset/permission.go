package viewset

import (
	"context"
	"slices"

	"plus_admin_v1/internal/errcode"
)

// ==================== 权限 ====================

// Permission 权限检查，不通过时返回业务错误
type Permission interface {
	Check(c *Context) error
}

// PermissionFunc 函数形式的权限检查
type PermissionFunc func(c *Context) error

func (f PermissionFunc) Check(c *Context) error {
	return f(c)
}

// IsLogin 必须登录
var IsLogin Permission = PermissionFunc(func(c *Context) error {
	if !c.CurrentUser().IsAuthenticated() {
		return errcode.New(errcode.NotLogin, "")
	}
	return nil
})

// IsAdmin 必须为管理员
var IsAdmin Permission = PermissionFunc(func(c *Context) error {
	if !c.CurrentUser().IsAdmin() {
		return errcode.New(errcode.NoPerm, "需要管理员权限")
	}
	return nil
})

// RequestFrom 限定请求来源
func RequestFrom(origins ...string) Permission {
	return PermissionFunc(func(c *Context) error {
		if !slices.Contains(origins, c.RequestFrom()) {
			return errcode.New(errcode.NoPerm, "不允许的请求来源: %s", c.RequestFrom())
		}
		return nil
	})
}

// GrantChecker 接口授权查询
type GrantChecker interface {
	HasGrant(ctx context.Context, username, method, uri string) (bool, error)
}

// DataAPI 接口授权，管理员直接通过，其余用户需存在 方法+路径 的授权
func DataAPI(grants GrantChecker) Permission {
	return PermissionFunc(func(c *Context) error {
		user := c.CurrentUser()
		if user.IsAdmin() {
			return nil
		}
		if !user.IsAuthenticated() {
			return errcode.New(errcode.NoPerm, "")
		}

		ok, err := grants.HasGrant(c.Ctx(), user.Username, c.Request.Method, c.Request.URL.Path)
		if err != nil {
			return err
		}
		if !ok {
			return errcode.New(errcode.NoPerm, "未授权的接口: %s %s", c.Request.Method, c.Request.URL.Path)
		}
		return nil
	})
}

