package viewset

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"plus_admin_v1/internal/middleware"
)

// Context 单次请求的处理上下文
type Context struct {
	*gin.Context
	view *View
	user *middleware.CurrentUser
	tx   *gorm.DB
	args Params
	data Params
}

// Ctx 请求 context，携带当前身份
func (c *Context) Ctx() context.Context {
	return c.Request.Context()
}

// DB 当前事务，事务外返回普通连接
func (c *Context) DB() *gorm.DB {
	if c.tx != nil {
		return c.tx
	}
	return c.view.db.WithContext(c.Ctx())
}

// CurrentUser 当前身份，匿名时 ID 为空
func (c *Context) CurrentUser() *middleware.CurrentUser {
	return c.user
}

// RequestFrom 请求来源
func (c *Context) RequestFrom() string {
	return c.user.RequestFrom
}

// Resource 资源名
func (c *Context) Resource() string {
	return c.view.Resource
}

// Args URL 查询参数
func (c *Context) Args() Params {
	if c.args == nil {
		c.args = ParseArgs(c.Request)
	}
	return c.args
}

// Data 请求体参数
func (c *Context) Data() Params {
	if c.data == nil {
		c.data = ParseData(c.Context)
	}
	return c.data
}
