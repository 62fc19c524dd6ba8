package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// 请求来源
const (
	RequestFromWeb    = "web"
	RequestFromMobile = "mobile"
	RequestFromWeixin = "weixin"
	RequestFromAPI    = "api"
)

// HeaderRequestFrom 请求来源 Header
const HeaderRequestFrom = "RequestFrom"

const contextKeyRequestFrom = "request_from"

var requestFromValues = map[string]struct{}{
	RequestFromWeb:    {},
	RequestFromMobile: {},
	RequestFromWeixin: {},
	RequestFromAPI:    {},
}

// ParseRequestFrom 解析请求来源，缺失或非法时为 web
func ParseRequestFrom(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := requestFromValues[v]; ok {
		return v
	}
	return RequestFromWeb
}

// RequestFrom 请求来源中间件
func RequestFrom() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKeyRequestFrom, ParseRequestFrom(c.GetHeader(HeaderRequestFrom)))
		c.Next()
	}
}

// GetRequestFrom 获取请求来源
func GetRequestFrom(c *gin.Context) string {
	if v, ok := c.Get(contextKeyRequestFrom); ok {
		return v.(string)
	}
	return ParseRequestFrom(c.GetHeader(HeaderRequestFrom))
}
