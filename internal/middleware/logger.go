package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plus_admin_v1/internal/api/dto"
	"plus_admin_v1/internal/errcode"
)

// RequestLogger 请求日志中间件
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_from", GetRequestFrom(c)),
		}
		if user := GetCurrentUser(c); user != nil {
			fields = append(fields, zap.String("username", user.Username))
		}
		log.Info("request", fields...)
	}
}

// Recovery 捕获路由层 panic，返回 4504
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusOK, dto.Fail(errcode.InnerErr, fmt.Sprint(r)))
			}
		}()
		c.Next()
	}
}
