package store

import (
	"context"
	"time"
)

// NonceStore 防重放使用的键值存储
type NonceStore interface {
	// Get 读取键值，不存在或已过期返回 false
	Get(ctx context.Context, key string) (string, bool, error)
	// Set 写入键值并设置过期时间
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
