package store

import (
	"context"
	"sync"
	"time"
)

// cacheItem 值和过期时间
type cacheItem struct {
	value      string
	expiration time.Time
}

// MemoryStore 进程内键值存储，过期键懒删除，Sweep 批量清理
type MemoryStore struct {
	items sync.Map
	now   func() time.Time
}

// NewMemoryStore 创建进程内存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// WithClock 替换时钟
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Get 读取键值并校验是否过期
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	val, ok := s.items.Load(key)
	if !ok {
		return "", false, nil
	}

	item := val.(cacheItem)
	if !s.now().Before(item.expiration) {
		s.items.Delete(key) // 懒删除
		return "", false, nil
	}
	return item.value, true, nil
}

// Set 写入键值
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.items.Store(key, cacheItem{
		value:      value,
		expiration: s.now().Add(ttl),
	})
	return nil
}

// Sweep 清理已过期的键，返回清理数量
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0
	s.items.Range(func(key, val any) bool {
		if !now.Before(val.(cacheItem).expiration) {
			s.items.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len 当前键数量（含未清理的过期键）
func (s *MemoryStore) Len() int {
	n := 0
	s.items.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
