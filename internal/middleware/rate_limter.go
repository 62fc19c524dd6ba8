package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== LoginLimiter 登录限流器 ====================

// LoginLimiter 登录失败限流
// 同一 key 在 window 内失败 maxFailures 次后冷却 cooldown
type LoginLimiter struct {
	entries     sync.Map // key -> *loginEntry
	maxFailures int
	window      time.Duration
	cooldown    time.Duration
	now         func() time.Time
}

// loginEntry 失败记录
type loginEntry struct {
	mu          sync.Mutex
	failures    int
	firstFail   time.Time
	lockedUntil time.Time
}

// NewLoginLimiter 创建登录限流器
func NewLoginLimiter(maxFailures int, window, cooldown time.Duration) *LoginLimiter {
	return &LoginLimiter{
		maxFailures: maxFailures,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// WithClock 替换时钟
func (l *LoginLimiter) WithClock(now func() time.Time) *LoginLimiter {
	l.now = now
	return l
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许尝试登录
func (l *LoginLimiter) Check(key string) CheckResult {
	if l == nil || l.maxFailures <= 0 {
		return CheckResult{Allowed: true}
	}
	actual, ok := l.entries.Load(key)
	if !ok {
		return CheckResult{Allowed: true}
	}

	entry := actual.(*loginEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if remain := entry.lockedUntil.Sub(l.now()); remain > 0 {
		return CheckResult{Allowed: false, RetryAfter: remain}
	}
	return CheckResult{Allowed: true}
}

// Fail 记录一次失败
func (l *LoginLimiter) Fail(key string) {
	if l == nil || l.maxFailures <= 0 {
		return
	}
	actual, _ := l.entries.LoadOrStore(key, &loginEntry{})
	entry := actual.(*loginEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.now()
	if entry.failures == 0 || now.Sub(entry.firstFail) > l.window {
		entry.failures = 0
		entry.firstFail = now
	}
	entry.failures++
	if entry.failures >= l.maxFailures {
		entry.lockedUntil = now.Add(l.cooldown)
		entry.failures = 0
	}
}

// Reset 登录成功后清除记录
func (l *LoginLimiter) Reset(key string) {
	if l == nil {
		return
	}
	l.entries.Delete(key)
}

// LoginKey 生成限流 Key
func LoginKey(username, clientIP string) string {
	return fmt.Sprintf("login:%s:%s", username, clientIP)
}
