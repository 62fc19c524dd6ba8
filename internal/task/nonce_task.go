package task

import (
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ==================== NonceSweepTask 请求 nonce 清理任务 ====================

// Sweeper 可清理过期键的存储
type Sweeper interface {
	Sweep() int
}

// NonceSweepTask 定时清理内存 nonce 存储中的过期键
type NonceSweepTask struct {
	store Sweeper
	spec  string
	log   *zap.Logger
	cron  *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewNonceSweepTask 创建清理任务，spec 为 cron 表达式，如 "@every 1m"
func NewNonceSweepTask(store Sweeper, spec string, log *zap.Logger) *NonceSweepTask {
	if spec == "" {
		spec = "@every 1m"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NonceSweepTask{
		store: store,
		spec:  spec,
		log:   log.Named("nonce_sweep"),
		cron:  cron.New(),
	}
}

// Start 启动定时任务
func (t *NonceSweepTask) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return nil
	}
	if _, err := t.cron.AddFunc(t.spec, func() { t.RunOnce() }); err != nil {
		return err
	}
	t.cron.Start()
	t.running = true
	t.log.Info("nonce 清理任务已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止定时任务，等待执行中的任务结束
func (t *NonceSweepTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	<-t.cron.Stop().Done()
	t.running = false
	t.log.Info("nonce 清理任务已停止")
}

// RunOnce 执行一次清理，返回清理数量
func (t *NonceSweepTask) RunOnce() int {
	n := t.store.Sweep()
	if n > 0 {
		t.log.Debug("清理过期 nonce", zap.Int("count", n))
	}
	return n
}
