package task

import (
	"go.uber.org/zap"
)

// ==================== TaskManager 任务管理器 ====================

// Task 定时任务
type Task interface {
	Start() error
	Stop()
}

// TaskManager 统一启停定时任务
type TaskManager struct {
	tasks []Task
	log   *zap.Logger
}

// NewTaskManager 创建任务管理器，nil 任务会被忽略
func NewTaskManager(log *zap.Logger, tasks ...Task) *TaskManager {
	if log == nil {
		log = zap.NewNop()
	}
	tm := &TaskManager{log: log}
	for _, t := range tasks {
		if t != nil {
			tm.tasks = append(tm.tasks, t)
		}
	}
	return tm
}

// StartAll 启动全部任务，失败时停止已启动的任务
func (tm *TaskManager) StartAll() error {
	for i, t := range tm.tasks {
		if err := t.Start(); err != nil {
			for _, started := range tm.tasks[:i] {
				started.Stop()
			}
			return err
		}
	}
	tm.log.Info("定时任务已启动", zap.Int("count", len(tm.tasks)))
	return nil
}

// StopAll 按启动的逆序停止全部任务
func (tm *TaskManager) StopAll() {
	for i := len(tm.tasks) - 1; i >= 0; i-- {
		tm.tasks[i].Stop()
	}
}
