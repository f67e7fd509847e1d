package service

import (
	"context"

	"go.uber.org/zap"

	"storeops/internal/model"
)

// Notifier 任务事件分发；实现方自行处理投递失败
type Notifier interface {
	Notify(ctx context.Context, event model.TaskEvent) error
}

// LogNotifier 将事件写入日志
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志分发器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event model.TaskEvent) error {
	n.logger.Info("任务事件",
		zap.String("type", string(event.Type)),
		zap.String("site_id", event.SiteID),
		zap.String("task_id", event.TaskID),
		zap.String("worker_id", event.WorkerID),
	)
	return nil
}

// MultiNotifier 依次分发给多个 Notifier，返回第一个错误
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event model.TaskEvent) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// dispatch 分发事件；失败只记录日志，不影响已完成的业务操作
func dispatch(ctx context.Context, n Notifier, logger *zap.Logger, event model.TaskEvent) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event); err != nil {
		logger.Warn("任务事件分发失败",
			zap.String("type", string(event.Type)),
			zap.String("task_id", event.TaskID),
			zap.Error(err),
		)
	}
}
