// Package scheduler 定时任务：按 cron 表达式批量标记逾期任务。
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout 单次扫描的超时
const sweepTimeout = 30 * time.Second

// OverdueSweeper 批量逾期标记
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

// OverdueScheduler 逾期扫描调度器
type OverdueScheduler struct {
	cron    *cron.Cron
	sweeper OverdueSweeper
	spec    string
	jobID   cron.EntryID
	now     func() time.Time
	logger  *zap.Logger
}

// NewOverdueScheduler 创建调度器
// spec 支持标准 5 段表达式与 @every/@hourly 等描述符
func NewOverdueScheduler(sweeper OverdueSweeper, spec string, logger *zap.Logger) *OverdueScheduler {
	cl := cronLogger{logger.Sugar()}
	return &OverdueScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		sweeper: sweeper,
		spec:    spec,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// Start 注册任务并启动调度
func (s *OverdueScheduler) Start() error {
	id, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("注册逾期扫描任务失败: %w", err)
	}
	s.jobID = id
	s.cron.Start()
	s.logger.Info("逾期扫描已启动", zap.String("spec", s.spec))
	return nil
}

// Stop 停止调度，等待正在执行的扫描结束或 ctx 到期
func (s *OverdueScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("逾期扫描未在超时前结束")
	}
}

// RunOnce 立即执行一次扫描
func (s *OverdueScheduler) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.sweeper.SweepOverdue(ctx, s.now())
	if err != nil {
		s.logger.Error("逾期扫描失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// cronLogger 将 cron 内部日志写入 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
