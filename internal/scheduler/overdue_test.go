package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int64
	last  atomic.Value
	err   error
}

func (s *countingSweeper) SweepOverdue(_ context.Context, now time.Time) (int64, error) {
	s.calls.Add(1)
	s.last.Store(now)
	if s.err != nil {
		return 0, s.err
	}
	return 2, nil
}

func TestRunOnce_PassesClock(t *testing.T) {
	sw := &countingSweeper{}
	s := NewOverdueScheduler(sw, "@every 1m", zap.NewNop())
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce 失败: %v", err)
	}
	if n != 2 {
		t.Errorf("期望 2，实际=%d", n)
	}
	if got := sw.last.Load().(time.Time); !got.Equal(fixed) {
		t.Errorf("期望扫描时间 %v，实际=%v", fixed, got)
	}
}

func TestRunOnce_Error(t *testing.T) {
	sw := &countingSweeper{err: errors.New("db down")}
	s := NewOverdueScheduler(sw, "@every 1m", zap.NewNop())

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Error("期望返回错误")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewOverdueScheduler(&countingSweeper{}, "not a cron spec", zap.NewNop())
	if err := s.Start(); err == nil {
		t.Error("非法表达式应返回错误")
	}
}

func TestStart_RunsOnSchedule(t *testing.T) {
	sw := &countingSweeper{}
	s := NewOverdueScheduler(sw, "@every 1s", zap.NewNop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start 失败: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for sw.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if sw.calls.Load() == 0 {
		t.Error("5 秒内应至少执行一次扫描")
	}
}
