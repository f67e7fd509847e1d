package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeops/internal/auth"
	"storeops/internal/model"
	"storeops/internal/repository"
	pkgerrors "storeops/pkg/errors"
	"storeops/pkg/geo"
)

// claimArbiter 认领仲裁：前置校验通过后以单条条件 UPDATE 决出唯一持有人，不做内部重试
type claimArbiter struct {
	repo            *repository.Repository
	policy          FencePolicy
	checkinRequired bool
	now             Clock
	logger          *zap.Logger
}

func (a *claimArbiter) Claim(ctx context.Context, caller Caller, taskID string, point *geo.Point) (*model.Task, error) {
	if err := caller.require(auth.CapClaimTask); err != nil {
		return nil, err
	}

	task, err := getTask(ctx, a.repo, taskID, a.logger)
	if err != nil {
		return nil, err
	}

	// 1. 门店与指派校验
	if err := caller.requireSite(task.SiteID); err != nil {
		return nil, err
	}
	if task.IsSpecific() && !task.AssignedTo(caller.WorkerID) {
		return nil, pkgerrors.Authorization("该任务已指派给其他员工")
	}
	if !task.Status.Claimable() || task.ClaimedBy != nil {
		return nil, pkgerrors.Conflict("任务已被认领或当前不可认领")
	}

	// 2. 签到与位置校验
	session, err := sessionAt(ctx, a.repo, caller.WorkerID, task.SiteID)
	if err != nil {
		a.logger.Error("读取签到会话失败", zap.String("worker_id", caller.WorkerID), zap.Error(err))
		return nil, err
	}
	if a.checkinRequired && session == nil {
		return nil, pkgerrors.Authorization("请先在任务所在门店签到")
	}
	if err := a.policy.Check(task, session, point); err != nil {
		return nil, err
	}

	// 3. 条件写入
	if err := a.repo.Task.Claim(ctx, task.TaskID, caller.WorkerID, a.now()); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.Conflict("任务已被认领或当前不可认领")
		}
		a.logger.Error("认领任务失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	return getTask(ctx, a.repo, taskID, a.logger)
}

// getTask 读取任务，不存在时返回 NotFoundError
func getTask(ctx context.Context, repo *repository.Repository, taskID string, logger *zap.Logger) (*model.Task, error) {
	task, err := repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("任务 %s 不存在", taskID)
		}
		logger.Error("查询任务失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	return task, nil
}
