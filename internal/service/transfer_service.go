package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeops/config"
	"storeops/internal/auth"
	"storeops/internal/dto"
	"storeops/internal/model"
	"storeops/internal/repository"
	pkgerrors "storeops/pkg/errors"
)

// TransferService 任务转派业务接口
type TransferService interface {
	// Transfer 将持有中的任务转给同店另一员工；认领与开始时间保持不变
	Transfer(ctx context.Context, caller Caller, taskID string, req *dto.TransferTaskRequest) (*model.TaskTransfer, error)
}

type transferService struct {
	repo            *repository.Repository
	checkinRequired bool
	notifier        Notifier
	now             Clock
	logger          *zap.Logger
}

// NewTransferService 创建 TransferService 实例
func NewTransferService(cfg *config.Config, repo *repository.Repository, notifier Notifier, logger *zap.Logger) TransferService {
	return &transferService{
		repo:            repo,
		checkinRequired: cfg.Checkin.Required,
		notifier:        notifier,
		now:             utcNow,
		logger:          logger,
	}
}

func (s *transferService) Transfer(ctx context.Context, caller Caller, taskID string, req *dto.TransferTaskRequest) (*model.TaskTransfer, error) {
	task, err := getTask(ctx, s.repo, taskID, s.logger)
	if err != nil {
		return nil, err
	}
	if err := caller.requireSite(task.SiteID); err != nil {
		return nil, err
	}
	if task.ClaimedBy == nil {
		return nil, pkgerrors.Conflict("任务尚未被认领，不能转派")
	}

	// 1. 转出人默认为当前持有人
	from := *task.ClaimedBy
	if req.FromWorkerID != "" {
		from = req.FromWorkerID
	}
	if from == req.ToWorkerID {
		return nil, pkgerrors.Validation("转出与转入员工不能相同")
	}
	if from != caller.WorkerID && !caller.Caps.Has(auth.CapTransferTask) {
		return nil, pkgerrors.Authorization("只有任务持有人或管理员可以转派")
	}

	// 2. 双方均须为该门店员工，转入方须在职且可处理任务
	if _, err := s.siteWorker(ctx, from, task.SiteID); err != nil {
		return nil, err
	}
	to, err := s.siteWorker(ctx, req.ToWorkerID, task.SiteID)
	if err != nil {
		return nil, err
	}
	if !to.IsActive || !to.Capabilities().Has(auth.CapHandleTask) {
		return nil, pkgerrors.Validation("转入员工已停用或不能处理任务")
	}
	if s.checkinRequired {
		session, err := sessionAt(ctx, s.repo, to.WorkerID, task.SiteID)
		if err != nil {
			s.logger.Error("读取签到会话失败", zap.String("worker_id", to.WorkerID), zap.Error(err))
			return nil, err
		}
		if session == nil {
			return nil, pkgerrors.Validation("转入员工尚未在该门店签到")
		}
	}

	// 3. 改派与审计记录在同一事务内
	transfer := &model.TaskTransfer{
		TaskID:        task.TaskID,
		FromWorkerID:  from,
		ToWorkerID:    to.WorkerID,
		Reason:        req.Reason,
		TransferredBy: caller.WorkerID,
		CreatedAt:     s.now(),
	}
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Task.Reassign(ctx, task.TaskID, from, to.WorkerID); err != nil {
			return err
		}
		return txRepo.Transfer.Create(ctx, transfer)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.Conflict("任务不再由 %s 持有或已完成", from)
		}
		s.logger.Error("转派任务失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("任务已转派",
		zap.String("task_id", task.TaskID),
		zap.String("from", from),
		zap.String("to", to.WorkerID),
		zap.String("by", caller.WorkerID),
	)
	dispatch(ctx, s.notifier, s.logger, model.TaskEvent{
		Type:     model.EventTaskTransferred,
		SiteID:   task.SiteID,
		TaskID:   task.TaskID,
		Title:    task.Title,
		WorkerID: to.WorkerID,
		Transfer: transfer,
		At:       transfer.CreatedAt,
	})
	return transfer, nil
}

func (s *transferService) siteWorker(ctx context.Context, workerID, siteID string) (*model.Worker, error) {
	w, err := s.repo.Worker.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("员工 %s 不存在", workerID)
		}
		s.logger.Error("查询员工失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	if w.SiteID != siteID {
		return nil, pkgerrors.Validation("员工 %s 不属于任务所在门店", workerID)
	}
	return w, nil
}
