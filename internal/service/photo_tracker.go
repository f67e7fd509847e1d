package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storeops/internal/auth"
	"storeops/internal/model"
	"storeops/internal/repository"
	pkgerrors "storeops/pkg/errors"
)

// photoTracker 凭证照片计数与完成门槛
type photoTracker struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// RecordUpload 照片计数 +1 与照片记录写入在同一事务内完成；
// 计数的 UPDATE 自带上限条件，并发上传不会超出 photo_count
func (p *photoTracker) RecordUpload(ctx context.Context, task *model.Task, caller Caller, photo *model.ProofPhoto) error {
	if task.PhotoCapReached() {
		return pkgerrors.PhotoLimit("已上传 %d/%d 张，不能继续上传", task.PhotosUploaded, task.PhotoCount)
	}
	if !caller.Caps.Has(auth.CapBypassAssignment) {
		if task.IsSpecific() && !task.AssignedTo(caller.WorkerID) {
			return pkgerrors.Authorization("只有被指派员工可以上传照片")
		}
		if task.ClaimedBy != nil && !task.HeldBy(caller.WorkerID) {
			return pkgerrors.Authorization("任务已由其他员工持有")
		}
	}

	err := p.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Task.IncrementPhotos(ctx, task.TaskID); err != nil {
			return err
		}
		return txRepo.Photo.Create(ctx, photo)
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		p.logger.Error("记录凭证照片失败", zap.String("task_id", task.TaskID), zap.Error(err))
		return err
	}

	// 条件未命中：重新读取以区分「已完成」与「已达上限」
	latest, gerr := p.repo.Task.GetByID(ctx, task.TaskID)
	if gerr == nil && latest.Status.Terminal() {
		return pkgerrors.Conflict("任务已完成，不能继续上传照片")
	}
	if gerr == nil {
		return pkgerrors.PhotoLimit("已上传 %d/%d 张，不能继续上传", latest.PhotosUploaded, latest.PhotoCount)
	}
	return pkgerrors.PhotoLimit("照片数量已达上限")
}

// IsReadyToComplete 照片门槛：无需照片、数量已满足，或特权角色显式豁免
func IsReadyToComplete(task *model.Task, override bool, caps auth.CapabilitySet) bool {
	if task.PhotosSatisfied() {
		return true
	}
	return override && caps.Has(auth.CapOverridePhotoRequirement)
}
