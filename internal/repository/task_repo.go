package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storeops/internal/model"
	pkgerrors "storeops/pkg/errors"
)

// TaskRepository 任务数据访问接口
//
// 所有状态变更均为带前置条件的单条 UPDATE：
// 条件不满足（影响行数为 0）时返回 pkgerrors.ErrOptimisticLock，由 Service 层重新读取后判定具体原因。
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	CreateBatch(ctx context.Context, tasks []model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListBySite(ctx context.Context, siteID string, filter TaskFilter) ([]model.Task, error)

	// Claim 仅当任务处于可认领状态且无人持有时写入认领人
	Claim(ctx context.Context, taskID, workerID string, at time.Time) error
	// MarkStarted 首次进度信号：claimed → in_progress；已开始时返回 false
	MarkStarted(ctx context.Context, taskID string, at time.Time) (bool, error)
	// IncrementPhotos 照片计数 +1，已达上限或任务已完成时不写入
	IncrementPhotos(ctx context.Context, taskID string) error
	// Complete 以读取时的版本号为条件写入完成状态，同时写入 task.Notes
	Complete(ctx context.Context, task *model.Task, completedBy string, at time.Time, actualMinutes *int) error
	// Reassign 仅当任务仍由 fromWorkerID 持有时改为 toWorkerID
	Reassign(ctx context.Context, taskID, fromWorkerID, toWorkerID string) error
	MarkOverdue(ctx context.Context, taskID string, now time.Time) error
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

// TaskFilter 任务列表筛选条件
type TaskFilter struct {
	Statuses  []model.TaskStatus
	ClaimedBy string
	From      *time.Time // scheduled_for >= From
	To        *time.Time // scheduled_for < To
}

// overdueEligible 可被标记为逾期的状态
var overdueEligible = []model.TaskStatus{
	model.TaskPending,
	model.TaskAvailable,
	model.TaskClaimed,
	model.TaskInProgress,
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo 创建 TaskRepository 实例
func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

// ────── Create ──────

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) CreateBatch(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(tasks, 100).Error
}

// ────── Query ──────

func (r *taskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) ListBySite(ctx context.Context, siteID string, filter TaskFilter) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Where("site_id = ?", siteID)
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	if filter.ClaimedBy != "" {
		db = db.Where("claimed_by = ?", filter.ClaimedBy)
	}
	if filter.From != nil {
		db = db.Where("scheduled_for >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("scheduled_for < ?", *filter.To)
	}

	var tasks []model.Task
	err := db.Order("scheduled_for ASC, task_id ASC").Find(&tasks).Error
	return tasks, err
}

// ────── 条件写入 ──────

func (r *taskRepo) Claim(ctx context.Context, taskID, workerID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND status IN ? AND claimed_by IS NULL", taskID, model.ClaimableStatuses()).
		Updates(map[string]interface{}{
			"status":     model.TaskClaimed,
			"claimed_by": workerID,
			"claimed_at": at,
			"version":    gorm.Expr("version + 1"),
		})
	return affectedOrLock(result)
}

func (r *taskRepo) MarkStarted(ctx context.Context, taskID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND status IN ? AND claimed_by IS NOT NULL AND started_at IS NULL",
			taskID, []model.TaskStatus{model.TaskClaimed, model.TaskOverdue}).
		Updates(map[string]interface{}{
			// 逾期标记保留
			"status":     gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", model.TaskClaimed, model.TaskInProgress),
			"started_at": at,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *taskRepo) IncrementPhotos(ctx context.Context, taskID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND status <> ? AND (photo_count = 0 OR photos_uploaded < photo_count)",
			taskID, model.TaskCompleted).
		Updates(map[string]interface{}{
			"photos_uploaded": gorm.Expr("photos_uploaded + 1"),
			"version":         gorm.Expr("version + 1"),
		})
	return affectedOrLock(result)
}

func (r *taskRepo) Complete(ctx context.Context, task *model.Task, completedBy string, at time.Time, actualMinutes *int) error {
	oldVersion := task.Version
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND version = ? AND status <> ?", task.TaskID, oldVersion, model.TaskCompleted).
		Updates(map[string]interface{}{
			"status":         model.TaskCompleted,
			"notes":          task.Notes,
			"completed_by":   completedBy,
			"completed_at":   at,
			"actual_minutes": actualMinutes,
			"version":        oldVersion + 1,
		})
	if err := affectedOrLock(result); err != nil {
		return err
	}
	task.Status = model.TaskCompleted
	task.CompletedBy = &completedBy
	task.CompletedAt = &at
	task.ActualMinutes = actualMinutes
	task.Version = oldVersion + 1
	return nil
}

func (r *taskRepo) Reassign(ctx context.Context, taskID, fromWorkerID, toWorkerID string) error {
	// 指定员工任务的指派人随持有人一起变更
	assignee := gorm.Expr("CASE WHEN assignment_mode = ? THEN ? ELSE assignee_id END", model.AssignSpecific, toWorkerID)
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND claimed_by = ? AND status IN ?", taskID, fromWorkerID, model.HeldStatuses()).
		Updates(map[string]interface{}{
			"claimed_by":  toWorkerID,
			"assignee_id": assignee,
			"version":     gorm.Expr("version + 1"),
		})
	return affectedOrLock(result)
}

func (r *taskRepo) MarkOverdue(ctx context.Context, taskID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ? AND status IN ? AND due_at IS NOT NULL AND due_at < ?", taskID, overdueEligible, now).
		Updates(map[string]interface{}{
			"status":  model.TaskOverdue,
			"version": gorm.Expr("version + 1"),
		})
	return affectedOrLock(result)
}

func (r *taskRepo) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("status IN ? AND due_at IS NOT NULL AND due_at < ?", overdueEligible, now).
		Updates(map[string]interface{}{
			"status":  model.TaskOverdue,
			"version": gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

func affectedOrLock(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
