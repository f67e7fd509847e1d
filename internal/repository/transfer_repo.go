package repository

import (
	"context"

	"gorm.io/gorm"

	"storeops/internal/model"
)

// TransferRepository 任务转派记录数据访问接口（只增不改）
type TransferRepository interface {
	Create(ctx context.Context, transfer *model.TaskTransfer) error
	ListByTask(ctx context.Context, taskID string) ([]model.TaskTransfer, error)
}

type transferRepo struct {
	db *gorm.DB
}

// NewTransferRepo 创建 TransferRepository 实例
func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db: db}
}

func (r *transferRepo) Create(ctx context.Context, transfer *model.TaskTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *transferRepo) ListByTask(ctx context.Context, taskID string) ([]model.TaskTransfer, error) {
	var transfers []model.TaskTransfer
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&transfers).Error
	return transfers, err
}
