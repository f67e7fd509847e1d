package repository

import (
	"context"

	"gorm.io/gorm"

	"storeops/internal/model"
)

// PhotoRepository 凭证照片数据访问接口（只增不改）
type PhotoRepository interface {
	Create(ctx context.Context, photo *model.ProofPhoto) error
	ListByTask(ctx context.Context, taskID string) ([]model.ProofPhoto, error)
}

type photoRepo struct {
	db *gorm.DB
}

// NewPhotoRepo 创建 PhotoRepository 实例
func NewPhotoRepo(db *gorm.DB) PhotoRepository {
	return &photoRepo{db: db}
}

func (r *photoRepo) Create(ctx context.Context, photo *model.ProofPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *photoRepo) ListByTask(ctx context.Context, taskID string) ([]model.ProofPhoto, error) {
	var photos []model.ProofPhoto
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("uploaded_at ASC").
		Find(&photos).Error
	return photos, err
}
