package repository

import (
	"context"

	"gorm.io/gorm"

	"storeops/pkg/redis"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Site     SiteRepository
	Worker   WorkerRepository
	Task     TaskRepository
	Photo    PhotoRepository
	Transfer TransferRepository
	Checkin  CheckinRepository
}

// NewRepository 创建 Repository 聚合
// rdb 为空时签到会话仓库不可用（仅迁移等离线命令使用）
func NewRepository(db *gorm.DB, rdb *redis.Client) *Repository {
	r := newGormRepos(db)
	if rdb != nil {
		r.Checkin = NewCheckinRepo(rdb)
	}
	return r
}

func newGormRepos(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		Site:     NewSiteRepo(db),
		Worker:   NewWorkerRepo(db),
		Task:     NewTaskRepo(db),
		Photo:    NewPhotoRepo(db),
		Transfer: NewTransferRepo(db),
	}
}

// WithTx 返回绑定到事务连接的 Repository 副本
// 签到会话存储于 Redis，不参与数据库事务
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	txRepo := newGormRepos(tx)
	txRepo.Checkin = r.Checkin
	return txRepo
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误时回滚
// 未绑定数据库（单元测试注入 mock）时直接以当前 Repository 执行
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
