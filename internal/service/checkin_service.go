package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeops/config"
	"storeops/internal/auth"
	"storeops/internal/model"
	"storeops/internal/repository"
	pkgerrors "storeops/pkg/errors"
	"storeops/pkg/geo"
)

// CheckinService 签到会话业务接口
type CheckinService interface {
	CheckIn(ctx context.Context, caller Caller, siteID string, point *geo.Point) (*model.CheckinSession, error)
	// CheckOut 结束会话；无会话时同样成功
	CheckOut(ctx context.Context, workerID string) error
	// Current 当前会话；无会话时返回 (nil, nil)
	Current(ctx context.Context, workerID string) (*model.CheckinSession, error)
}

type checkinService struct {
	repo          *repository.Repository
	policy        FencePolicy
	defaultRadius float64
	ttl           time.Duration
	now           Clock
	logger        *zap.Logger
}

// NewCheckinService 创建 CheckinService 实例
func NewCheckinService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CheckinService {
	return &checkinService{
		repo:          repo,
		policy:        FencePolicy{Enforce: cfg.Geofence.Enforce, RequirePoint: true},
		defaultRadius: cfg.Geofence.DefaultRadiusMeters,
		ttl:           cfg.Checkin.SessionTTL,
		now:           utcNow,
		logger:        logger,
	}
}

func (s *checkinService) CheckIn(ctx context.Context, caller Caller, siteID string, point *geo.Point) (*model.CheckinSession, error) {
	if err := caller.require(auth.CapCheckIn); err != nil {
		return nil, err
	}

	// 1. 员工存在且在职
	worker, err := s.repo.Worker.GetByID(ctx, caller.WorkerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("员工 %s 不存在", caller.WorkerID)
		}
		s.logger.Error("查询员工失败", zap.String("worker_id", caller.WorkerID), zap.Error(err))
		return nil, err
	}
	if !worker.IsActive {
		return nil, pkgerrors.Authorization("员工已停用")
	}

	// 2. 仅可在本店签到（跨店管理员除外）
	if worker.SiteID != siteID && !caller.Caps.Has(auth.CapCrossSite) {
		return nil, pkgerrors.Authorization("只能在所属门店签到")
	}

	site, err := s.repo.Site.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("门店 %s 不存在", siteID)
		}
		s.logger.Error("查询门店失败", zap.String("site_id", siteID), zap.Error(err))
		return nil, err
	}

	// 3. 门店配置了围栏时必须上报位置且位于围栏内
	fence := site.Fence(s.defaultRadius)
	if fence != nil && s.policy.Enforce {
		if err := s.policy.checkFence(fence, pkgerrors.FenceSourceSite, point); err != nil {
			return nil, err
		}
	}

	// 4. 写入快照；重复签到覆盖旧会话
	session := &model.CheckinSession{
		WorkerID:  worker.WorkerID,
		SiteID:    site.SiteID,
		SiteName:  site.Name,
		Fence:     fence,
		StartedAt: s.now(),
	}
	if err := s.repo.Checkin.Save(ctx, session, s.ttl); err != nil {
		s.logger.Error("保存签到会话失败", zap.String("worker_id", worker.WorkerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工签到",
		zap.String("worker_id", worker.WorkerID),
		zap.String("site_id", site.SiteID),
	)
	return session, nil
}

func (s *checkinService) CheckOut(ctx context.Context, workerID string) error {
	if err := s.repo.Checkin.Delete(ctx, workerID); err != nil {
		s.logger.Error("删除签到会话失败", zap.String("worker_id", workerID), zap.Error(err))
		return err
	}
	return nil
}

func (s *checkinService) Current(ctx context.Context, workerID string) (*model.CheckinSession, error) {
	session, err := s.repo.Checkin.Get(ctx, workerID)
	if err != nil {
		s.logger.Error("读取签到会话失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

// sessionAt 读取员工在指定门店的有效会话；会话属于其他门店时视为无会话
func sessionAt(ctx context.Context, repo *repository.Repository, workerID, siteID string) (*model.CheckinSession, error) {
	if repo.Checkin == nil {
		return nil, nil
	}
	session, err := repo.Checkin.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !session.AtSite(siteID) {
		return nil, nil
	}
	return session, nil
}
