package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storeops/internal/model"
	"storeops/pkg/redis"
)

const checkinKeyPrefix = "checkin:session:"

// CheckinRepository 签到会话存储接口
// 每名员工至多一个会话，重复签到覆盖旧会话
type CheckinRepository interface {
	Save(ctx context.Context, session *model.CheckinSession, ttl time.Duration) error
	// Get 无会话时返回 (nil, nil)
	Get(ctx context.Context, workerID string) (*model.CheckinSession, error)
	Delete(ctx context.Context, workerID string) error
}

type checkinRepo struct {
	rdb *redis.Client
}

// NewCheckinRepo 创建基于 Redis 的 CheckinRepository
func NewCheckinRepo(rdb *redis.Client) CheckinRepository {
	return &checkinRepo{rdb: rdb}
}

func checkinKey(workerID string) string {
	return checkinKeyPrefix + workerID
}

func (r *checkinRepo) Save(ctx context.Context, session *model.CheckinSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("序列化签到会话失败: %w", err)
	}
	return r.rdb.SetJSON(ctx, checkinKey(session.WorkerID), payload, ttl)
}

func (r *checkinRepo) Get(ctx context.Context, workerID string) (*model.CheckinSession, error) {
	payload, err := r.rdb.GetJSON(ctx, checkinKey(workerID))
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	var session model.CheckinSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("解析签到会话失败: %w", err)
	}
	return &session, nil
}

func (r *checkinRepo) Delete(ctx context.Context, workerID string) error {
	return r.rdb.Delete(ctx, checkinKey(workerID))
}
