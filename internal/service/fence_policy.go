package service

import (
	"storeops/internal/model"
	pkgerrors "storeops/pkg/errors"
	"storeops/pkg/geo"
)

// FencePolicy 围栏来源优先级：任务覆盖 > 签到会话快照 > 无
// 认领、上传、完成共用同一判定；签到使用门店自身围栏
type FencePolicy struct {
	Enforce      bool
	RequirePoint bool
}

// Resolve 解析生效围栏；session 必须已确认属于任务所在门店
func (p FencePolicy) Resolve(task *model.Task, session *model.CheckinSession) (*geo.Fence, pkgerrors.FenceSource) {
	if f := task.OverrideFence(); f != nil {
		return f, pkgerrors.FenceSourceTask
	}
	if session != nil && session.Fence != nil {
		return session.Fence, pkgerrors.FenceSourceSession
	}
	return nil, ""
}

// Check 校验坐标；未解析出围栏或全局关闭时直接放行
func (p FencePolicy) Check(task *model.Task, session *model.CheckinSession, point *geo.Point) error {
	if !p.Enforce {
		return nil
	}
	fence, source := p.Resolve(task, session)
	if fence == nil {
		return nil
	}
	return p.checkFence(fence, source, point)
}

func (p FencePolicy) checkFence(fence *geo.Fence, source pkgerrors.FenceSource, point *geo.Point) error {
	if point == nil {
		if p.RequirePoint {
			return pkgerrors.Validation("该操作需要上报当前位置")
		}
		return nil
	}
	if err := point.Validate(); err != nil {
		return pkgerrors.Validation("%v", err)
	}
	dist, ok := fence.Check(*point)
	if !ok {
		return &pkgerrors.GeofenceViolation{
			DistanceMeters: dist,
			RadiusMeters:   fence.RadiusMeters,
			Source:         source,
		}
	}
	return nil
}
