package service

import (
	"time"

	"storeops/internal/auth"
	pkgerrors "storeops/pkg/errors"
)

// Caller 已认证的操作者；能力集合在构造时按角色计算一次
type Caller struct {
	WorkerID string
	Role     auth.Role
	SiteID   string
	Caps     auth.CapabilitySet
}

// NewCaller 构造操作者
func NewCaller(workerID string, role auth.Role, siteID string) Caller {
	return Caller{
		WorkerID: workerID,
		Role:     role,
		SiteID:   siteID,
		Caps:     auth.CapabilitiesOf(role),
	}
}

// require 缺少能力时返回 AuthorizationError
func (c Caller) require(capability auth.Capability) error {
	if !c.Caps.Has(capability) {
		return pkgerrors.Authorization("角色 %s 缺少能力 %s", c.Role, capability)
	}
	return nil
}

// canAccessSite 本店员工或跨店管理员
func (c Caller) canAccessSite(siteID string) bool {
	return c.SiteID == siteID || c.Caps.Has(auth.CapCrossSite)
}

func (c Caller) requireSite(siteID string) error {
	if !c.canAccessSite(siteID) {
		return pkgerrors.Authorization("无权操作其他门店的任务")
	}
	return nil
}

// Clock 当前时间来源
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
