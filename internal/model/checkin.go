package model

import (
	"time"

	"storeops/pkg/geo"
)

// CheckinSession 员工签到会话（存储于 Redis，按 worker_id 寻址）
// Fence 为签到时刻门店围栏的快照，门店配置变更不影响已生效的会话
type CheckinSession struct {
	WorkerID  string     `json:"worker_id"`
	SiteID    string     `json:"site_id"`
	SiteName  string     `json:"site_name"`
	Fence     *geo.Fence `json:"fence,omitempty"`
	StartedAt time.Time  `json:"started_at"`
}

// AtSite 会话是否属于指定门店
func (s *CheckinSession) AtSite(siteID string) bool {
	return s != nil && s.SiteID == siteID
}
