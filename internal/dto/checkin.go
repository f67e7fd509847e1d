package dto

// ── 签到模块 DTO ──

// CheckInRequest 签到请求
type CheckInRequest struct {
	SiteID string `json:"site_id" binding:"required"`
	Location
}
