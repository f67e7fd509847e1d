package model

import (
	"gorm.io/gorm"

	"storeops/pkg/geo"
)

// Site 门店表 — 对应 sites
// 围栏中心未配置时不做位置校验；半径未配置时使用全局默认半径
type Site struct {
	SiteID    string   `gorm:"type:uuid;primaryKey"       json:"site_id"`
	Name      string   `gorm:"type:varchar(100);not null" json:"name"`
	Address   string   `gorm:"type:varchar(200)"          json:"address,omitempty"`
	Timezone  string   `gorm:"type:varchar(64)"           json:"timezone,omitempty"`
	CenterLat *float64 `json:"center_lat,omitempty"`
	CenterLng *float64 `json:"center_lng,omitempty"`
	RadiusM   *float64 `gorm:"column:radius_m"            json:"radius_m,omitempty"`
	IsActive  bool     `gorm:"not null"                   json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Site) TableName() string { return "sites" }

// BeforeCreate 生成主键
func (s *Site) BeforeCreate(_ *gorm.DB) error {
	if s.SiteID == "" {
		s.SiteID = newID()
	}
	return nil
}

// Fence 返回门店围栏；未配置中心点时返回 nil
func (s *Site) Fence(defaultRadius float64) *geo.Fence {
	if s.CenterLat == nil || s.CenterLng == nil {
		return nil
	}
	radius := defaultRadius
	if s.RadiusM != nil && *s.RadiusM > 0 {
		radius = *s.RadiusM
	}
	return &geo.Fence{
		Center:       geo.Point{Lat: *s.CenterLat, Lng: *s.CenterLng},
		RadiusMeters: radius,
	}
}
