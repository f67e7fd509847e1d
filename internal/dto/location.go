package dto

import "storeops/pkg/geo"

// Location 客户端上报的坐标；lat 与 lng 必须同时出现或同时缺省（由 latlng 结构校验保证）
type Location struct {
	Lat *float64 `json:"lat" form:"lat" binding:"omitempty,latitude"`
	Lng *float64 `json:"lng" form:"lng" binding:"omitempty,longitude"`
}

// Point 转换为领域坐标；未上报时返回 nil
func (l Location) Point() *geo.Point {
	if l.Lat == nil || l.Lng == nil {
		return nil
	}
	return &geo.Point{Lat: *l.Lat, Lng: *l.Lng}
}
