// Package geo 提供围栏判定所需的纯距离计算，无 I/O、无状态。
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters 球面地球半径（米）
const EarthRadiusMeters = 6371000.0

// Point 经纬度坐标（度）
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate 校验经纬度范围
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("纬度超出范围: %v", p.Lat)
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("经度超出范围: %v", p.Lng)
	}
	return nil
}

// Fence 圆形围栏：中心点 + 半径（米）
type Fence struct {
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radius_meters"`
}

// Contains 判断坐标是否在围栏内（边界包含）
func (f Fence) Contains(p Point) bool {
	_, ok := f.Check(p)
	return ok
}

// Check 返回坐标到围栏中心的距离以及是否在围栏内
func (f Fence) Check(p Point) (float64, bool) {
	d := DistanceMeters(p, f.Center)
	return d, d <= f.RadiusMeters
}

// DistanceMeters 使用 Haversine 公式计算两点间大圆距离（米）
func DistanceMeters(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// WithinFence 判断 point 与 center 的距离是否不超过 radiusMeters
func WithinFence(point, center Point, radiusMeters float64) bool {
	return DistanceMeters(point, center) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
