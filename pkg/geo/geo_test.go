package geo

import (
	"math"
	"testing"
)

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 33.0, Lng: -87.0}, {Lat: 33.01, Lng: -87.0}},
		{{Lat: 40.7128, Lng: -74.0060}, {Lat: 34.0522, Lng: -118.2437}},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: 51.5074, Lng: -0.1278}},
	}

	for _, p := range pairs {
		ab := DistanceMeters(p[0], p[1])
		ba := DistanceMeters(p[1], p[0])
		if ab != ba {
			t.Errorf("距离不对称: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceMeters_OneHundredthDegreeLatitude(t *testing.T) {
	a := Point{Lat: 33.000, Lng: -87.000}
	b := Point{Lat: 33.010, Lng: -87.000}

	const expected = 1113.0
	got := DistanceMeters(a, b)
	if math.Abs(got-expected)/expected > 0.01 {
		t.Errorf("期望约 %.0f 米（误差 1%% 内），实际=%.2f", expected, got)
	}
}

func TestDistanceMeters_SamePoint(t *testing.T) {
	p := Point{Lat: 33.0, Lng: -87.0}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("同一点距离应为 0，实际=%v", d)
	}
}

func TestWithinFence_BoundaryInclusive(t *testing.T) {
	center := Point{Lat: 33.0, Lng: -87.0}
	p := Point{Lat: 33.001, Lng: -87.0}
	r := DistanceMeters(p, center)

	if !WithinFence(p, center, r) {
		t.Error("距离恰好等于半径时应视为在围栏内")
	}
	if WithinFence(p, center, math.Nextafter(r, 0)) {
		t.Error("半径略小于距离时应视为在围栏外")
	}
}

func TestFence_Check(t *testing.T) {
	f := Fence{Center: Point{Lat: 33.0, Lng: -87.0}, RadiusMeters: 100}

	if d, ok := f.Check(f.Center); !ok || d != 0 {
		t.Errorf("中心点应在围栏内，d=%v ok=%v", d, ok)
	}

	far := Point{Lat: 33.01, Lng: -87.0}
	d, ok := f.Check(far)
	if ok {
		t.Error("约 1.1 公里外的点不应在 100 米围栏内")
	}
	if d < 1000 {
		t.Errorf("期望距离 > 1000 米，实际=%v", d)
	}
	if f.Contains(far) {
		t.Error("Contains 应与 Check 一致")
	}
}

func TestPoint_Validate(t *testing.T) {
	cases := []struct {
		name string
		p    Point
		ok   bool
	}{
		{"valid", Point{Lat: 33, Lng: -87}, true},
		{"north_pole", Point{Lat: 90, Lng: 0}, true},
		{"lat_too_high", Point{Lat: 90.5, Lng: 0}, false},
		{"lng_too_low", Point{Lat: 0, Lng: -180.1}, false},
		{"nan", Point{Lat: math.NaN(), Lng: 0}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.ok && err != nil {
				t.Errorf("期望合法，实际错误: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}
