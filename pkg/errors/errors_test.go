package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestWrappedKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("title 不能为空"), ErrValidation},
		{"authorization", Authorization("角色 %s 不可认领", "viewer"), ErrAuthorization},
		{"conflict", Conflict("task already claimed or not available"), ErrConflict},
		{"not_found", NotFound("任务 %s 不存在", "t-1"), ErrNotFound},
		{"photo", PhotoLimit("已上传 %d/%d", 1, 2), ErrPhotoLimitExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Errorf("期望 errors.Is(%v, %v)", tc.err, tc.kind)
			}
			if !strings.HasPrefix(tc.err.Error(), tc.kind.Error()) {
				t.Errorf("错误信息应以类别开头，实际=%q", tc.err.Error())
			}
		})
	}
}

func TestGeofenceViolation(t *testing.T) {
	var err error = &GeofenceViolation{DistanceMeters: 152.3, RadiusMeters: 100, Source: FenceSourceTask}

	if !errors.Is(err, ErrGeofenceViolation) {
		t.Error("期望 errors.Is(err, ErrGeofenceViolation)")
	}
	if errors.Is(err, ErrAuthorization) {
		t.Error("围栏错误不应被识别为权限错误")
	}

	var gv *GeofenceViolation
	if !errors.As(err, &gv) {
		t.Fatal("期望 errors.As 成功")
	}
	if gv.RadiusMeters != 100 {
		t.Errorf("期望 RadiusMeters=100，实际=%v", gv.RadiusMeters)
	}
	if !strings.Contains(err.Error(), "152.3") {
		t.Errorf("错误信息应包含距离，实际=%q", err.Error())
	}
}
