package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "storeops/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFail_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"validation", pkgerrors.Validation("坐标缺失"), http.StatusBadRequest, CodeValidation},
		{"photo", pkgerrors.PhotoLimit("1/2"), http.StatusBadRequest, CodePhotoLimit},
		{"authz", pkgerrors.Authorization("非本店员工"), http.StatusForbidden, CodeForbidden},
		{"authn", fmt.Errorf("%w: token 无效", pkgerrors.ErrAuthentication), http.StatusUnauthorized, CodeUnauthenticated},
		{"notfound", pkgerrors.NotFound("任务不存在"), http.StatusNotFound, CodeNotFound},
		{"conflict", pkgerrors.Conflict("任务已被认领"), http.StatusConflict, CodeConflict},
		{"optimistic", pkgerrors.ErrOptimisticLock, http.StatusConflict, CodeConflict},
		{"internal", errors.New("db down"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Fail(c, tc.err)

			if w.Code != tc.wantHTTP {
				t.Errorf("期望 HTTP %d，实际 %d", tc.wantHTTP, w.Code)
			}
			var resp Response
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Code != tc.wantCode {
				t.Errorf("期望业务码 %d，实际 %d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestFail_GeofenceCarriesDistance(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	err := fmt.Errorf("认领失败: %w", &pkgerrors.GeofenceViolation{
		DistanceMeters: 152.4,
		RadiusMeters:   100,
		Source:         pkgerrors.FenceSourceSession,
	})
	Fail(c, err)

	if w.Code != http.StatusForbidden {
		t.Fatalf("期望 403，实际 %d", w.Code)
	}

	var resp struct {
		Code int            `json:"code"`
		Data GeofenceDetail `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != CodeGeofence {
		t.Errorf("期望业务码 %d，实际 %d", CodeGeofence, resp.Code)
	}
	if resp.Data.DistanceMeters != 152.4 || resp.Data.RadiusMeters != 100 {
		t.Errorf("距离/半径不正确: %+v", resp.Data)
	}
	if resp.Data.Source != "checkin_session" {
		t.Errorf("期望来源 checkin_session，实际 %s", resp.Data.Source)
	}
}
