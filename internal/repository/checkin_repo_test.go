package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storeops/internal/model"
	"storeops/pkg/geo"
	"storeops/pkg/redis"
)

func newTestCheckinRepo(t *testing.T) (CheckinRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCheckinRepo(redis.Wrap(rdb, zap.NewNop())), mr
}

func TestCheckinRepo_SaveGetDelete(t *testing.T) {
	repo, mr := newTestCheckinRepo(t)
	ctx := context.Background()

	session := &model.CheckinSession{
		WorkerID: "w-1",
		SiteID:   "s-1",
		SiteName: "一号店",
		Fence: &geo.Fence{
			Center:       geo.Point{Lat: 33.0, Lng: -87.0},
			RadiusMeters: 100,
		},
		StartedAt: baseTime,
	}
	if err := repo.Save(ctx, session, time.Hour); err != nil {
		t.Fatalf("Save 失败: %v", err)
	}
	if !mr.Exists("checkin:session:w-1") {
		t.Fatal("会话应写入 checkin:session:w-1")
	}

	got, err := repo.Get(ctx, "w-1")
	if err != nil || got == nil {
		t.Fatalf("Get 失败: got=%v err=%v", got, err)
	}
	if !got.AtSite("s-1") || got.Fence == nil || got.Fence.RadiusMeters != 100 {
		t.Errorf("会话内容不正确: %+v", got)
	}
	if !got.StartedAt.Equal(baseTime) {
		t.Errorf("started_at 不正确: %v", got.StartedAt)
	}

	if err := repo.Delete(ctx, "w-1"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if got, _ := repo.Get(ctx, "w-1"); got != nil {
		t.Error("删除后应无会话")
	}
	if err := repo.Delete(ctx, "w-1"); err != nil {
		t.Errorf("重复签退不应报错: %v", err)
	}
}

func TestCheckinRepo_Expires(t *testing.T) {
	repo, mr := newTestCheckinRepo(t)
	ctx := context.Background()

	_ = repo.Save(ctx, &model.CheckinSession{WorkerID: "w-1", SiteID: "s-1"}, time.Hour)
	mr.FastForward(61 * time.Minute)

	got, err := repo.Get(ctx, "w-1")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got != nil {
		t.Error("TTL 到期后会话应失效")
	}
}

func TestCheckinRepo_ResaveReplaces(t *testing.T) {
	repo, _ := newTestCheckinRepo(t)
	ctx := context.Background()

	_ = repo.Save(ctx, &model.CheckinSession{WorkerID: "w-1", SiteID: "s-1"}, time.Hour)
	_ = repo.Save(ctx, &model.CheckinSession{WorkerID: "w-1", SiteID: "s-2"}, time.Hour)

	got, _ := repo.Get(ctx, "w-1")
	if got == nil || !got.AtSite("s-2") {
		t.Errorf("重复签到应覆盖旧会话，实际=%+v", got)
	}
}
