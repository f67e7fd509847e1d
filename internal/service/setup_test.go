package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"storeops/config"
	"storeops/internal/auth"
	"storeops/internal/model"
	"storeops/internal/repository"
	"storeops/internal/upload"
	"storeops/pkg/geo"
)

// ── 测试辅助 ──

var (
	testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// 门店围栏中心 (33.000, -87.000)，半径 100 米
	siteCenter   = geo.Point{Lat: 33.000, Lng: -87.000}
	insidePoint  = geo.Point{Lat: 33.0005, Lng: -87.000} // 约 55.6 米
	outsidePoint = geo.Point{Lat: 33.002, Lng: -87.000}  // 约 222 米
)

const (
	siteID      = "site-1"
	otherSiteID = "site-2"
)

type fixture struct {
	t         *testing.T
	cfg       *config.Config
	repo      *repository.Repository
	sites     *mockSiteRepo
	workers   *mockWorkerRepo
	tasks     *mockTaskRepo
	photos    *mockPhotoRepo
	transfers *mockTransferRepo
	checkins  *mockCheckinRepo
	notifier  *mockNotifier
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t: t,
		cfg: &config.Config{
			Geofence: config.GeofenceConfig{Enforce: true, DefaultRadiusMeters: 100},
			Checkin:  config.CheckinConfig{Required: true, SessionTTL: 12 * time.Hour},
		},
		sites:     newMockSiteRepo(),
		workers:   newMockWorkerRepo(),
		tasks:     newMockTaskRepo(),
		photos:    &mockPhotoRepo{},
		transfers: &mockTransferRepo{},
		checkins:  newMockCheckinRepo(),
		notifier:  &mockNotifier{},
		now:       testNow,
	}
	f.repo = &repository.Repository{
		Site:     f.sites,
		Worker:   f.workers,
		Task:     f.tasks,
		Photo:    f.photos,
		Transfer: f.transfers,
		Checkin:  f.checkins,
	}

	lat, lng, r := siteCenter.Lat, siteCenter.Lng, 100.0
	_ = f.sites.Create(context.Background(), &model.Site{SiteID: siteID, Name: "一号店", CenterLat: &lat, CenterLng: &lng, RadiusM: &r, IsActive: true})
	_ = f.sites.Create(context.Background(), &model.Site{SiteID: otherSiteID, Name: "二号店", IsActive: true})
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) taskService() *taskService {
	svc := NewTaskService(f.cfg, f.repo, f.notifier, zap.NewNop()).(*taskService)
	svc.now = f.clock
	return svc
}

func (f *fixture) checkinService() *checkinService {
	svc := NewCheckinService(f.cfg, f.repo, zap.NewNop()).(*checkinService)
	svc.now = f.clock
	return svc
}

func (f *fixture) transferService() *transferService {
	svc := NewTransferService(f.cfg, f.repo, f.notifier, zap.NewNop()).(*transferService)
	svc.now = f.clock
	return svc
}

// addWorker 创建在职员工并返回对应 Caller
func (f *fixture) addWorker(id, site string, role auth.Role) Caller {
	f.t.Helper()
	w := &model.Worker{
		WorkerID: id,
		SiteID:   site,
		Name:     id,
		Email:    id + "@store.test",
		Role:     role,
		IsActive: true,
	}
	if err := f.workers.Create(context.Background(), w); err != nil {
		f.t.Fatalf("创建员工失败: %v", err)
	}
	return NewCaller(id, role, site)
}

// checkIn 在门店围栏内签到
func (f *fixture) checkIn(caller Caller) {
	f.t.Helper()
	p := insidePoint
	if _, err := f.checkinService().CheckIn(context.Background(), caller, caller.SiteID, &p); err != nil {
		f.t.Fatalf("签到失败: %v", err)
	}
}

// addTask 写入任务；未设置的字段使用全店可认领的默认值
func (f *fixture) addTask(t model.Task) *model.Task {
	f.t.Helper()
	if t.SiteID == "" {
		t.SiteID = siteID
	}
	if t.Title == "" {
		t.Title = "整理货架"
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.AssignmentMode == "" {
		t.AssignmentMode = model.AssignStoreWide
	}
	if t.Origin.Kind == "" {
		t.Origin = model.Standalone()
	}
	if t.ScheduledFor.IsZero() {
		t.ScheduledFor = f.now
	}
	if err := f.tasks.Create(context.Background(), &t); err != nil {
		f.t.Fatalf("创建任务失败: %v", err)
	}
	return &t
}

func (f *fixture) getTask(id string) *model.Task {
	f.t.Helper()
	task, err := f.tasks.GetByID(context.Background(), id)
	if err != nil {
		f.t.Fatalf("读取任务失败: %v", err)
	}
	return task
}

func testUpload(sha string) *upload.Result {
	return &upload.Result{
		ContentType: "image/jpeg",
		Width:       640,
		Height:      480,
		SizeBytes:   2048,
		SHA256:      sha,
	}
}

func ptr[T any](v T) *T { return &v }
