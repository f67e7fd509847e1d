package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeops/config"
	"storeops/internal/auth"
	"storeops/internal/dto"
	"storeops/internal/model"
	"storeops/internal/repository"
	"storeops/internal/upload"
	pkgerrors "storeops/pkg/errors"
	"storeops/pkg/geo"
)

// PhotoInput 上传照片的入参；Upload 为已通过内容校验的照片元数据
type PhotoInput struct {
	Point     *geo.Point
	SubItemID *string
	Upload    *upload.Result
}

// CompleteInput 完成任务的入参
type CompleteInput struct {
	Notes                    *string
	OverridePhotoRequirement bool
	Point                    *geo.Point
}

// TaskService 任务生命周期业务接口
type TaskService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateTaskRequest) ([]model.Task, error)
	Get(ctx context.Context, caller Caller, taskID string) (*model.Task, error)
	ListBySite(ctx context.Context, caller Caller, siteID string, filter repository.TaskFilter) ([]model.Task, error)

	Claim(ctx context.Context, caller Caller, taskID string, point *geo.Point) (*model.Task, error)
	Start(ctx context.Context, caller Caller, taskID string) (*model.Task, error)
	UploadPhoto(ctx context.Context, caller Caller, taskID string, in PhotoInput) (*model.ProofPhoto, error)
	Complete(ctx context.Context, caller Caller, taskID string, in CompleteInput) (*model.Task, error)
	MarkOverdue(ctx context.Context, caller Caller, taskID string) (*model.Task, error)
	// SweepOverdue 批量标记逾期，返回受影响任务数（定时任务调用）
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)

	ListPhotos(ctx context.Context, caller Caller, taskID string) ([]model.ProofPhoto, error)
	ListTransfers(ctx context.Context, caller Caller, taskID string) ([]model.TaskTransfer, error)
}

type taskService struct {
	repo            *repository.Repository
	arbiter         *claimArbiter
	photos          *photoTracker
	policy          FencePolicy
	checkinRequired bool
	notifier        Notifier
	now             Clock
	logger          *zap.Logger
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(cfg *config.Config, repo *repository.Repository, notifier Notifier, logger *zap.Logger) TaskService {
	s := &taskService{
		repo:            repo,
		policy:          FencePolicy{Enforce: cfg.Geofence.Enforce, RequirePoint: cfg.Geofence.RequirePoint},
		checkinRequired: cfg.Checkin.Required,
		notifier:        notifier,
		now:             utcNow,
		logger:          logger,
	}
	s.arbiter = &claimArbiter{
		repo:            repo,
		policy:          s.policy,
		checkinRequired: s.checkinRequired,
		now:             func() time.Time { return s.now() },
		logger:          logger,
	}
	s.photos = &photoTracker{repo: repo, logger: logger}
	return s
}

// ────────────────────── Create ──────────────────────

func (s *taskService) Create(ctx context.Context, caller Caller, req *dto.CreateTaskRequest) ([]model.Task, error) {
	if err := caller.require(auth.CapCreateTask); err != nil {
		return nil, err
	}
	if err := caller.requireSite(req.SiteID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pkgerrors.Validation("任务标题不能为空")
	}

	if _, err := s.repo.Site.GetByID(ctx, req.SiteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("门店 %s 不存在", req.SiteID)
		}
		s.logger.Error("查询门店失败", zap.String("site_id", req.SiteID), zap.Error(err))
		return nil, err
	}

	tpl := model.Task{
		SiteID:           req.SiteID,
		Title:            title,
		Description:      req.Description,
		Notes:            req.Notes,
		Status:           model.TaskPending,
		AssignmentMode:   model.AssignStoreWide,
		EstimatedMinutes: req.EstimatedMinutes,
		PhotoRequired:    req.PhotoRequired,
	}
	tpl.CreatedBy = &caller.WorkerID

	// 1. 指派方式
	if err := s.applyAssignment(ctx, &tpl, req); err != nil {
		return nil, err
	}

	// 2. 计划与截止时间
	scheduled := s.now()
	if req.ScheduledFor != nil {
		scheduled = req.ScheduledFor.UTC()
	}
	var dueOffset *time.Duration
	if req.DueAt != nil {
		if req.DueAt.Before(scheduled) {
			return nil, pkgerrors.Validation("截止时间不能早于计划时间")
		}
		d := req.DueAt.Sub(scheduled)
		dueOffset = &d
	}

	// 3. 围栏覆盖
	if f := req.Fence; f != nil {
		center := geo.Point{Lat: f.Lat, Lng: f.Lng}
		if err := center.Validate(); err != nil {
			return nil, pkgerrors.Validation("%v", err)
		}
		if f.RadiusMeters <= 0 {
			return nil, pkgerrors.Validation("围栏半径必须大于 0")
		}
		lat, lng, r := f.Lat, f.Lng, f.RadiusMeters
		tpl.FenceLat, tpl.FenceLng, tpl.FenceRadiusM = &lat, &lng, &r
	}

	// 4. 照片要求
	switch {
	case req.PhotoRequired && req.PhotoCount == nil:
		tpl.PhotoCount = 1
	case req.PhotoRequired && *req.PhotoCount < 1:
		return nil, pkgerrors.Validation("要求照片时数量至少为 1")
	case req.PhotoRequired:
		tpl.PhotoCount = *req.PhotoCount
	case req.PhotoCount != nil && *req.PhotoCount > 0:
		return nil, pkgerrors.Validation("未要求照片时不能设置照片数量")
	}

	// 5. 来源与周期展开
	tasks, err := s.expand(tpl, req, scheduled, dueOffset)
	if err != nil {
		return nil, err
	}

	if len(tasks) == 1 {
		err = s.repo.Task.Create(ctx, &tasks[0])
	} else {
		err = s.repo.Task.CreateBatch(ctx, tasks)
	}
	if err != nil {
		s.logger.Error("创建任务失败", zap.String("site_id", req.SiteID), zap.Int("count", len(tasks)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("任务已创建",
		zap.String("site_id", req.SiteID),
		zap.String("created_by", caller.WorkerID),
		zap.Int("count", len(tasks)),
	)
	return tasks, nil
}

func (s *taskService) applyAssignment(ctx context.Context, tpl *model.Task, req *dto.CreateTaskRequest) error {
	mode := model.AssignmentMode(req.AssignmentMode)
	if mode == "" {
		mode = model.AssignStoreWide
	}

	switch mode {
	case model.AssignStoreWide:
		if req.AssigneeID != nil && *req.AssigneeID != "" {
			return pkgerrors.Validation("全店任务不能指定员工")
		}
	case model.AssignSpecific:
		if req.AssigneeID == nil || *req.AssigneeID == "" {
			return pkgerrors.Validation("指定员工任务必须提供 assignee_id")
		}
		assignee, err := s.repo.Worker.GetByID(ctx, *req.AssigneeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Validation("指派员工 %s 不存在", *req.AssigneeID)
			}
			s.logger.Error("查询员工失败", zap.String("worker_id", *req.AssigneeID), zap.Error(err))
			return err
		}
		if assignee.SiteID != req.SiteID || !assignee.IsActive {
			return pkgerrors.Validation("指派员工不属于该门店或已停用")
		}
		id := assignee.WorkerID
		tpl.AssigneeID = &id
	default:
		return pkgerrors.Validation("未知指派方式: %s", req.AssignmentMode)
	}
	tpl.AssignmentMode = mode
	return nil
}

// expand 按来源生成任务；周期任务的第 i 条在计划与截止时间上顺延 i*interval 个周期
func (s *taskService) expand(tpl model.Task, req *dto.CreateTaskRequest, scheduled time.Time, dueOffset *time.Duration) ([]model.Task, error) {
	rec := req.Recurrence
	if rec == nil {
		origin := model.Standalone()
		if req.TemplateID != nil {
			var err error
			if origin, err = model.FromTemplate(*req.TemplateID); err != nil {
				return nil, pkgerrors.Validation("%v", err)
			}
		}
		t := tpl
		t.Origin = origin
		setSchedule(&t, scheduled, dueOffset)
		return []model.Task{t}, nil
	}

	if req.TemplateID == nil || *req.TemplateID == "" {
		return nil, pkgerrors.Validation("周期任务必须提供 template_id")
	}
	if rec.Occurrences < 1 || rec.Occurrences > 366 {
		return nil, pkgerrors.Validation("周期次数必须在 1-366 之间")
	}
	interval := rec.Interval
	if interval == 0 {
		interval = 1
	}
	if interval < 1 {
		return nil, pkgerrors.Validation("周期间隔必须大于 0")
	}

	tasks := make([]model.Task, 0, rec.Occurrences)
	for i := 0; i < rec.Occurrences; i++ {
		origin, err := model.FromRecurrence(*req.TemplateID, i)
		if err != nil {
			return nil, pkgerrors.Validation("%v", err)
		}
		at, err := advance(scheduled, rec.Cadence, i*interval)
		if err != nil {
			return nil, err
		}
		t := tpl
		t.Origin = origin
		setSchedule(&t, at, dueOffset)
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func setSchedule(t *model.Task, scheduled time.Time, dueOffset *time.Duration) {
	t.ScheduledFor = scheduled
	if dueOffset != nil {
		due := scheduled.Add(*dueOffset)
		t.DueAt = &due
	}
}

func advance(from time.Time, cadence string, n int) (time.Time, error) {
	switch cadence {
	case "daily":
		return from.AddDate(0, 0, n), nil
	case "weekly":
		return from.AddDate(0, 0, 7*n), nil
	case "monthly":
		return addMonths(from, n), nil
	}
	return time.Time{}, pkgerrors.Validation("未知周期: %s", cadence)
}

// addMonths 按自然月顺延；目标月份没有该日期时取当月最后一天（1/31 → 2/28 → 3/31）
func addMonths(from time.Time, n int) time.Time {
	y, m, d := from.Date()
	first := time.Date(y, m+time.Month(n), 1, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// ────────────────────── Query ──────────────────────

func (s *taskService) Get(ctx context.Context, caller Caller, taskID string) (*model.Task, error) {
	task, err := getTask(ctx, s.repo, taskID, s.logger)
	if err != nil {
		return nil, err
	}
	if err := caller.requireSite(task.SiteID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListBySite(ctx context.Context, caller Caller, siteID string, filter repository.TaskFilter) ([]model.Task, error) {
	if err := caller.requireSite(siteID); err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, pkgerrors.Validation("未知任务状态: %s", st)
		}
	}
	tasks, err := s.repo.Task.ListBySite(ctx, siteID, filter)
	if err != nil {
		s.logger.Error("查询任务列表失败", zap.String("site_id", siteID), zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

func (s *taskService) ListPhotos(ctx context.Context, caller Caller, taskID string) ([]model.ProofPhoto, error) {
	if _, err := s.Get(ctx, caller, taskID); err != nil {
		return nil, err
	}
	photos, err := s.repo.Photo.ListByTask(ctx, taskID)
	if err != nil {
		s.logger.Error("查询凭证照片失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	return photos, nil
}

func (s *taskService) ListTransfers(ctx context.Context, caller Caller, taskID string) ([]model.TaskTransfer, error) {
	if _, err := s.Get(ctx, caller, taskID); err != nil {
		return nil, err
	}
	transfers, err := s.repo.Transfer.ListByTask(ctx, taskID)
	if err != nil {
		s.logger.Error("查询转派记录失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	return transfers, nil
}

// ────────────────────── Claim / Start ──────────────────────

func (s *taskService) Claim(ctx context.Context, caller Caller, taskID string, point *geo.Point) (*model.Task, error) {
	task, err := s.arbiter.Claim(ctx, caller, taskID, point)
	if err != nil {
		return nil, err
	}
	dispatch(ctx, s.notifier, s.logger, model.TaskEvent{
		Type:     model.EventTaskClaimed,
		SiteID:   task.SiteID,
		TaskID:   task.TaskID,
		Title:    task.Title,
		WorkerID: caller.WorkerID,
		At:       s.now(),
	})
	return task, nil
}

func (s *taskService) Start(ctx context.Context, caller Caller, taskID string) (*model.Task, error) {
	if err := caller.require(auth.CapHandleTask); err != nil {
		return nil, err
	}
	task, err := s.Get(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}
	if !task.HeldBy(caller.WorkerID) && !caller.Caps.Has(auth.CapBypassAssignment) {
		return nil, pkgerrors.Authorization("只有任务持有人可以开始任务")
	}

	// 逾期只是附加标记，已认领但逾期的任务仍可开始
	switch task.Status {
	case model.TaskInProgress:
		return task, nil
	case model.TaskClaimed, model.TaskOverdue:
		if task.StartedAt != nil {
			return task, nil
		}
		if task.ClaimedBy == nil {
			return nil, pkgerrors.Conflict("任务尚未被认领，不能开始")
		}
	default:
		return nil, pkgerrors.Conflict("任务状态为 %s，不能开始", task.Status)
	}

	if _, err := s.repo.Task.MarkStarted(ctx, task.TaskID, s.now()); err != nil {
		s.logger.Error("标记任务开始失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	return getTask(ctx, s.repo, taskID, s.logger)
}

// ────────────────────── UploadPhoto ──────────────────────

func (s *taskService) UploadPhoto(ctx context.Context, caller Caller, taskID string, in PhotoInput) (*model.ProofPhoto, error) {
	if err := caller.require(auth.CapUploadPhoto); err != nil {
		return nil, err
	}
	if in.Upload == nil {
		return nil, pkgerrors.Validation("缺少照片内容")
	}
	task, err := s.Get(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, pkgerrors.Conflict("任务已完成，不能继续上传照片")
	}

	// 1. 签到与位置校验
	session, err := sessionAt(ctx, s.repo, caller.WorkerID, task.SiteID)
	if err != nil {
		s.logger.Error("读取签到会话失败", zap.String("worker_id", caller.WorkerID), zap.Error(err))
		return nil, err
	}
	if s.checkinRequired && session == nil {
		return nil, pkgerrors.Authorization("请先在任务所在门店签到")
	}
	if err := s.policy.Check(task, session, in.Point); err != nil {
		return nil, err
	}

	// 2. 计数 + 写入
	photo := &model.ProofPhoto{
		TaskID:        task.TaskID,
		SiteID:        task.SiteID,
		SubItemID:     in.SubItemID,
		UploadedBy:    caller.WorkerID,
		ContentSHA256: in.Upload.SHA256,
		ContentType:   in.Upload.ContentType,
		Width:         in.Upload.Width,
		Height:        in.Upload.Height,
		SizeBytes:     in.Upload.SizeBytes,
		UploadedAt:    s.now(),
	}
	if in.Point != nil {
		lat, lng := in.Point.Lat, in.Point.Lng
		photo.Lat, photo.Lng = &lat, &lng
	}
	if err := s.photos.RecordUpload(ctx, task, caller, photo); err != nil {
		return nil, err
	}

	// 3. 上传视为进度信号
	if task.ClaimedBy != nil {
		if _, err := s.repo.Task.MarkStarted(ctx, task.TaskID, photo.UploadedAt); err != nil {
			s.logger.Warn("上传后标记任务开始失败", zap.String("task_id", taskID), zap.Error(err))
		}
	}
	return photo, nil
}

// ────────────────────── Complete ──────────────────────

func (s *taskService) Complete(ctx context.Context, caller Caller, taskID string, in CompleteInput) (*model.Task, error) {
	task, err := s.Get(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, pkgerrors.Conflict("任务已完成")
	}

	// 1. 持有人或可强制完成的角色；未被认领的任务只能强制完成
	if task.HeldBy(caller.WorkerID) {
		if err := caller.require(auth.CapCompleteTask); err != nil {
			return nil, err
		}
	} else if !caller.Caps.Has(auth.CapForceComplete) {
		return nil, pkgerrors.Authorization("只有任务持有人可以完成任务")
	}

	// 2. 照片门槛
	if !IsReadyToComplete(task, in.OverridePhotoRequirement, caller.Caps) {
		return nil, pkgerrors.PhotoLimit("已上传 %d/%d 张，未满足完成要求", task.PhotosUploaded, task.PhotoCount)
	}

	// 3. 位置校验
	session, err := sessionAt(ctx, s.repo, caller.WorkerID, task.SiteID)
	if err != nil {
		s.logger.Error("读取签到会话失败", zap.String("worker_id", caller.WorkerID), zap.Error(err))
		return nil, err
	}
	if err := s.policy.Check(task, session, in.Point); err != nil {
		return nil, err
	}

	// 4. 以读取时的版本号条件写入
	now := s.now()
	if in.Notes != nil {
		task.Notes = *in.Notes
	}
	if err := s.repo.Task.Complete(ctx, task, caller.WorkerID, now, actualMinutes(task.StartedAt, now)); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.Conflict("任务已被其他操作修改，请刷新后重试")
		}
		s.logger.Error("完成任务失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	dispatch(ctx, s.notifier, s.logger, model.TaskEvent{
		Type:     model.EventTaskCompleted,
		SiteID:   task.SiteID,
		TaskID:   task.TaskID,
		Title:    task.Title,
		WorkerID: caller.WorkerID,
		At:       now,
	})
	return task, nil
}

// actualMinutes 实际耗时（分钟，四舍五入）；未开始的任务返回 nil
func actualMinutes(startedAt *time.Time, completedAt time.Time) *int {
	if startedAt == nil {
		return nil
	}
	m := int(math.Round(completedAt.Sub(*startedAt).Seconds() / 60))
	if m < 0 {
		m = 0
	}
	return &m
}

// ────────────────────── Overdue ──────────────────────

func (s *taskService) MarkOverdue(ctx context.Context, caller Caller, taskID string) (*model.Task, error) {
	if err := caller.require(auth.CapMarkOverdue); err != nil {
		return nil, err
	}
	task, err := s.Get(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case task.Status == model.TaskOverdue:
		return task, nil
	case task.Status.Terminal():
		return nil, pkgerrors.Conflict("任务已完成，不能标记逾期")
	case task.DueAt == nil || !task.DueAt.Before(now):
		return nil, pkgerrors.Validation("任务尚未到期")
	}

	if err := s.repo.Task.MarkOverdue(ctx, task.TaskID, now); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("标记逾期失败", zap.String("task_id", taskID), zap.Error(err))
			return nil, err
		}
		latest, gerr := getTask(ctx, s.repo, taskID, s.logger)
		if gerr != nil {
			return nil, gerr
		}
		if latest.Status == model.TaskOverdue {
			return latest, nil
		}
		return nil, pkgerrors.Conflict("任务状态已变更为 %s", latest.Status)
	}
	return getTask(ctx, s.repo, taskID, s.logger)
}

func (s *taskService) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.Task.SweepOverdue(ctx, now)
	if err != nil {
		s.logger.Error("逾期扫描失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("逾期扫描完成", zap.Int64("marked", n))
	}
	return n, nil
}
