package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"storeops/internal/model"
	"storeops/internal/repository"
	pkgerrors "storeops/pkg/errors"
)

// ── Mock SiteRepository ──

type mockSiteRepo struct {
	mu    sync.Mutex
	sites map[string]*model.Site
}

func newMockSiteRepo() *mockSiteRepo {
	return &mockSiteRepo{sites: make(map[string]*model.Site)}
}

func (m *mockSiteRepo) Create(_ context.Context, site *model.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if site.SiteID == "" {
		site.SiteID = "site-" + site.Name
	}
	cp := *site
	m.sites[site.SiteID] = &cp
	return nil
}

func (m *mockSiteRepo) GetByID(_ context.Context, id string) (*model.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sites[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSiteRepo) List(_ context.Context) ([]model.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Site
	for _, s := range m.sites {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	mu      sync.Mutex
	workers map[string]*model.Worker
}

func newMockWorkerRepo() *mockWorkerRepo {
	return &mockWorkerRepo{workers: make(map[string]*model.Worker)}
}

func (m *mockWorkerRepo) Create(_ context.Context, worker *model.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if worker.WorkerID == "" {
		worker.WorkerID = "worker-" + worker.Name
	}
	cp := *worker
	m.workers[worker.WorkerID] = &cp
	return nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) GetByEmail(_ context.Context, email string) (*model.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.Email == email {
			cp := *w
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) ListBySite(_ context.Context, siteID string) ([]model.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Worker
	for _, w := range m.workers {
		if w.SiteID == siteID && w.IsActive {
			result = append(result, *w)
		}
	}
	return result, nil
}

// ── Mock TaskRepository ──
// 条件写入在锁内完成，语义与 SQL 条件 UPDATE 一致

type mockTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
	seq   int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.Task)}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(task)
	return nil
}

func (m *mockTaskRepo) insert(task *model.Task) {
	if task.TaskID == "" {
		m.seq++
		task.TaskID = fmt.Sprintf("task-%03d", m.seq)
	}
	if task.Version == 0 {
		task.Version = 1
	}
	cp := *task
	m.tasks[task.TaskID] = &cp
}

func (m *mockTaskRepo) CreateBatch(_ context.Context, tasks []model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range tasks {
		m.insert(&tasks[i])
	}
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) ListBySite(_ context.Context, siteID string, filter repository.TaskFilter) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Task
	for _, t := range m.tasks {
		if t.SiteID != siteID {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(t.Status, filter.Statuses...) {
			continue
		}
		if filter.ClaimedBy != "" && !t.HeldBy(filter.ClaimedBy) {
			continue
		}
		if filter.From != nil && t.ScheduledFor.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !t.ScheduledFor.Before(*filter.To) {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ScheduledFor.Equal(result[j].ScheduledFor) {
			return result[i].ScheduledFor.Before(result[j].ScheduledFor)
		}
		return result[i].TaskID < result[j].TaskID
	})
	return result, nil
}

func (m *mockTaskRepo) Claim(_ context.Context, taskID, workerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || !t.Status.Claimable() || t.ClaimedBy != nil {
		return pkgerrors.ErrOptimisticLock
	}
	t.Status = model.TaskClaimed
	t.ClaimedBy = &workerID
	t.ClaimedAt = &at
	t.Version++
	return nil
}

func (m *mockTaskRepo) MarkStarted(_ context.Context, taskID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.ClaimedBy == nil || t.StartedAt != nil || !statusIn(t.Status, model.TaskClaimed, model.TaskOverdue) {
		return false, nil
	}
	if t.Status == model.TaskClaimed {
		t.Status = model.TaskInProgress
	}
	t.StartedAt = &at
	t.Version++
	return true, nil
}

func (m *mockTaskRepo) IncrementPhotos(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.Status == model.TaskCompleted || t.PhotoCapReached() {
		return pkgerrors.ErrOptimisticLock
	}
	t.PhotosUploaded++
	t.Version++
	return nil
}

func (m *mockTaskRepo) Complete(_ context.Context, task *model.Task, completedBy string, at time.Time, actualMinutes *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[task.TaskID]
	if !ok || t.Version != task.Version || t.Status.Terminal() {
		return pkgerrors.ErrOptimisticLock
	}
	t.Status = model.TaskCompleted
	t.Notes = task.Notes
	t.CompletedBy = &completedBy
	t.CompletedAt = &at
	t.ActualMinutes = actualMinutes
	t.Version++

	task.Status = t.Status
	task.CompletedBy = t.CompletedBy
	task.CompletedAt = t.CompletedAt
	task.ActualMinutes = actualMinutes
	task.Version = t.Version
	return nil
}

func (m *mockTaskRepo) Reassign(_ context.Context, taskID, fromWorkerID, toWorkerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || !t.HeldBy(fromWorkerID) || !statusIn(t.Status, model.HeldStatuses()...) {
		return pkgerrors.ErrOptimisticLock
	}
	t.ClaimedBy = &toWorkerID
	if t.IsSpecific() {
		t.AssigneeID = &toWorkerID
	}
	t.Version++
	return nil
}

func (m *mockTaskRepo) MarkOverdue(_ context.Context, taskID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || !overdueEligible(t, now) {
		return pkgerrors.ErrOptimisticLock
	}
	t.Status = model.TaskOverdue
	t.Version++
	return nil
}

func (m *mockTaskRepo) SweepOverdue(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tasks {
		if overdueEligible(t, now) {
			t.Status = model.TaskOverdue
			t.Version++
			n++
		}
	}
	return n, nil
}

func overdueEligible(t *model.Task, now time.Time) bool {
	if t.DueAt == nil || !t.DueAt.Before(now) {
		return false
	}
	return t.Status != model.TaskCompleted && t.Status != model.TaskOverdue
}

func statusIn(s model.TaskStatus, set ...model.TaskStatus) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

// ── Mock PhotoRepository ──

type mockPhotoRepo struct {
	mu     sync.Mutex
	photos []model.ProofPhoto
}

func (m *mockPhotoRepo) Create(_ context.Context, photo *model.ProofPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if photo.PhotoID == "" {
		photo.PhotoID = fmt.Sprintf("photo-%03d", len(m.photos)+1)
	}
	m.photos = append(m.photos, *photo)
	return nil
}

func (m *mockPhotoRepo) ListByTask(_ context.Context, taskID string) ([]model.ProofPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ProofPhoto
	for _, p := range m.photos {
		if p.TaskID == taskID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ── Mock TransferRepository ──

type mockTransferRepo struct {
	mu        sync.Mutex
	transfers []model.TaskTransfer
}

func (m *mockTransferRepo) Create(_ context.Context, transfer *model.TaskTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transfer.TransferID == "" {
		transfer.TransferID = fmt.Sprintf("transfer-%03d", len(m.transfers)+1)
	}
	m.transfers = append(m.transfers, *transfer)
	return nil
}

func (m *mockTransferRepo) ListByTask(_ context.Context, taskID string) ([]model.TaskTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TaskTransfer
	for _, t := range m.transfers {
		if t.TaskID == taskID {
			result = append(result, t)
		}
	}
	return result, nil
}

// ── Mock CheckinRepository ──

type mockCheckinRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.CheckinSession
}

func newMockCheckinRepo() *mockCheckinRepo {
	return &mockCheckinRepo{sessions: make(map[string]*model.CheckinSession)}
}

func (m *mockCheckinRepo) Save(_ context.Context, session *model.CheckinSession, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.WorkerID] = &cp
	return nil
}

func (m *mockCheckinRepo) Get(_ context.Context, workerID string) (*model.CheckinSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[workerID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *mockCheckinRepo) Delete(_ context.Context, workerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, workerID)
	return nil
}

// ── Mock Notifier ──

type mockNotifier struct {
	mu     sync.Mutex
	events []model.TaskEvent
	err    error
}

func (m *mockNotifier) Notify(_ context.Context, event model.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockNotifier) Events() []model.TaskEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TaskEvent(nil), m.events...)
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.tokens[jti] = ttl
	return nil
}
