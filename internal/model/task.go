package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"storeops/pkg/geo"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAvailable  TaskStatus = "available"
	TaskClaimed    TaskStatus = "claimed"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
)

// ClaimableStatuses 可认领状态集合（pending 与 available 对认领等价）
func ClaimableStatuses() []TaskStatus {
	return []TaskStatus{TaskPending, TaskAvailable}
}

// HeldStatuses 已被某员工持有的状态集合（可转派）
func HeldStatuses() []TaskStatus {
	return []TaskStatus{TaskClaimed, TaskInProgress, TaskOverdue}
}

// Claimable 是否处于可认领状态
func (s TaskStatus) Claimable() bool {
	return s == TaskPending || s == TaskAvailable
}

// Terminal 是否为终态
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted
}

// Valid 是否为已知状态
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskAvailable, TaskClaimed, TaskInProgress, TaskCompleted, TaskOverdue:
		return true
	}
	return false
}

// AssignmentMode 指派方式
type AssignmentMode string

const (
	AssignStoreWide AssignmentMode = "store_wide" // 全店员工均可认领
	AssignSpecific  AssignmentMode = "specific"   // 仅指定员工可认领
)

// ── 任务来源（标签联合） ──

// OriginKind 任务来源类别
type OriginKind string

const (
	OriginStandalone OriginKind = "standalone"
	OriginTemplate   OriginKind = "template"
	OriginRecurrence OriginKind = "recurrence"
)

// Origin 任务来源：Standalone | FromTemplate{templateID} | FromRecurrence{templateID, sequenceIndex}
// 只能通过构造函数创建，持久化为 origin_kind / template_id / sequence_index 三列
type Origin struct {
	Kind          OriginKind `gorm:"column:origin_kind;type:varchar(20);not null;default:'standalone'" json:"kind"`
	TemplateID    *string    `gorm:"column:template_id;type:uuid"                                    json:"template_id,omitempty"`
	SequenceIndex *int       `gorm:"column:sequence_index"                                           json:"sequence_index,omitempty"`
}

// Standalone 独立创建的任务
func Standalone() Origin {
	return Origin{Kind: OriginStandalone}
}

// FromTemplate 由清单模板实例化的任务
func FromTemplate(templateID string) (Origin, error) {
	o := Origin{Kind: OriginTemplate, TemplateID: &templateID}
	return o, o.Validate()
}

// FromRecurrence 由周期规则展开的第 index 个任务
func FromRecurrence(templateID string, index int) (Origin, error) {
	o := Origin{Kind: OriginRecurrence, TemplateID: &templateID, SequenceIndex: &index}
	return o, o.Validate()
}

// Validate 校验来源字段组合
func (o Origin) Validate() error {
	hasTemplate := o.TemplateID != nil && *o.TemplateID != ""
	switch o.Kind {
	case OriginStandalone:
		if o.TemplateID != nil || o.SequenceIndex != nil {
			return fmt.Errorf("独立任务不能携带模板或序号")
		}
	case OriginTemplate:
		if !hasTemplate {
			return fmt.Errorf("模板任务必须携带模板ID")
		}
		if o.SequenceIndex != nil {
			return fmt.Errorf("模板任务不能携带周期序号")
		}
	case OriginRecurrence:
		if !hasTemplate {
			return fmt.Errorf("周期任务必须携带模板ID")
		}
		if o.SequenceIndex == nil || *o.SequenceIndex < 0 {
			return fmt.Errorf("周期任务必须携带非负序号")
		}
	default:
		return fmt.Errorf("未知任务来源: %q", o.Kind)
	}
	return nil
}

// Task 任务表 — 对应 tasks
// 状态流转：pending → claimed → in_progress → completed；overdue 可由任意非终态进入
type Task struct {
	TaskID           string         `gorm:"type:uuid;primaryKey"                                 json:"task_id"`
	SiteID           string         `gorm:"type:uuid;not null;index"                             json:"site_id"`
	Title            string         `gorm:"type:varchar(200);not null"                           json:"title"`
	Description      string         `gorm:"type:text"                                            json:"description,omitempty"`
	Notes            string         `gorm:"type:text"                                            json:"notes,omitempty"`
	Origin           Origin         `gorm:"embedded"                                             json:"origin"`
	Status           TaskStatus     `gorm:"type:varchar(20);not null;default:'pending';index"    json:"status"`
	AssignmentMode   AssignmentMode `gorm:"type:varchar(20);not null;default:'store_wide'"       json:"assignment_mode"`
	AssigneeID       *string        `gorm:"type:uuid"                                            json:"assignee_id,omitempty"`
	ClaimedBy        *string        `gorm:"type:uuid;index"                                      json:"claimed_by,omitempty"`
	CompletedBy      *string        `gorm:"type:uuid"                                            json:"completed_by,omitempty"`
	ScheduledFor     time.Time      `gorm:"not null"                                             json:"scheduled_for"`
	DueAt            *time.Time     `gorm:"index"                                                json:"due_at,omitempty"`
	ClaimedAt        *time.Time     `json:"claimed_at,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	EstimatedMinutes *int           `json:"estimated_minutes,omitempty"`
	ActualMinutes    *int           `json:"actual_minutes,omitempty"`
	PhotoRequired    bool           `gorm:"not null"                                             json:"photo_required"`
	PhotoCount       int            `gorm:"not null"                                             json:"photo_count"`
	PhotosUploaded   int            `gorm:"not null"                                             json:"photos_uploaded"`
	FenceLat         *float64       `json:"fence_lat,omitempty"`
	FenceLng         *float64       `json:"fence_lng,omitempty"`
	FenceRadiusM     *float64       `gorm:"column:fence_radius_m"                                json:"fence_radius_m,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }

// BeforeCreate 生成主键
func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.TaskID == "" {
		t.TaskID = newID()
	}
	if t.Version == 0 {
		t.Version = 1
	}
	return nil
}

// OverrideFence 任务自身的围栏覆盖；三个字段不全时返回 nil
func (t *Task) OverrideFence() *geo.Fence {
	if t.FenceLat == nil || t.FenceLng == nil || t.FenceRadiusM == nil {
		return nil
	}
	return &geo.Fence{
		Center:       geo.Point{Lat: *t.FenceLat, Lng: *t.FenceLng},
		RadiusMeters: *t.FenceRadiusM,
	}
}

// IsSpecific 是否指定员工任务
func (t *Task) IsSpecific() bool {
	return t.AssignmentMode == AssignSpecific
}

// AssignedTo 是否指派给该员工
func (t *Task) AssignedTo(workerID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == workerID
}

// HeldBy 是否由该员工持有
func (t *Task) HeldBy(workerID string) bool {
	return t.ClaimedBy != nil && *t.ClaimedBy == workerID
}

// PhotosSatisfied 已上传照片是否满足要求
func (t *Task) PhotosSatisfied() bool {
	return !t.PhotoRequired || t.PhotosUploaded >= t.PhotoCount
}

// PhotoCapReached 照片是否已达上限（PhotoCount=0 表示不限）
func (t *Task) PhotoCapReached() bool {
	return t.PhotoCount > 0 && t.PhotosUploaded >= t.PhotoCount
}
