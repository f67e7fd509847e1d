package dto

import (
	"time"

	"storeops/internal/model"
)

// ── 任务模块 DTO ──

// CreateTaskRequest 创建任务请求
// Recurrence 非空时按周期展开为多条任务
type CreateTaskRequest struct {
	SiteID           string             `json:"site_id"           binding:"required"`
	Title            string             `json:"title"             binding:"required,max=200"`
	Description      string             `json:"description"       binding:"omitempty,max=2000"`
	Notes            string             `json:"notes"             binding:"omitempty,max=2000"`
	AssignmentMode   string             `json:"assignment_mode"   binding:"omitempty,oneof=store_wide specific"`
	AssigneeID       *string            `json:"assignee_id"`
	ScheduledFor     *time.Time         `json:"scheduled_for"`
	DueAt            *time.Time         `json:"due_at"`
	EstimatedMinutes *int               `json:"estimated_minutes" binding:"omitempty,min=0"`
	PhotoRequired    bool               `json:"photo_required"`
	PhotoCount       *int               `json:"photo_count"       binding:"omitempty,min=0,max=50"`
	Fence            *FenceOverride     `json:"fence"`
	TemplateID       *string            `json:"template_id"`
	Recurrence       *RecurrenceRequest `json:"recurrence"`
}

// FenceOverride 任务级围栏覆盖
type FenceOverride struct {
	Lat          float64 `json:"lat"           binding:"latitude"`
	Lng          float64 `json:"lng"           binding:"longitude"`
	RadiusMeters float64 `json:"radius_meters" binding:"gt=0"`
}

// RecurrenceRequest 周期规则
type RecurrenceRequest struct {
	Cadence     string `json:"cadence"     binding:"required,oneof=daily weekly monthly"`
	Interval    int    `json:"interval"    binding:"omitempty,min=1"`
	Occurrences int    `json:"occurrences" binding:"required,min=1,max=366"`
}

// TaskListRequest 门店任务列表查询参数
type TaskListRequest struct {
	Status    []string   `form:"status"     binding:"omitempty,dive,oneof=pending available claimed in_progress completed overdue"`
	ClaimedBy string     `form:"claimed_by"`
	From      *time.Time `form:"from"       time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to"         time_format:"2006-01-02T15:04:05Z07:00"`
}

// ClaimTaskRequest 认领任务请求
type ClaimTaskRequest struct {
	Location
}

// CompleteTaskRequest 完成任务请求
type CompleteTaskRequest struct {
	Notes                    *string `json:"notes" binding:"omitempty,max=2000"`
	OverridePhotoRequirement bool    `json:"override_photo_requirement"`
	Location
}

// TransferTaskRequest 转派任务请求；from_worker_id 缺省为当前持有人
type TransferTaskRequest struct {
	FromWorkerID string  `json:"from_worker_id"`
	ToWorkerID   string  `json:"to_worker_id"   binding:"required"`
	Reason       *string `json:"reason"         binding:"omitempty,max=500"`
}

// UploadPhotoForm 凭证照片上传表单（multipart，文件字段为 photo）
type UploadPhotoForm struct {
	SubItemID *string `form:"sub_item_id"`
	Location
}

// ── 响应 ──

// TaskResponse 任务响应
type TaskResponse struct {
	*model.Task
	PhotosSatisfied bool `json:"photos_satisfied"`
}

// NewTaskResponse 构造任务响应
func NewTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{Task: t, PhotosSatisfied: t.PhotosSatisfied()}
}

// NewTaskListResponse 构造任务列表响应
func NewTaskListResponse(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}

// CreateTaskResponse 创建任务响应（周期任务返回多条）
type CreateTaskResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}
