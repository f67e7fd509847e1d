package model

import "time"

// EventType 任务事件类型
type EventType string

const (
	EventTaskClaimed     EventType = "task.claimed"
	EventTaskCompleted   EventType = "task.completed"
	EventTaskTransferred EventType = "task.transferred"
)

// TaskEvent 推送给门店管理人员的任务事件
type TaskEvent struct {
	Type     EventType     `json:"type"`
	SiteID   string        `json:"site_id"`
	TaskID   string        `json:"task_id"`
	Title    string        `json:"title"`
	WorkerID string        `json:"worker_id"`
	Transfer *TaskTransfer `json:"transfer,omitempty"`
	At       time.Time     `json:"at"`
}
