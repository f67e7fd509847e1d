package model

import (
	"time"

	"gorm.io/gorm"
)

// TaskTransfer 任务转派记录表 — 对应 task_transfers（纯审计日志，只增不改）
type TaskTransfer struct {
	TransferID    string    `gorm:"type:uuid;primaryKey"               json:"transfer_id"`
	TaskID        string    `gorm:"type:uuid;not null;index"           json:"task_id"`
	FromWorkerID  string    `gorm:"type:uuid;not null"                 json:"from_worker_id"`
	ToWorkerID    string    `gorm:"type:uuid;not null"                 json:"to_worker_id"`
	Reason        *string   `gorm:"type:varchar(500)"                  json:"reason,omitempty"`
	TransferredBy string    `gorm:"type:uuid;not null"                 json:"transferred_by"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (TaskTransfer) TableName() string { return "task_transfers" }

// BeforeCreate 生成主键
func (t *TaskTransfer) BeforeCreate(_ *gorm.DB) error {
	if t.TransferID == "" {
		t.TransferID = newID()
	}
	return nil
}
