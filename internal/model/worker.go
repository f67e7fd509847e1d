package model

import (
	"gorm.io/gorm"

	"storeops/internal/auth"
)

// Worker 员工表 — 对应 workers
type Worker struct {
	WorkerID     string    `gorm:"type:uuid;primaryKey"                         json:"worker_id"`
	SiteID       string    `gorm:"type:uuid;not null;index"                     json:"site_id"`
	Name         string    `gorm:"type:varchar(100);not null"                   json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"       json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"                   json:"-"`
	Role         auth.Role `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	IsActive     bool      `gorm:"not null"                                     json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }

// BeforeCreate 生成主键
func (w *Worker) BeforeCreate(_ *gorm.DB) error {
	if w.WorkerID == "" {
		w.WorkerID = newID()
	}
	return nil
}

// Capabilities 当前角色的能力集合
func (w *Worker) Capabilities() auth.CapabilitySet {
	return auth.CapabilitiesOf(w.Role)
}
