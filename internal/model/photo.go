package model

import (
	"time"

	"gorm.io/gorm"
)

// ProofPhoto 任务凭证照片表 — 对应 proof_photos（只增不改）
// 仅记录元数据，图片内容由上传处理层负责
type ProofPhoto struct {
	PhotoID       string    `gorm:"type:uuid;primaryKey"               json:"photo_id"`
	TaskID        string    `gorm:"type:uuid;not null;index"           json:"task_id"`
	SiteID        string    `gorm:"type:uuid;not null"                 json:"site_id"`
	SubItemID     *string   `gorm:"type:uuid"                          json:"sub_item_id,omitempty"`
	UploadedBy    string    `gorm:"type:uuid;not null"                 json:"uploaded_by"`
	Lat           *float64  `json:"lat,omitempty"`
	Lng           *float64  `json:"lng,omitempty"`
	ContentSHA256 string    `gorm:"column:content_sha256;type:varchar(64);not null" json:"content_sha256"`
	ContentType   string    `gorm:"type:varchar(50);not null"          json:"content_type"`
	Width         int       `gorm:"not null"                           json:"width"`
	Height        int       `gorm:"not null"                           json:"height"`
	SizeBytes     int64     `gorm:"not null"                           json:"size_bytes"`
	UploadedAt    time.Time `gorm:"not null"                           json:"uploaded_at"`
}

// TableName 指定表名
func (ProofPhoto) TableName() string { return "proof_photos" }

// BeforeCreate 生成主键
func (p *ProofPhoto) BeforeCreate(_ *gorm.DB) error {
	if p.PhotoID == "" {
		p.PhotoID = newID()
	}
	return nil
}
