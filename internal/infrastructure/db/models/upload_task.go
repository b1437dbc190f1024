package models

import "time"

type UploadTask struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	FileName      string    `gorm:"size:255;not null"`
	TotalCount    int64     `gorm:"not null;default:0"`
	AddedCount    int64     `gorm:"not null;default:0"`
	ExistingCount int64     `gorm:"not null;default:0"`
	ErrorCount    int64     `gorm:"not null;default:0"`
	Status        string    `gorm:"size:32;not null;index"`
	Remark        *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index"`
	CompletedAt   *time.Time
}

func (UploadTask) TableName() string {
	return "upload_tasks"
}
