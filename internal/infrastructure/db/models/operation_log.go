package models

import "time"

type OperationLog struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"size:64;not null"`
	Operation    string    `gorm:"size:32;not null"`
	Target       string    `gorm:"size:32;not null"`
	Description  string    `gorm:"type:text"`
	Status       string    `gorm:"size:16;not null"`
	ClientIP     *string   `gorm:"size:64"`
	UploadTaskID *string   `gorm:"type:uuid;index"`
	ErrorMessage *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index"`
}

func (OperationLog) TableName() string {
	return "operation_logs"
}
