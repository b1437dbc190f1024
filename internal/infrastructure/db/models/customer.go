package models

import "time"

type Customer struct {
	ID           int64   `gorm:"primaryKey"`
	Name         string  `gorm:"size:255;not null"`
	Phone        *string `gorm:"size:32;index"`
	Email        *string `gorm:"size:320"`
	Address      *string `gorm:"type:text"`
	UploadTaskID *string `gorm:"type:uuid;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Customer) TableName() string {
	return "customers"
}
