package models

import "time"

type CustomerRemark struct {
	ID         int64  `gorm:"primaryKey"`
	CustomerID int64  `gorm:"not null;uniqueIndex"`
	Remarks    string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CustomerRemark) TableName() string {
	return "customer_remarks"
}
