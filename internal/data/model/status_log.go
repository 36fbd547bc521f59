package model

import "time"

// StatusLog 服务状态变更日志模型（只追加）
type StatusLog struct {
	StatusLogID uint64    `gorm:"primaryKey;column:status_log_id;autoIncrement"`
	ServiceID   uint64    `gorm:"column:service_id;not null;index:idx_service"`
	StatusCode  string    `gorm:"column:status_code;type:varchar(20);not null"`
	Action      string    `gorm:"column:action;type:varchar(30)"` // created, activated, renewed, grace_entered, cancel_scheduled, cancelled, resumed, expired
	Comment     string    `gorm:"column:comment"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (StatusLog) TableName() string { return "status_log" }
