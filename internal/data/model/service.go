package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service 服务模型（会员在某个套餐上的一次开通）
// 记录永不物理删除，保留完整计费历史
type Service struct {
	ServiceID          uint64          `gorm:"primaryKey;column:service_id;autoIncrement"`
	MembershipID       uint64          `gorm:"column:membership_id;not null;index:idx_membership;index:idx_throwaway"`
	UID                string          `gorm:"column:uid;type:varchar(36);not null;index:idx_uid;index:idx_throwaway"`
	PlanID             string          `gorm:"column:plan_id;type:varchar(50);not null;index:idx_plan"`
	StatusCode         string          `gorm:"column:status_code;type:varchar(20);not null;index:idx_status"` // new, trial, active, grace, cancelled, expired
	StatusUpdatedAt    time.Time       `gorm:"column:status_updated_at"`
	Price              decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	ServicePeriodStart *time.Time      `gorm:"column:service_period_start"`
	ServicePeriodEnd   *time.Time      `gorm:"column:service_period_end;index:idx_service_period_end"`
	CurrentPeriodStart *time.Time      `gorm:"column:current_period_start"`
	CurrentPeriodEnd   *time.Time      `gorm:"column:current_period_end;index:idx_current_period_end"`
	DelayActivatedAt   *time.Time      `gorm:"column:delay_activated_at;index:idx_delay_activated"`
	DelayCancelledAt   *time.Time      `gorm:"column:delay_cancelled_at"`
	CancelledAt        *time.Time      `gorm:"column:cancelled_at"`
	ActivatedAt        *time.Time      `gorm:"column:activated_at"`
	ExpiredAt          *time.Time      `gorm:"column:expired_at"`
	CountRenewal       int             `gorm:"column:count_renewal;default:0"`
	GraceDays          int             `gorm:"column:grace_days;default:0"`
	IsThrowaway        bool            `gorm:"column:is_throwaway;default:false;index:idx_throwaway"`
	FirstInvoiceID     uint64          `gorm:"column:first_invoice_id"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Service) TableName() string { return "service" }
