package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleAdjustment 计费计划表人工调价模型
// 按 (membership_id, billing_period) 唯一定位某一期的覆盖价
type ScheduleAdjustment struct {
	ScheduleAdjustmentID uint64          `gorm:"primaryKey;column:schedule_adjustment_id;autoIncrement"`
	MembershipID         uint64          `gorm:"column:membership_id;not null;uniqueIndex:uk_membership_period"`
	BillingPeriod        int             `gorm:"column:billing_period;not null;uniqueIndex:uk_membership_period"`
	Price                decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Comment              string          `gorm:"column:comment"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ScheduleAdjustment) TableName() string { return "schedule_adjustment" }
