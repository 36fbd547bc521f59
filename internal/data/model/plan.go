package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan 套餐模型
type Plan struct {
	PlanID        string          `gorm:"primaryKey;column:plan_id;type:varchar(50)"`
	Name          string          `gorm:"column:name"`
	Description   string          `gorm:"column:description"`
	PlanType      string          `gorm:"column:plan_type;type:varchar(20);not null"` // lifetime, yearly, monthly, daily
	DayInterval   int             `gorm:"column:day_interval;default:1"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Currency      string          `gorm:"column:currency;type:varchar(10);default:'USD'"`
	TrialDays     int             `gorm:"column:trial_days;default:0"`
	MembershipFee decimal.Decimal `gorm:"column:membership_fee;type:decimal(10,2);default:0"`
	RenewalPeriod int             `gorm:"column:renewal_period;default:0"` // 0 = 不限
	GraceDays     int             `gorm:"column:grace_days;default:0"`
	SwitchMode    string          `gorm:"column:switch_mode;type:varchar(20);default:'full'"` // full, prorated
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Plan) TableName() string { return "plan" }
