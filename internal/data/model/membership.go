package model

import "time"

// Membership 会员模型
type Membership struct {
	MembershipID     uint64     `gorm:"primaryKey;column:membership_id;autoIncrement"`
	UID              string     `gorm:"column:uid;type:varchar(36);not null;uniqueIndex:uk_uid"` // 用户ID（字符串 UUID）
	IsTrialUsed      bool       `gorm:"column:is_trial_used;default:false"`
	TrialPeriodStart *time.Time `gorm:"column:trial_period_start"`
	TrialPeriodEnd   *time.Time `gorm:"column:trial_period_end"`
	ActiveServiceID  uint64     `gorm:"column:active_service_id"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Membership) TableName() string { return "membership" }
