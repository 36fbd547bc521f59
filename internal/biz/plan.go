package biz

import (
	"context"
	"time"

	"xinyuan_tech/membership-service/internal/constants"

	"github.com/shopspring/decimal"
)

// Plan 会员套餐（计费模板）
type Plan struct {
	PlanID      string
	Name        string
	Description string
	// PlanType 周期类型: lifetime, yearly, monthly, daily
	PlanType string
	// DayInterval 按天付费的周期间隔(天)，仅 daily 有效
	DayInterval int
	Price       decimal.Decimal
	Currency    string
	// TrialDays 试用期天数，0 表示无试用期
	TrialDays int
	// MembershipFee 一次性入会费，随首张账单收取
	MembershipFee decimal.Decimal
	// RenewalPeriod 最大计费周期数，0 表示不限
	RenewalPeriod int
	// GraceDays 周期结束后的宽限期天数
	GraceDays int
	// SwitchMode 立即切换套餐时的定价模式: full, prorated
	SwitchMode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PlanRepo 套餐仓库接口
type PlanRepo interface {
	ListPlans(ctx context.Context) ([]*Plan, error)
	GetPlan(ctx context.Context, id string) (*Plan, error)
}

// HasTrialPeriod 套餐是否带试用期
func (p *Plan) HasTrialPeriod() bool {
	return p.TrialDays > 0
}

// HasMembershipFee 套餐是否收取入会费
func (p *Plan) HasMembershipFee() bool {
	return p.MembershipFee.IsPositive()
}

// IsRenewable 套餐是否可续费（一次性买断套餐不续费）
func (p *Plan) IsRenewable() bool {
	return p.PlanType != constants.PlanTypeLifetime
}

// PeriodEndDate 以 anchor 为起点计算下一个计费周期的结束日期
// lifetime 套餐没有下一个周期，第二个返回值为 false
func (p *Plan) PeriodEndDate(anchor time.Time) (time.Time, bool) {
	return NextPeriodEnd(p, anchor)
}

// SwitchPrice 计算从旧服务立即切换到本套餐时的价格
// prorated 模式按旧服务当前周期的未使用时长抵扣，full 模式收取新套餐全价
func (p *Plan) SwitchPrice(old *Service, now time.Time) decimal.Decimal {
	if p.SwitchMode != constants.SwitchModeProrated {
		return p.Price
	}
	if old == nil || old.CurrentPeriodStart == nil || old.CurrentPeriodEnd == nil {
		return p.Price
	}

	total := old.CurrentPeriodEnd.Sub(*old.CurrentPeriodStart)
	if total <= 0 {
		return p.Price
	}
	remaining := old.CurrentPeriodEnd.Sub(now)
	if remaining <= 0 {
		return p.Price
	}
	if remaining > total {
		remaining = total
	}

	// 未使用部分按旧服务实付价折算成抵扣额
	ratio := decimal.NewFromFloat(remaining.Seconds() / total.Seconds())
	credit := old.Price.Mul(ratio)
	price := p.Price.Sub(credit)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Round(2)
}

// ListPlans 获取所有会员套餐列表
func (uc *MembershipUsecase) ListPlans(ctx context.Context) ([]*Plan, error) {
	return uc.planRepo.ListPlans(ctx)
}

// GetPlan 获取套餐信息
func (uc *MembershipUsecase) GetPlan(ctx context.Context, planID string) (*Plan, error) {
	return uc.planRepo.GetPlan(ctx, planID)
}
