package biz

import (
	"context"
	"time"

	"xinyuan_tech/membership-service/internal/constants"
	"xinyuan_tech/membership-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/shopspring/decimal"
)

// ScheduleAdjustment 计费计划表的人工调价记录
// 按 (membership_id, billing_period) 定位，只读，后台录入
type ScheduleAdjustment struct {
	ScheduleAdjustmentID uint64
	MembershipID         uint64
	BillingPeriod        int
	Price                decimal.Decimal
	Comment              string
	CreatedAt            time.Time
}

// ScheduleAdjustmentRepo 调价记录仓库接口
type ScheduleAdjustmentRepo interface {
	// ListAdjustments 获取某会员从 fromPeriod 起的所有调价记录
	ListAdjustments(ctx context.Context, membershipID uint64, fromPeriod int) ([]*ScheduleAdjustment, error)
}

// PeriodProjection 计费计划表中的一期
type PeriodProjection struct {
	// Period 计费周期序号，从 1 开始严格递增
	Period      int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Total       decimal.Decimal
	Comment     string
	// Adjusted 本期价格是否被人工调价覆盖
	Adjusted bool
}

// visibleHorizon 按套餐周期类型决定向前展示多少期
// 控制报表/界面规模，同时保证不同付费节奏下都有合理的展望窗口
func visibleHorizon(plan *Plan) int {
	switch plan.PlanType {
	case constants.PlanTypeYearly:
		return constants.ScheduleVisibleYearly
	case constants.PlanTypeMonthly:
		return constants.ScheduleVisibleMonthly
	case constants.PlanTypeDaily:
		if plan.DayInterval <= constants.ScheduleDailyShortMaxInterval {
			return constants.ScheduleVisibleDailyShort
		}
		return constants.ScheduleVisibleDailyLong
	}
	return 0
}

// BuildSchedule 根据持久化状态推算未来计费周期
// 纯函数，每次调用都从头推算，结果可复现:
//  1. lifetime 套餐没有未来账期，返回空
//  2. 起始序号为 count_renewal+1（无续费记录时为 1）
//  3. 游标从当前周期取值；grace 状态下游标终点回退到当前周期起点，
//     因为宽限中的周期尚未支付，下一期账单仍要覆盖它
//  4. 逐期推进，按顺序检查: 日历耗尽 -> 预定取消截断 -> 续费上限
func BuildSchedule(service *Service, plan *Plan, adjustments []*ScheduleAdjustment) []*PeriodProjection {
	if plan.PlanType == constants.PlanTypeLifetime {
		return nil
	}
	if service.CurrentPeriodStart == nil || service.CurrentPeriodEnd == nil {
		return nil
	}

	cursorEnd := *service.CurrentPeriodEnd
	if service.StatusCode == constants.StatusGrace {
		cursorEnd = *service.CurrentPeriodStart
	}

	start := 1
	if service.CountRenewal > 0 {
		start = service.CountRenewal + 1
	}

	adjusted := make(map[int]*ScheduleAdjustment, len(adjustments))
	for _, a := range adjustments {
		adjusted[a.BillingPeriod] = a
	}

	visible := visibleHorizon(plan)
	schedule := make([]*PeriodProjection, 0, visible+1)

	for i := start; i <= start+visible; i++ {
		cursorStart := cursorEnd
		next, ok := plan.PeriodEndDate(cursorEnd)
		if !ok {
			break
		}
		cursorEnd = next

		// 预定取消后的周期不再展示，即使仍在续费上限之内
		if service.DelayCancelledAt != nil && !cursorStart.Before(*service.DelayCancelledAt) {
			break
		}

		if plan.RenewalPeriod > 0 && i > plan.RenewalPeriod {
			break
		}

		entry := &PeriodProjection{
			Period:      i,
			PeriodStart: cursorStart,
			PeriodEnd:   cursorEnd,
			Total:       plan.Price,
		}
		if a, ok := adjusted[i]; ok {
			entry.Total = a.Price
			entry.Comment = a.Comment
			entry.Adjusted = true
		}

		schedule = append(schedule, entry)
	}

	return schedule
}

// GetSchedule 获取服务的未来计费计划表
func (uc *MembershipUsecase) GetSchedule(ctx context.Context, serviceID uint64) ([]*PeriodProjection, error) {
	svc, err := uc.serviceRepo.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeServiceNotFound)
	}

	plan, err := uc.planRepo.GetPlan(ctx, svc.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}

	start := 1
	if svc.CountRenewal > 0 {
		start = svc.CountRenewal + 1
	}
	adjustments, err := uc.scheduleRepo.ListAdjustments(ctx, svc.MembershipID, start)
	if err != nil {
		return nil, err
	}

	return BuildSchedule(svc, plan, adjustments), nil
}
