package biz

import (
	"time"

	"xinyuan_tech/membership-service/internal/constants"
)

// NextPeriodEnd 计算套餐从 anchor 起的下一个计费周期结束日期
// 纯函数，只依赖套餐周期类型/间隔与锚点日期:
//   - lifetime: 没有下一个周期，返回 false
//   - yearly:   anchor + 1 年
//   - monthly:  anchor + 1 个月
//   - daily:    anchor + DayInterval 天 (间隔最小为 1)
func NextPeriodEnd(plan *Plan, anchor time.Time) (time.Time, bool) {
	switch plan.PlanType {
	case constants.PlanTypeYearly:
		return addMonths(anchor, 12), true
	case constants.PlanTypeMonthly:
		return addMonths(anchor, 1), true
	case constants.PlanTypeDaily:
		interval := plan.DayInterval
		if interval < constants.DefaultDayInterval {
			interval = constants.DefaultDayInterval
		}
		return anchor.AddDate(0, 0, interval), true
	default:
		// lifetime 以及未知类型都视为没有后续周期
		return time.Time{}, false
	}
}

// addMonths 按日历增加月份
// 目标月份天数不足时收敛到月末(1月31日 + 1月 = 2月28/29日)，
// 避免 AddDate 的溢出语义把计费日漂移到下个月
func addMonths(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	day := t.Day()
	if last := daysInMonth(firstOfTarget); day > last {
		day = last
	}
	return firstOfTarget.AddDate(0, 0, day-1)
}

func daysInMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return firstOfNext.AddDate(0, 0, -1).Day()
}
