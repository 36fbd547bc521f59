package biz

import (
	"testing"
	"time"

	"xinyuan_tech/membership-service/internal/constants"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextPeriodEnd_Monthly(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeMonthly}

	end, ok := NextPeriodEnd(plan, date(2024, 1, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, 2, 1), end)
}

func TestNextPeriodEnd_MonthlyClampsToMonthEnd(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeMonthly}

	// 闰年 1月31日 + 1个月 = 2月29日，而不是 3月2日
	end, ok := NextPeriodEnd(plan, date(2024, 1, 31))
	assert.True(t, ok)
	assert.Equal(t, date(2024, 2, 29), end)

	// 平年收敛到 2月28日
	end, ok = NextPeriodEnd(plan, date(2023, 1, 31))
	assert.True(t, ok)
	assert.Equal(t, date(2023, 2, 28), end)

	// 10月31日 + 1个月 = 11月30日
	end, ok = NextPeriodEnd(plan, date(2024, 10, 31))
	assert.True(t, ok)
	assert.Equal(t, date(2024, 11, 30), end)
}

func TestNextPeriodEnd_MonthlyPreservesTimeOfDay(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeMonthly}

	anchor := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	end, ok := NextPeriodEnd(plan, anchor)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 4, 15, 9, 30, 45, 0, time.UTC), end)
}

func TestNextPeriodEnd_Yearly(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeYearly}

	end, ok := NextPeriodEnd(plan, date(2024, 6, 15))
	assert.True(t, ok)
	assert.Equal(t, date(2025, 6, 15), end)

	// 闰日锚点在平年收敛到 2月28日
	end, ok = NextPeriodEnd(plan, date(2024, 2, 29))
	assert.True(t, ok)
	assert.Equal(t, date(2025, 2, 28), end)
}

func TestNextPeriodEnd_Daily(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeDaily, DayInterval: 15}

	end, ok := NextPeriodEnd(plan, date(2024, 1, 20))
	assert.True(t, ok)
	assert.Equal(t, date(2024, 2, 4), end)
}

func TestNextPeriodEnd_DailyDefaultsInterval(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeDaily}

	end, ok := NextPeriodEnd(plan, date(2024, 1, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, 1, 2), end)
}

func TestNextPeriodEnd_Lifetime(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeLifetime}

	_, ok := NextPeriodEnd(plan, date(2024, 1, 1))
	assert.False(t, ok)
}

func TestNextPeriodEnd_UnknownType(t *testing.T) {
	plan := &Plan{PlanType: "weekly"}

	_, ok := NextPeriodEnd(plan, date(2024, 1, 1))
	assert.False(t, ok)
}

func TestNextPeriodEnd_ChainedMonthlyStaysOnAnchorDay(t *testing.T) {
	plan := &Plan{PlanType: constants.PlanTypeMonthly}

	// 从月末日期连续推进，收敛后不再回到 31 日
	cursor := date(2024, 1, 31)
	var ok bool
	for i := 0; i < 3; i++ {
		cursor, ok = NextPeriodEnd(plan, cursor)
		assert.True(t, ok)
	}
	// 1/31 -> 2/29 -> 3/29 -> 4/29
	assert.Equal(t, date(2024, 4, 29), cursor)
}
