package constants

import "time"

// 缓存相关常量
const (
	// DefaultCacheExpiration 默认缓存过期时间
	DefaultCacheExpiration = time.Hour
	// NullCacheExpiration 空值缓存过期时间 (防止缓存穿透)
	NullCacheExpiration = 5 * time.Minute
	// CacheRandomMaxSeconds 缓存随机过期时间最大值(秒) - 防止缓存雪崩
	CacheRandomMaxSeconds = 600 // 10分钟
)

// 套餐周期类型
const (
	PlanTypeLifetime = "lifetime"
	PlanTypeYearly   = "yearly"
	PlanTypeMonthly  = "monthly"
	PlanTypeDaily    = "daily"
)

// 套餐切换定价模式
const (
	// SwitchModeFull 切换套餐时按新套餐全价收费
	SwitchModeFull = "full"
	// SwitchModeProrated 切换套餐时抵扣旧服务未使用部分
	SwitchModeProrated = "prorated"
)

// 服务状态
const (
	StatusNew       = "new"
	StatusTrial     = "trial"
	StatusActive    = "active"
	StatusGrace     = "grace"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// 账单状态
const (
	InvoiceStatusDraft  = "draft"
	InvoiceStatusUnpaid = "unpaid"
	InvoiceStatusPaid   = "paid"
	InvoiceStatusVoid   = "void"
)

// 状态日志操作
const (
	ActionCreated         = "created"
	ActionActivated       = "activated"
	ActionRenewed         = "renewed"
	ActionGraceEntered    = "grace_entered"
	ActionCancelScheduled = "cancel_scheduled"
	ActionCancelled       = "cancelled"
	ActionResumed         = "resumed"
	ActionExpired         = "expired"
)

// 计费计划表可见周期数（按套餐周期类型划分）
const (
	// ScheduleVisibleYearly 年付套餐向前展示的周期数
	ScheduleVisibleYearly = 5
	// ScheduleVisibleMonthly 月付套餐向前展示的周期数
	ScheduleVisibleMonthly = 14
	// ScheduleVisibleDailyShort 短间隔(<=15天)按天付费套餐向前展示的周期数
	ScheduleVisibleDailyShort = 24
	// ScheduleVisibleDailyLong 长间隔(>15天)按天付费套餐向前展示的周期数
	ScheduleVisibleDailyLong = 18
	// ScheduleDailyShortMaxInterval 短间隔按天付费套餐的间隔上限(天)
	ScheduleDailyShortMaxInterval = 15
)

// 分布式锁相关常量
const (
	// LifecycleLockExpiration 生命周期处理锁过期时间
	LifecycleLockExpiration = 10 * time.Minute
	// LifecycleLockRetries 生命周期处理锁重试次数
	LifecycleLockRetries = 1
)

// 订阅相关默认值
const (
	// DefaultGraceDays 默认宽限期天数(套餐未配置时兜底)
	DefaultGraceDays = 0
	// DefaultDayInterval 按天付费套餐的默认间隔
	DefaultDayInterval = 1
)
