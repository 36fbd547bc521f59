package biz

import (
	"context"
	"time"

	"xinyuan_tech/membership-service/internal/constants"

	"github.com/shopspring/decimal"
)

// Service 会员在某个套餐上的一次具体开通记录
// 会员切换套餐会产生多条 Service，同一时刻只有一条是活跃的；
// 历史记录永不物理删除，用于计费审计
type Service struct {
	ServiceID    uint64
	MembershipID uint64
	UID          string
	PlanID       string
	// StatusCode 当前状态: new, trial, active, grace, cancelled, expired
	StatusCode      string
	StatusUpdatedAt time.Time
	// Price 本服务的实付周期价格（可能是切换套餐时的折算价）
	Price decimal.Decimal
	// ServicePeriodStart/End 整个开通区间
	ServicePeriodStart *time.Time
	ServicePeriodEnd   *time.Time
	// CurrentPeriodStart/End 当前计费周期
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	// DelayActivatedAt 延迟生效时间（到期切换套餐时指向旧服务的结束时间）
	DelayActivatedAt *time.Time
	// DelayCancelledAt 预定取消时间，CancelledAt 为实际取消时间
	DelayCancelledAt *time.Time
	CancelledAt      *time.Time
	ActivatedAt      *time.Time
	ExpiredAt        *time.Time
	// CountRenewal 已完成的计费周期数
	CountRenewal int
	// GraceDays 周期结束后的宽限天数
	GraceDays int
	// IsThrowaway 占位服务标记，未生效前作为 upsert 键复用
	IsThrowaway    bool
	FirstInvoiceID uint64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ServiceRepo 服务仓库接口
type ServiceRepo interface {
	GetService(ctx context.Context, id uint64) (*Service, error)
	SaveService(ctx context.Context, svc *Service) error
	// UpsertThrowaway 按 (membership_id, uid, is_throwaway=1) 进行创建或复用
	// 已存在占位服务时只更新套餐和延迟生效时间，返回值标明是否复用
	UpsertThrowaway(ctx context.Context, membershipID uint64, uid, planID string, delay *time.Time, now time.Time) (*Service, bool, error)
	// 批量查询（用于定时任务）
	ListDelayActivatable(ctx context.Context, now time.Time) ([]*Service, error)
	ListPeriodEnded(ctx context.Context, now time.Time) ([]*Service, error)
	ListGraceEnded(ctx context.Context, now time.Time) ([]*Service, error)
	ListServicePeriodEnded(ctx context.Context, now time.Time) ([]*Service, error)
}

// StatusLog 服务状态变更日志（只追加）
type StatusLog struct {
	StatusLogID uint64
	ServiceID   uint64
	StatusCode  string
	// Action 触发本次变更的操作: created, activated, renewed, ...
	Action    string
	Comment   string
	CreatedAt time.Time
}

// StatusLogRepo 状态日志仓库接口
type StatusLogRepo interface {
	AddStatusLog(ctx context.Context, entry *StatusLog) error
}

// IsActive 服务是否处于可用状态（active/trial/grace 都算可用）
func (s *Service) IsActive() bool {
	switch s.StatusCode {
	case constants.StatusActive, constants.StatusTrial, constants.StatusGrace:
		return true
	}
	return false
}

// IsCancelled 服务是否已取消或已预定取消
func (s *Service) IsCancelled() bool {
	if s.DelayCancelledAt != nil {
		return true
	}
	return s.StatusCode == constants.StatusCancelled
}

// IsDelayCancelled 服务是否处于"已预定取消但仍然可用"状态
func (s *Service) IsDelayCancelled() bool {
	return s.IsCancelled() && s.IsActive()
}

// CancelDate 取消生效日期，已实际取消时优先返回实际取消时间
func (s *Service) CancelDate() *time.Time {
	if s.CancelledAt != nil {
		return s.CancelledAt
	}
	return s.DelayCancelledAt
}

// HasGracePeriod 服务是否带宽限期
func (s *Service) HasGracePeriod() bool {
	return s.GraceDays > 0
}

// HasPeriodEnded 当前计费周期是否已结束
func (s *Service) HasPeriodEnded(now time.Time) bool {
	return s.CurrentPeriodEnd != nil && !s.CurrentPeriodEnd.After(now)
}

// HasServicePeriodEnded 整个开通区间是否已结束
func (s *Service) HasServicePeriodEnded(now time.Time) bool {
	return s.ServicePeriodEnd != nil && !s.ServicePeriodEnd.After(now)
}

// CanRenew 服务是否还能进入下一个计费周期
func (s *Service) CanRenew(plan *Plan) bool {
	// 套餐本身不续费
	if plan == nil || !plan.IsRenewable() {
		return false
	}

	// 缺少结束时间
	if s.ServicePeriodEnd == nil {
		return false
	}

	// 已实际取消
	if s.CancelledAt != nil {
		return false
	}

	// 必须已经正式生效过
	if s.StatusCode == constants.StatusNew || s.StatusCode == constants.StatusTrial {
		return false
	}

	// 还存在下一个计费周期
	if _, ok := plan.PeriodEndDate(*s.ServicePeriodEnd); !ok {
		return false
	}

	return true
}

// GetService 获取服务详情
func (uc *MembershipUsecase) GetService(ctx context.Context, serviceID uint64) (*Service, error) {
	return uc.serviceRepo.GetService(ctx, serviceID)
}
