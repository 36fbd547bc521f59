package biz

import (
	"context"
	"time"

	"xinyuan_tech/membership-service/internal/conf"
	"xinyuan_tech/membership-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

// Membership 会员记录（长期存在，可能先后持有多个套餐服务）
type Membership struct {
	MembershipID uint64
	UID          string
	// IsTrialUsed 试用期是否已使用过，置为 true 后永不回退
	IsTrialUsed      bool
	TrialPeriodStart *time.Time
	TrialPeriodEnd   *time.Time
	// ActiveServiceID 当前活跃服务，0 表示尚未开通
	ActiveServiceID uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTrialActive 试用期当前是否生效
func (m *Membership) IsTrialActive(now time.Time) bool {
	if m.TrialPeriodStart == nil || m.TrialPeriodEnd == nil {
		return false
	}
	return !now.Before(*m.TrialPeriodStart) && now.Before(*m.TrialPeriodEnd)
}

// MembershipRepo 会员仓库接口
type MembershipRepo interface {
	GetMembership(ctx context.Context, id uint64) (*Membership, error)
	GetMembershipByUID(ctx context.Context, uid string) (*Membership, error)
	SaveMembership(ctx context.Context, m *Membership) error
}

// MembershipUsecase 会员生命周期业务逻辑
type MembershipUsecase struct {
	membershipRepo MembershipRepo
	serviceRepo    ServiceRepo
	planRepo       PlanRepo
	scheduleRepo   ScheduleAdjustmentRepo
	statusLogRepo  StatusLogRepo
	invoiceManager InvoiceManager
	initializer    ServiceInitializer
	tx             Transaction
	locker         MembershipLocker
	clock          Clock
	config         *conf.Bootstrap
	log            *log.Helper
}

// NewMembershipUsecase 创建会员生命周期用例
func NewMembershipUsecase(
	membershipRepo MembershipRepo,
	serviceRepo ServiceRepo,
	planRepo PlanRepo,
	scheduleRepo ScheduleAdjustmentRepo,
	statusLogRepo StatusLogRepo,
	invoiceManager InvoiceManager,
	initializer ServiceInitializer,
	tx Transaction,
	locker MembershipLocker,
	clock Clock,
	config *conf.Bootstrap,
	logger log.Logger,
) *MembershipUsecase {
	return &MembershipUsecase{
		membershipRepo: membershipRepo,
		serviceRepo:    serviceRepo,
		planRepo:       planRepo,
		scheduleRepo:   scheduleRepo,
		statusLogRepo:  statusLogRepo,
		invoiceManager: invoiceManager,
		initializer:    initializer,
		tx:             tx,
		locker:         locker,
		clock:          clock,
		config:         config,
		log:            log.NewHelper(logger),
	}
}

// InitMembershipOptions 会员初始化参数
type InitMembershipOptions struct {
	// Guest 游客下单（注册流程尚未完成）
	Guest bool
}

// CreateServiceOptions 服务创建参数
type CreateServiceOptions struct {
	// Delay 延迟生效时间，到期切换套餐时使用
	Delay *time.Time
	// Price 覆盖价格，立即切换套餐时使用；与 Delay 互斥
	Price *decimal.Decimal
}

// SwitchPlanOptions 套餐切换参数
type SwitchPlanOptions struct {
	// AtTermEnd 是否在当前付费周期结束后才生效
	AtTermEnd bool
}

// DefaultSwitchPlanOptions 默认到期切换
func DefaultSwitchPlanOptions() SwitchPlanOptions {
	return SwitchPlanOptions{AtTermEnd: true}
}

// InitMembership 把会员初始化到指定套餐上
// 未用过试用期且套餐带试用期时先分配试用期；创建(或复用)服务并
// 处理首张账单（入会费、试用期内推迟到期日、置为草稿并重算总额），
// 最后把会员的活跃服务指向新服务
func (uc *MembershipUsecase) InitMembership(ctx context.Context, membershipID uint64, planID string, opts InitMembershipOptions) (*Service, error) {
	uc.log.Infof("InitMembership: membershipID=%d, planID=%s, guest=%v", membershipID, planID, opts.Guest)

	if planID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanRequired)
	}

	membership, err := uc.membershipRepo.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeMembershipNotFound)
	}

	plan, err := uc.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}

	now := uc.clock.Now()

	var svc *Service

	err = uc.tx.Exec(ctx, func(ctx context.Context) error {
		if !membership.IsTrialUsed && plan.HasTrialPeriod() {
			uc.setTrialPeriodFromPlan(membership, plan, now)
		}

		svc, _, err = uc.createForMembership(ctx, membership, plan, CreateServiceOptions{})
		if err != nil {
			return err
		}

		invoice, err := uc.invoiceManager.GetInvoice(ctx, svc.FirstInvoiceID)
		if err != nil {
			return err
		}

		if plan.HasMembershipFee() {
			if err := uc.invoiceManager.RaiseMembershipFee(ctx, invoice, membership, plan.MembershipFee); err != nil {
				return err
			}
		}

		// 试用期内不收款，账单到期日推迟到试用期结束
		if membership.IsTrialActive(now) {
			if err := uc.invoiceManager.SetDueDate(ctx, invoice, *membership.TrialPeriodEnd); err != nil {
				return err
			}
		}

		if err := uc.invoiceManager.MarkDraft(ctx, invoice); err != nil {
			return err
		}
		if err := uc.invoiceManager.RecomputeTotals(ctx, invoice); err != nil {
			return err
		}

		membership.ActiveServiceID = svc.ServiceID
		return uc.membershipRepo.SaveMembership(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Membership %d initialized on plan %s (service %d)", membership.MembershipID, plan.PlanID, svc.ServiceID)
	return svc, nil
}

// setTrialPeriodFromPlan 按套餐分配试用期
func (uc *MembershipUsecase) setTrialPeriodFromPlan(membership *Membership, plan *Plan, now time.Time) {
	end := now.AddDate(0, 0, plan.TrialDays)

	membership.IsTrialUsed = true
	membership.TrialPeriodStart = &now
	membership.TrialPeriodEnd = &end
}

// createForMembership 为会员创建（或复用占位）服务
// 以 (membership_id, uid, is_throwaway=1) 作为 upsert 键，避免会员在首个
// 服务敲定前重复初始化时积累重复的占位记录
func (uc *MembershipUsecase) createForMembership(ctx context.Context, membership *Membership, plan *Plan, opts CreateServiceOptions) (*Service, bool, error) {
	svc, reused, err := uc.serviceRepo.UpsertThrowaway(ctx, membership.MembershipID, membership.UID, plan.PlanID, opts.Delay, uc.clock.Now())
	if err != nil {
		return nil, false, err
	}

	if reused {
		uc.log.Infof("Reusing throwaway service %d for membership %d", svc.ServiceID, membership.MembershipID)
	} else {
		uc.log.Infof("Created service %d for membership %d", svc.ServiceID, membership.MembershipID)
	}

	if err := uc.initializer.InitService(ctx, svc, membership, plan, opts.Price); err != nil {
		return nil, reused, err
	}

	return svc, reused, nil
}

// SwitchPlan 切换会员套餐
// 有活跃服务时:
//   - 到期切换: 新服务延迟到旧服务的 service_period_end 才生效
//   - 立即切换: 按套餐切换定价规则覆盖价格（与延迟互斥）
//
// 没有活跃服务不是错误，按普通开通处理。本操作不碰旧服务和活跃
// 指针，交接由延迟生效处理流程完成
func (uc *MembershipUsecase) SwitchPlan(ctx context.Context, membershipID uint64, planID string, opts SwitchPlanOptions) (*Service, error) {
	uc.log.Infof("SwitchPlan: membershipID=%d, planID=%s, atTermEnd=%v", membershipID, planID, opts.AtTermEnd)

	if planID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanRequired)
	}

	membership, err := uc.membershipRepo.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeMembershipNotFound)
	}

	plan, err := uc.planRepo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodePlanNotFound)
	}

	var createOpts CreateServiceOptions

	if membership.ActiveServiceID != 0 {
		oldService, err := uc.serviceRepo.GetService(ctx, membership.ActiveServiceID)
		if err != nil {
			return nil, err
		}
		if oldService != nil {
			if opts.AtTermEnd {
				// 旧服务走完当前付费区间后新服务才接管
				createOpts.Delay = oldService.ServicePeriodEnd
			} else {
				// 升降级立即生效，按切换定价规则计价
				price := plan.SwitchPrice(oldService, uc.clock.Now())
				createOpts.Price = &price
			}
		}
	}

	svc, _, err := uc.createForMembership(ctx, membership, plan, createOpts)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

// SwitchPlanNow 立即切换套餐
func (uc *MembershipUsecase) SwitchPlanNow(ctx context.Context, membershipID uint64, planID string) (*Service, error) {
	return uc.SwitchPlan(ctx, membershipID, planID, SwitchPlanOptions{AtTermEnd: false})
}

// GetMembership 获取会员信息
func (uc *MembershipUsecase) GetMembership(ctx context.Context, membershipID uint64) (*Membership, error) {
	return uc.membershipRepo.GetMembership(ctx, membershipID)
}

// GetMembershipByUID 按用户ID获取会员信息
func (uc *MembershipUsecase) GetMembershipByUID(ctx context.Context, uid string) (*Membership, error) {
	return uc.membershipRepo.GetMembershipByUID(ctx, uid)
}
