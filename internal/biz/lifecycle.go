package biz

import (
	"context"
	"fmt"
	"time"

	"xinyuan_tech/membership-service/internal/constants"
)

// LifecycleResult 单个服务的批处理结果
type LifecycleResult struct {
	ServiceID    uint64
	MembershipID uint64
	Action       string
	Success      bool
	ErrorMessage string
}

// LifecycleMutex 单次生命周期推进持有的互斥锁
type LifecycleMutex interface {
	LockContext(ctx context.Context) error
	UnlockContext(ctx context.Context) (bool, error)
}

// MembershipLocker 按名称创建会员粒度的互斥锁，由 data 层基于 redis 实现
type MembershipLocker interface {
	NewMutex(name string) LifecycleMutex
}

// ActivateService 让服务正式生效并完成活跃指针交接
// 到期切换（延迟生效）和立即切换共用这一条激活路径:
// 旧活跃服务标记过期并写状态日志，会员的活跃服务指向新服务
func (uc *MembershipUsecase) ActivateService(ctx context.Context, svc *Service) error {
	now := uc.clock.Now()

	membership, err := uc.membershipRepo.GetMembership(ctx, svc.MembershipID)
	if err != nil {
		return err
	}

	// 旧服务让位
	if membership != nil && membership.ActiveServiceID != 0 && membership.ActiveServiceID != svc.ServiceID {
		old, err := uc.serviceRepo.GetService(ctx, membership.ActiveServiceID)
		if err != nil {
			return err
		}
		if old != nil && old.StatusCode != constants.StatusExpired && old.StatusCode != constants.StatusCancelled {
			old.StatusCode = constants.StatusExpired
			old.StatusUpdatedAt = now
			old.ExpiredAt = &now
			old.UpdatedAt = now
			if err := uc.serviceRepo.SaveService(ctx, old); err != nil {
				return err
			}
			if err := uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
				ServiceID:  old.ServiceID,
				StatusCode: old.StatusCode,
				Action:     constants.ActionExpired,
				Comment:    fmt.Sprintf("superseded by service %d", svc.ServiceID),
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}
	}

	// 新服务以激活时间为锚点重建周期区间
	plan, err := uc.planRepo.GetPlan(ctx, svc.PlanID)
	if err != nil {
		return err
	}
	svc.ServicePeriodStart = &now
	svc.CurrentPeriodStart = &now
	if plan != nil {
		if end, ok := plan.PeriodEndDate(now); ok {
			svc.CurrentPeriodEnd = &end
			svc.ServicePeriodEnd = &end
		} else {
			svc.CurrentPeriodEnd = nil
			svc.ServicePeriodEnd = nil
		}
	}

	svc.StatusCode = constants.StatusActive
	svc.StatusUpdatedAt = now
	svc.ActivatedAt = &now
	svc.DelayActivatedAt = nil
	svc.IsThrowaway = false
	svc.UpdatedAt = now
	if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
		return err
	}

	if err := uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
		ServiceID:  svc.ServiceID,
		StatusCode: svc.StatusCode,
		Action:     constants.ActionActivated,
		CreatedAt:  now,
	}); err != nil {
		return err
	}

	if membership != nil {
		membership.ActiveServiceID = svc.ServiceID
		membership.UpdatedAt = now
		if err := uc.membershipRepo.SaveMembership(ctx, membership); err != nil {
			return err
		}
	}

	return nil
}

// ProcessDelayedActivations 处理已到生效时间的延迟服务
func (uc *MembershipUsecase) ProcessDelayedActivations(ctx context.Context) (int, []*LifecycleResult, error) {
	now := uc.clock.Now()
	uc.log.Infof("Starting delayed activation process")

	services, err := uc.serviceRepo.ListDelayActivatable(ctx, now)
	if err != nil {
		uc.log.Errorf("Failed to list delay-activatable services: %v", err)
		return 0, nil, err
	}

	results := make([]*LifecycleResult, 0, len(services))
	activated := 0
	for _, svc := range services {
		result := uc.withMembershipLock(ctx, svc, constants.ActionActivated, func(fresh *Service) error {
			// 加锁后重读，可能已被并发处理
			if fresh.DelayActivatedAt == nil || fresh.DelayActivatedAt.After(now) {
				return nil
			}
			return uc.ActivateService(ctx, fresh)
		})
		if result.Success {
			activated++
		}
		results = append(results, result)
	}

	uc.log.Infof("Delayed activation process completed: total=%d, activated=%d", len(services), activated)
	return activated, results, nil
}

// ProcessRenewals 处理已走完当前计费周期的服务
// 每个服务按顺序判定: 预定取消到期 -> 可续费 -> 进入宽限期 -> 过期
func (uc *MembershipUsecase) ProcessRenewals(ctx context.Context, dryRun bool) (int, int, int, []*LifecycleResult, error) {
	now := uc.clock.Now()
	uc.log.Infof("Starting renewal process (dryRun=%v)", dryRun)

	services, err := uc.serviceRepo.ListPeriodEnded(ctx, now)
	if err != nil {
		uc.log.Errorf("Failed to list period-ended services: %v", err)
		return 0, 0, 0, nil, err
	}

	totalCount := len(services)
	successCount := 0
	failedCount := 0
	results := make([]*LifecycleResult, 0, totalCount)

	for _, svc := range services {
		if dryRun {
			uc.log.Infof("[DRY RUN] Would process period end for service %d (membership %d)", svc.ServiceID, svc.MembershipID)
			results = append(results, &LifecycleResult{
				ServiceID:    svc.ServiceID,
				MembershipID: svc.MembershipID,
				Action:       constants.ActionRenewed,
				Success:      true,
				ErrorMessage: "dry run - not executed",
			})
			continue
		}

		result := uc.withMembershipLock(ctx, svc, constants.ActionRenewed, func(fresh *Service) error {
			// 加锁后重读，周期可能已被并发续过
			if !fresh.HasPeriodEnded(now) {
				return nil
			}
			return uc.processPeriodEnd(ctx, fresh, now)
		})
		if result.Success {
			successCount++
		} else {
			failedCount++
		}
		results = append(results, result)
	}

	uc.log.Infof("Renewal process completed: total=%d, success=%d, failed=%d", totalCount, successCount, failedCount)
	return totalCount, successCount, failedCount, results, nil
}

// processPeriodEnd 对单个已到期服务做状态推进
func (uc *MembershipUsecase) processPeriodEnd(ctx context.Context, svc *Service, now time.Time) error {
	plan, err := uc.planRepo.GetPlan(ctx, svc.PlanID)
	if err != nil {
		return err
	}

	// 预定取消时间已到，硬停
	if svc.DelayCancelledAt != nil && !now.Before(*svc.DelayCancelledAt) {
		svc.StatusCode = constants.StatusCancelled
		svc.StatusUpdatedAt = now
		svc.CancelledAt = &now
		svc.ExpiredAt = &now
		svc.UpdatedAt = now
		if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
			return err
		}
		return uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
			ServiceID:  svc.ServiceID,
			StatusCode: svc.StatusCode,
			Action:     constants.ActionCancelled,
			Comment:    "scheduled cancellation reached",
			CreatedAt:  now,
		})
	}

	if svc.CanRenew(plan) {
		return uc.renewService(ctx, svc, plan, now)
	}

	// 不能续费但带宽限期: 先进入宽限状态，到期再过期
	if svc.HasGracePeriod() && svc.StatusCode != constants.StatusGrace {
		svc.StatusCode = constants.StatusGrace
		svc.StatusUpdatedAt = now
		svc.UpdatedAt = now
		if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
			return err
		}
		return uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
			ServiceID:  svc.ServiceID,
			StatusCode: svc.StatusCode,
			Action:     constants.ActionGraceEntered,
			CreatedAt:  now,
		})
	}

	return uc.expireService(ctx, svc, now)
}

// renewService 把服务推进到下一个计费周期并开出续费账单
func (uc *MembershipUsecase) renewService(ctx context.Context, svc *Service, plan *Plan, now time.Time) error {
	anchor := *svc.CurrentPeriodEnd
	nextEnd, ok := plan.PeriodEndDate(anchor)
	if !ok {
		return uc.expireService(ctx, svc, now)
	}

	period := svc.CountRenewal + 1 // 即将进入的计费周期序号，与计费计划表的序号一致

	// 人工调价优先于套餐价
	total := plan.Price
	adjustments, err := uc.scheduleRepo.ListAdjustments(ctx, svc.MembershipID, period)
	if err != nil {
		return err
	}
	for _, a := range adjustments {
		if a.BillingPeriod == period {
			total = a.Price
			break
		}
	}

	svc.CurrentPeriodStart = &anchor
	svc.CurrentPeriodEnd = &nextEnd
	svc.ServicePeriodEnd = &nextEnd
	svc.CountRenewal++
	svc.StatusCode = constants.StatusActive
	svc.StatusUpdatedAt = now
	svc.UpdatedAt = now
	if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
		return err
	}

	membership, err := uc.membershipRepo.GetMembership(ctx, svc.MembershipID)
	if err != nil {
		return err
	}
	if _, err := uc.invoiceManager.CreateInvoice(ctx, membership, svc,
		fmt.Sprintf("Renewal period %d", period), total); err != nil {
		return err
	}

	return uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
		ServiceID:  svc.ServiceID,
		StatusCode: svc.StatusCode,
		Action:     constants.ActionRenewed,
		Comment:    fmt.Sprintf("renewed into period %d", period),
		CreatedAt:  now,
	})
}

// expireService 把服务置为过期
func (uc *MembershipUsecase) expireService(ctx context.Context, svc *Service, now time.Time) error {
	svc.StatusCode = constants.StatusExpired
	svc.StatusUpdatedAt = now
	svc.ExpiredAt = &now
	svc.UpdatedAt = now
	if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
		return err
	}
	return uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
		ServiceID:  svc.ServiceID,
		StatusCode: svc.StatusCode,
		Action:     constants.ActionExpired,
		CreatedAt:  now,
	})
}

// ProcessExpirations 处理宽限期已结束和整个开通区间已结束的服务
func (uc *MembershipUsecase) ProcessExpirations(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	uc.log.Infof("Starting expiration process")

	graceEnded, err := uc.serviceRepo.ListGraceEnded(ctx, now)
	if err != nil {
		uc.log.Errorf("Failed to list grace-ended services: %v", err)
		return 0, err
	}
	servicePeriodEnded, err := uc.serviceRepo.ListServicePeriodEnded(ctx, now)
	if err != nil {
		uc.log.Errorf("Failed to list service-period-ended services: %v", err)
		return 0, err
	}

	expired := 0
	seen := make(map[uint64]bool)
	for _, svc := range append(graceEnded, servicePeriodEnded...) {
		if seen[svc.ServiceID] {
			continue
		}
		seen[svc.ServiceID] = true

		result := uc.withMembershipLock(ctx, svc, constants.ActionExpired, func(fresh *Service) error {
			if !fresh.IsActive() {
				return nil
			}
			// 宽限中且还能续费的服务留给续费流程
			if fresh.StatusCode == constants.StatusGrace && !fresh.graceEnded(now) {
				return nil
			}
			return uc.expireService(ctx, fresh, now)
		})
		if result.Success {
			expired++
		} else {
			uc.log.Errorf("Failed to expire service %d: %s", svc.ServiceID, result.ErrorMessage)
		}
	}

	uc.log.Infof("Expiration process completed: expired=%d", expired)
	return expired, nil
}

// graceEnded 宽限窗口是否已经走完
func (s *Service) graceEnded(now time.Time) bool {
	if s.StatusCode != constants.StatusGrace {
		return false
	}
	return !s.StatusUpdatedAt.AddDate(0, 0, s.GraceDays).After(now)
}

// withMembershipLock 以会员为粒度加分布式锁后重读服务并执行 fn
// 防止多个 worker 实例对同一个会员并发推进生命周期
func (uc *MembershipUsecase) withMembershipLock(ctx context.Context, svc *Service, action string, fn func(fresh *Service) error) *LifecycleResult {
	result := &LifecycleResult{
		ServiceID:    svc.ServiceID,
		MembershipID: svc.MembershipID,
		Action:       action,
	}

	lockKey := fmt.Sprintf("membership_lifecycle_lock:membership:%d", svc.MembershipID)
	mutex := uc.locker.NewMutex(lockKey)

	if err := mutex.LockContext(ctx); err != nil {
		result.ErrorMessage = "failed to acquire lock or already processing"
		uc.log.Infof("Skipping service %d: lock busy or already processing", svc.ServiceID)
		return result
	}
	defer func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			uc.log.Warnf("Failed to unlock for membership %d: %v", svc.MembershipID, err)
		}
	}()

	fresh, err := uc.serviceRepo.GetService(ctx, svc.ServiceID)
	if err != nil {
		result.ErrorMessage = "failed to re-read service: " + err.Error()
		return result
	}
	if fresh == nil {
		result.ErrorMessage = "service disappeared"
		return result
	}

	if err := fn(fresh); err != nil {
		result.ErrorMessage = err.Error()
		uc.log.Errorf("Failed to process service %d: %v", svc.ServiceID, err)
		return result
	}

	result.Success = true
	return result
}
