package biz

import (
	"context"

	"xinyuan_tech/membership-service/internal/constants"
	"xinyuan_tech/membership-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
)

// CancelServiceOptions 取消服务参数
type CancelServiceOptions struct {
	// AtTermEnd 是否在当前付费周期结束后才生效
	AtTermEnd bool
}

// CancelService 取消服务
// 活跃服务默认在当前周期结束时取消（预定取消），此前可随时恢复；
// 立即取消或服务不再活跃时直接进入 cancelled 状态
func (uc *MembershipUsecase) CancelService(ctx context.Context, serviceID uint64, opts CancelServiceOptions) error {
	uc.log.Infof("CancelService: serviceID=%d, atTermEnd=%v", serviceID, opts.AtTermEnd)

	svc, err := uc.serviceRepo.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeServiceNotFound)
	}

	if svc.StatusCode == constants.StatusCancelled || svc.StatusCode == constants.StatusExpired {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeCannotCancelStatus)
	}

	now := uc.clock.Now()

	if opts.AtTermEnd && svc.IsActive() && svc.CurrentPeriodEnd != nil {
		svc.DelayCancelledAt = svc.CurrentPeriodEnd
		svc.UpdatedAt = now
		if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
			return err
		}

		if err := uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
			ServiceID:  svc.ServiceID,
			StatusCode: svc.StatusCode,
			Action:     constants.ActionCancelScheduled,
			Comment:    "cancellation scheduled at period end",
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		uc.log.Infof("Service %d scheduled for cancellation at %s", svc.ServiceID, svc.DelayCancelledAt.Format("2006-01-02 15:04:05"))
		return nil
	}

	svc.StatusCode = constants.StatusCancelled
	svc.StatusUpdatedAt = now
	svc.CancelledAt = &now
	svc.ExpiredAt = &now
	svc.DelayCancelledAt = nil
	svc.UpdatedAt = now
	if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
		return err
	}

	if err := uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
		ServiceID:  svc.ServiceID,
		StatusCode: svc.StatusCode,
		Action:     constants.ActionCancelled,
		CreatedAt:  now,
	}); err != nil {
		return err
	}

	uc.log.Infof("Service %d cancelled immediately", svc.ServiceID)
	return nil
}

// ResumeService 恢复一个已预定取消的服务
func (uc *MembershipUsecase) ResumeService(ctx context.Context, serviceID uint64) error {
	uc.log.Infof("ResumeService: serviceID=%d", serviceID)

	svc, err := uc.serviceRepo.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeServiceNotFound)
	}

	// 只有"已预定取消但仍然可用"的服务才能恢复
	if !svc.IsDelayCancelled() {
		return pkgErrors.NewBizErrorWithLang(ctx, errors.ErrCodeCannotResumeStatus)
	}

	now := uc.clock.Now()
	svc.DelayCancelledAt = nil
	svc.UpdatedAt = now
	if err := uc.serviceRepo.SaveService(ctx, svc); err != nil {
		return err
	}

	if err := uc.statusLogRepo.AddStatusLog(ctx, &StatusLog{
		ServiceID:  svc.ServiceID,
		StatusCode: svc.StatusCode,
		Action:     constants.ActionResumed,
		CreatedAt:  now,
	}); err != nil {
		return err
	}

	uc.log.Infof("Service %d resumed", svc.ServiceID)
	return nil
}
