package data

import (
	"context"
	"errors"
	"time"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/constants"
	"xinyuan_tech/membership-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// serviceRepo 服务仓库实现
type serviceRepo struct {
	data *Data
	log  *log.Helper
}

// NewServiceRepo 创建服务仓库
func NewServiceRepo(data *Data, logger log.Logger) biz.ServiceRepo {
	return &serviceRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetService 根据ID获取服务
func (r *serviceRepo) GetService(ctx context.Context, id uint64) (*biz.Service, error) {
	var m model.Service
	err := r.data.session(ctx).Where("service_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get service %d: %v", id, err)
		return nil, err
	}
	return toBizService(&m), nil
}

// SaveService 保存服务
func (r *serviceRepo) SaveService(ctx context.Context, svc *biz.Service) error {
	record := toModelService(svc)
	if err := r.data.session(ctx).Save(record).Error; err != nil {
		r.log.Errorf("Failed to save service %d: %v", svc.ServiceID, err)
		return err
	}
	svc.ServiceID = record.ServiceID
	return nil
}

// UpsertThrowaway 按 (membership_id, uid, is_throwaway=1) 创建或复用占位服务
// 会员在首个服务敲定前反复发起初始化时，复用同一条占位记录而不是堆积新行
func (r *serviceRepo) UpsertThrowaway(ctx context.Context, membershipID uint64, uid, planID string, delay *time.Time, now time.Time) (*biz.Service, bool, error) {
	db := r.data.session(ctx)

	var m model.Service
	err := db.Where("membership_id = ? AND uid = ? AND is_throwaway = ?", membershipID, uid, true).
		First(&m).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Errorf("Failed to find throwaway service for membership %d: %v", membershipID, err)
		return nil, false, err
	}

	if err == nil {
		m.PlanID = planID
		m.DelayActivatedAt = delay
		if err := db.Save(&m).Error; err != nil {
			r.log.Errorf("Failed to update throwaway service %d: %v", m.ServiceID, err)
			return nil, false, err
		}
		return toBizService(&m), true, nil
	}

	m = model.Service{
		MembershipID:     membershipID,
		UID:              uid,
		PlanID:           planID,
		StatusCode:       constants.StatusNew,
		StatusUpdatedAt:  now,
		DelayActivatedAt: delay,
		IsThrowaway:      true,
	}
	if err := db.Create(&m).Error; err != nil {
		r.log.Errorf("Failed to create service for membership %d: %v", membershipID, err)
		return nil, false, err
	}
	return toBizService(&m), false, nil
}

// ListDelayActivatable 获取已到生效时间的延迟服务
func (r *serviceRepo) ListDelayActivatable(ctx context.Context, now time.Time) ([]*biz.Service, error) {
	var models []model.Service
	err := r.data.session(ctx).
		Where("status_code = ? AND delay_activated_at IS NOT NULL AND delay_activated_at <= ?", constants.StatusNew, now).
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list delay-activatable services: %v", err)
		return nil, err
	}
	return toBizServices(models), nil
}

// ListPeriodEnded 获取当前计费周期已结束的可用服务
func (r *serviceRepo) ListPeriodEnded(ctx context.Context, now time.Time) ([]*biz.Service, error) {
	var models []model.Service
	err := r.data.session(ctx).
		Where("status_code IN ? AND current_period_end IS NOT NULL AND current_period_end <= ?",
			[]string{constants.StatusTrial, constants.StatusActive}, now).
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list period-ended services: %v", err)
		return nil, err
	}
	return toBizServices(models), nil
}

// ListGraceEnded 获取宽限期已用尽的服务
func (r *serviceRepo) ListGraceEnded(ctx context.Context, now time.Time) ([]*biz.Service, error) {
	var models []model.Service
	err := r.data.session(ctx).
		Where("status_code = ? AND DATE_ADD(status_updated_at, INTERVAL grace_days DAY) <= ?", constants.StatusGrace, now).
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list grace-ended services: %v", err)
		return nil, err
	}
	return toBizServices(models), nil
}

// ListServicePeriodEnded 获取整个开通区间已结束的可用服务
func (r *serviceRepo) ListServicePeriodEnded(ctx context.Context, now time.Time) ([]*biz.Service, error) {
	var models []model.Service
	err := r.data.session(ctx).
		Where("status_code IN ? AND service_period_end IS NOT NULL AND service_period_end <= ?",
			[]string{constants.StatusTrial, constants.StatusActive, constants.StatusGrace}, now).
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list service-period-ended services: %v", err)
		return nil, err
	}
	return toBizServices(models), nil
}

func toBizServices(models []model.Service) []*biz.Service {
	services := make([]*biz.Service, len(models))
	for i := range models {
		services[i] = toBizService(&models[i])
	}
	return services
}

func toBizService(m *model.Service) *biz.Service {
	return &biz.Service{
		ServiceID:          m.ServiceID,
		MembershipID:       m.MembershipID,
		UID:                m.UID,
		PlanID:             m.PlanID,
		StatusCode:         m.StatusCode,
		StatusUpdatedAt:    m.StatusUpdatedAt,
		Price:              m.Price,
		ServicePeriodStart: m.ServicePeriodStart,
		ServicePeriodEnd:   m.ServicePeriodEnd,
		CurrentPeriodStart: m.CurrentPeriodStart,
		CurrentPeriodEnd:   m.CurrentPeriodEnd,
		DelayActivatedAt:   m.DelayActivatedAt,
		DelayCancelledAt:   m.DelayCancelledAt,
		CancelledAt:        m.CancelledAt,
		ActivatedAt:        m.ActivatedAt,
		ExpiredAt:          m.ExpiredAt,
		CountRenewal:       m.CountRenewal,
		GraceDays:          m.GraceDays,
		IsThrowaway:        m.IsThrowaway,
		FirstInvoiceID:     m.FirstInvoiceID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toModelService(svc *biz.Service) *model.Service {
	return &model.Service{
		ServiceID:          svc.ServiceID,
		MembershipID:       svc.MembershipID,
		UID:                svc.UID,
		PlanID:             svc.PlanID,
		StatusCode:         svc.StatusCode,
		StatusUpdatedAt:    svc.StatusUpdatedAt,
		Price:              svc.Price,
		ServicePeriodStart: svc.ServicePeriodStart,
		ServicePeriodEnd:   svc.ServicePeriodEnd,
		CurrentPeriodStart: svc.CurrentPeriodStart,
		CurrentPeriodEnd:   svc.CurrentPeriodEnd,
		DelayActivatedAt:   svc.DelayActivatedAt,
		DelayCancelledAt:   svc.DelayCancelledAt,
		CancelledAt:        svc.CancelledAt,
		ActivatedAt:        svc.ActivatedAt,
		ExpiredAt:          svc.ExpiredAt,
		CountRenewal:       svc.CountRenewal,
		GraceDays:          svc.GraceDays,
		IsThrowaway:        svc.IsThrowaway,
		FirstInvoiceID:     svc.FirstInvoiceID,
		CreatedAt:          svc.CreatedAt,
		UpdatedAt:          svc.UpdatedAt,
	}
}
