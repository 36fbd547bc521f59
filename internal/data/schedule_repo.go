package data

import (
	"context"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
)

// scheduleAdjustmentRepo 调价记录仓库实现
type scheduleAdjustmentRepo struct {
	data *Data
	log  *log.Helper
}

// NewScheduleAdjustmentRepo 创建调价记录仓库
func NewScheduleAdjustmentRepo(data *Data, logger log.Logger) biz.ScheduleAdjustmentRepo {
	return &scheduleAdjustmentRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// ListAdjustments 获取某会员从 fromPeriod 起的所有调价记录
func (r *scheduleAdjustmentRepo) ListAdjustments(ctx context.Context, membershipID uint64, fromPeriod int) ([]*biz.ScheduleAdjustment, error) {
	var models []model.ScheduleAdjustment
	err := r.data.session(ctx).
		Where("membership_id = ? AND billing_period >= ?", membershipID, fromPeriod).
		Order("billing_period").
		Find(&models).Error
	if err != nil {
		r.log.Errorf("Failed to list schedule adjustments for membership %d: %v", membershipID, err)
		return nil, err
	}

	adjustments := make([]*biz.ScheduleAdjustment, len(models))
	for i, m := range models {
		adjustments[i] = &biz.ScheduleAdjustment{
			ScheduleAdjustmentID: m.ScheduleAdjustmentID,
			MembershipID:         m.MembershipID,
			BillingPeriod:        m.BillingPeriod,
			Price:                m.Price,
			Comment:              m.Comment,
			CreatedAt:            m.CreatedAt,
		}
	}
	return adjustments, nil
}
