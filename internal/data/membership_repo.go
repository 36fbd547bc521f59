package data

import (
	"context"
	"errors"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// membershipRepo 会员仓库实现
type membershipRepo struct {
	data *Data
	log  *log.Helper
}

// NewMembershipRepo 创建会员仓库
func NewMembershipRepo(data *Data, logger log.Logger) biz.MembershipRepo {
	return &membershipRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetMembership 根据ID获取会员
func (r *membershipRepo) GetMembership(ctx context.Context, id uint64) (*biz.Membership, error) {
	var m model.Membership
	err := r.data.session(ctx).Where("membership_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get membership %d: %v", id, err)
		return nil, err
	}
	return toBizMembership(&m), nil
}

// GetMembershipByUID 根据用户ID获取会员
func (r *membershipRepo) GetMembershipByUID(ctx context.Context, uid string) (*biz.Membership, error) {
	var m model.Membership
	err := r.data.session(ctx).Where("uid = ?", uid).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get membership by uid %s: %v", uid, err)
		return nil, err
	}
	return toBizMembership(&m), nil
}

// SaveMembership 保存会员
func (r *membershipRepo) SaveMembership(ctx context.Context, m *biz.Membership) error {
	record := &model.Membership{
		MembershipID:     m.MembershipID,
		UID:              m.UID,
		IsTrialUsed:      m.IsTrialUsed,
		TrialPeriodStart: m.TrialPeriodStart,
		TrialPeriodEnd:   m.TrialPeriodEnd,
		ActiveServiceID:  m.ActiveServiceID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if err := r.data.session(ctx).Save(record).Error; err != nil {
		r.log.Errorf("Failed to save membership %d: %v", m.MembershipID, err)
		return err
	}
	m.MembershipID = record.MembershipID
	return nil
}

func toBizMembership(m *model.Membership) *biz.Membership {
	return &biz.Membership{
		MembershipID:     m.MembershipID,
		UID:              m.UID,
		IsTrialUsed:      m.IsTrialUsed,
		TrialPeriodStart: m.TrialPeriodStart,
		TrialPeriodEnd:   m.TrialPeriodEnd,
		ActiveServiceID:  m.ActiveServiceID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
