package data

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/constants"
	"xinyuan_tech/membership-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

const (
	planCacheKeyPrefix = "membership_service:plan:"
	// nullCacheValue 空值占位，防止缓存穿透
	nullCacheValue = "null"
)

// planRepo 套餐仓库实现，读路径带 redis 缓存
// 套餐是低频变更的计费模板，按 ID 缓存单条记录
type planRepo struct {
	data *Data
	log  *log.Helper
}

// NewPlanRepo 创建套餐仓库
func NewPlanRepo(data *Data, logger log.Logger) biz.PlanRepo {
	return &planRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// ListPlans 获取所有套餐列表
func (r *planRepo) ListPlans(ctx context.Context) ([]*biz.Plan, error) {
	var models []model.Plan
	if err := r.data.session(ctx).Order("plan_id").Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list plans: %v", err)
		return nil, err
	}

	plans := make([]*biz.Plan, len(models))
	for i := range models {
		plans[i] = toBizPlan(&models[i])
	}
	return plans, nil
}

// GetPlan 根据ID获取套餐，优先走缓存
func (r *planRepo) GetPlan(ctx context.Context, id string) (*biz.Plan, error) {
	cacheKey := planCacheKeyPrefix + id

	cached, err := r.data.rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		if cached == nullCacheValue {
			return nil, nil
		}
		var plan biz.Plan
		if err := json.Unmarshal([]byte(cached), &plan); err == nil {
			return &plan, nil
		}
		// 缓存内容损坏，回落到数据库
		r.log.Warnf("Failed to unmarshal cached plan %s, falling back to db", id)
	}

	var m model.Plan
	err = r.data.session(ctx).Where("plan_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 缓存空值，防止缓存穿透
		if err := r.data.rdb.Set(ctx, cacheKey, nullCacheValue, constants.NullCacheExpiration).Err(); err != nil {
			r.log.Warnf("Failed to cache null plan %s: %v", id, err)
		}
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get plan %s: %v", id, err)
		return nil, err
	}

	plan := toBizPlan(&m)
	if data, err := json.Marshal(plan); err == nil {
		// 过期时间加随机抖动，防止缓存雪崩
		expiration := constants.DefaultCacheExpiration + time.Duration(rand.Intn(constants.CacheRandomMaxSeconds))*time.Second
		if err := r.data.rdb.Set(ctx, cacheKey, data, expiration).Err(); err != nil {
			r.log.Warnf("Failed to cache plan %s: %v", id, err)
		}
	}
	return plan, nil
}

func toBizPlan(m *model.Plan) *biz.Plan {
	return &biz.Plan{
		PlanID:        m.PlanID,
		Name:          m.Name,
		Description:   m.Description,
		PlanType:      m.PlanType,
		DayInterval:   m.DayInterval,
		Price:         m.Price,
		Currency:      m.Currency,
		TrialDays:     m.TrialDays,
		MembershipFee: m.MembershipFee,
		RenewalPeriod: m.RenewalPeriod,
		GraceDays:     m.GraceDays,
		SwitchMode:    m.SwitchMode,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
