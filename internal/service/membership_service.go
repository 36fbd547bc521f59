package service

import (
	"strconv"
	"time"

	"xinyuan_tech/membership-service/internal/auth"
	"xinyuan_tech/membership-service/internal/biz"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// MembershipService 会员生命周期 HTTP 服务
type MembershipService struct {
	uc  *biz.MembershipUsecase
	log *log.Helper
}

// NewMembershipService 创建会员服务
func NewMembershipService(uc *biz.MembershipUsecase, logger log.Logger) *MembershipService {
	return &MembershipService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// RegisterRoutes 注册业务路由
func (s *MembershipService) RegisterRoutes(srv *http.Server) {
	r := srv.Route("/v1")

	r.GET("/plans", s.ListPlans)
	r.GET("/plans/{plan_id}", s.GetPlan)

	r.GET("/me/membership", s.GetMyMembership)

	r.GET("/memberships/{membership_id}", s.GetMembership)
	r.POST("/memberships/{membership_id}/init", s.InitMembership)
	r.POST("/memberships/{membership_id}/switch-plan", s.SwitchPlan)

	r.GET("/services/{service_id}", s.GetService)
	r.GET("/services/{service_id}/schedule", s.GetSchedule)
	r.POST("/services/{service_id}/cancel", s.CancelService)
	r.POST("/services/{service_id}/resume", s.ResumeService)
}

type planReply struct {
	PlanID        string `json:"plan_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PlanType      string `json:"plan_type"`
	DayInterval   int    `json:"day_interval"`
	Price         string `json:"price"`
	Currency      string `json:"currency"`
	TrialDays     int    `json:"trial_days"`
	MembershipFee string `json:"membership_fee"`
	RenewalPeriod int    `json:"renewal_period"`
	GraceDays     int    `json:"grace_days"`
	SwitchMode    string `json:"switch_mode"`
}

type membershipReply struct {
	MembershipID     uint64     `json:"membership_id"`
	UID              string     `json:"uid"`
	IsTrialUsed      bool       `json:"is_trial_used"`
	TrialPeriodStart *time.Time `json:"trial_period_start,omitempty"`
	TrialPeriodEnd   *time.Time `json:"trial_period_end,omitempty"`
	ActiveServiceID  uint64     `json:"active_service_id"`
}

type serviceReply struct {
	ServiceID          uint64     `json:"service_id"`
	MembershipID       uint64     `json:"membership_id"`
	UID                string     `json:"uid"`
	PlanID             string     `json:"plan_id"`
	StatusCode         string     `json:"status_code"`
	Price              string     `json:"price"`
	ServicePeriodStart *time.Time `json:"service_period_start,omitempty"`
	ServicePeriodEnd   *time.Time `json:"service_period_end,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	DelayActivatedAt   *time.Time `json:"delay_activated_at,omitempty"`
	DelayCancelledAt   *time.Time `json:"delay_cancelled_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	ActivatedAt        *time.Time `json:"activated_at,omitempty"`
	ExpiredAt          *time.Time `json:"expired_at,omitempty"`
	CountRenewal       int        `json:"count_renewal"`
	GraceDays          int        `json:"grace_days"`
}

type scheduleEntryReply struct {
	Period      int       `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Total       string    `json:"total"`
	Comment     string    `json:"comment,omitempty"`
	Adjusted    bool      `json:"adjusted"`
}

// ListPlans 获取所有套餐列表
func (s *MembershipService) ListPlans(ctx http.Context) error {
	plans, err := s.uc.ListPlans(ctx)
	if err != nil {
		return err
	}

	replies := make([]*planReply, len(plans))
	for i, p := range plans {
		replies[i] = toPlanReply(p)
	}
	return ctx.Result(200, map[string]interface{}{"plans": replies})
}

// GetPlan 获取套餐详情
func (s *MembershipService) GetPlan(ctx http.Context) error {
	planID := ctx.Vars().Get("plan_id")

	plan, err := s.uc.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return kerrors.NotFound("PLAN_NOT_FOUND", "plan not found")
	}
	return ctx.Result(200, toPlanReply(plan))
}

// GetMyMembership 获取当前用户的会员详情
func (s *MembershipService) GetMyMembership(ctx http.Context) error {
	uid, err := auth.RequireUID(ctx)
	if err != nil {
		return err
	}

	membership, err := s.uc.GetMembershipByUID(ctx, uid)
	if err != nil {
		return err
	}
	if membership == nil {
		return kerrors.NotFound("MEMBERSHIP_NOT_FOUND", "membership not found")
	}

	return ctx.Result(200, &membershipReply{
		MembershipID:     membership.MembershipID,
		UID:              membership.UID,
		IsTrialUsed:      membership.IsTrialUsed,
		TrialPeriodStart: membership.TrialPeriodStart,
		TrialPeriodEnd:   membership.TrialPeriodEnd,
		ActiveServiceID:  membership.ActiveServiceID,
	})
}

// GetMembership 获取会员详情
func (s *MembershipService) GetMembership(ctx http.Context) error {
	membershipID, err := pathID(ctx, "membership_id")
	if err != nil {
		return err
	}

	membership, err := s.uc.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership == nil {
		return kerrors.NotFound("MEMBERSHIP_NOT_FOUND", "membership not found")
	}
	if err := auth.CheckOwnership(ctx, membership.UID); err != nil {
		return err
	}

	return ctx.Result(200, &membershipReply{
		MembershipID:     membership.MembershipID,
		UID:              membership.UID,
		IsTrialUsed:      membership.IsTrialUsed,
		TrialPeriodStart: membership.TrialPeriodStart,
		TrialPeriodEnd:   membership.TrialPeriodEnd,
		ActiveServiceID:  membership.ActiveServiceID,
	})
}

type initMembershipRequest struct {
	PlanID string `json:"plan_id"`
	Guest  bool   `json:"guest"`
}

// InitMembership 把会员初始化到指定套餐上
func (s *MembershipService) InitMembership(ctx http.Context) error {
	membershipID, err := pathID(ctx, "membership_id")
	if err != nil {
		return err
	}

	var req initMembershipRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	if err := s.checkMembershipOwnership(ctx, membershipID); err != nil {
		return err
	}

	svc, err := s.uc.InitMembership(ctx, membershipID, req.PlanID, biz.InitMembershipOptions{Guest: req.Guest})
	if err != nil {
		return err
	}
	return ctx.Result(200, toServiceReply(svc))
}

type switchPlanRequest struct {
	PlanID    string `json:"plan_id"`
	AtTermEnd *bool  `json:"at_term_end"`
}

// SwitchPlan 切换会员套餐
// 默认到期切换；immediate 切换会立即激活新服务并让旧服务过期
func (s *MembershipService) SwitchPlan(ctx http.Context) error {
	membershipID, err := pathID(ctx, "membership_id")
	if err != nil {
		return err
	}

	var req switchPlanRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	if err := s.checkMembershipOwnership(ctx, membershipID); err != nil {
		return err
	}

	opts := biz.DefaultSwitchPlanOptions()
	if req.AtTermEnd != nil {
		opts.AtTermEnd = *req.AtTermEnd
	}

	svc, err := s.uc.SwitchPlan(ctx, membershipID, req.PlanID, opts)
	if err != nil {
		return err
	}

	if !opts.AtTermEnd {
		if err := s.uc.ActivateService(ctx, svc); err != nil {
			return err
		}
	}
	return ctx.Result(200, toServiceReply(svc))
}

// GetService 获取服务详情
func (s *MembershipService) GetService(ctx http.Context) error {
	svc, err := s.loadOwnedService(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, toServiceReply(svc))
}

// GetSchedule 获取服务的未来计费计划表
func (s *MembershipService) GetSchedule(ctx http.Context) error {
	svc, err := s.loadOwnedService(ctx)
	if err != nil {
		return err
	}

	schedule, err := s.uc.GetSchedule(ctx, svc.ServiceID)
	if err != nil {
		return err
	}

	entries := make([]*scheduleEntryReply, len(schedule))
	for i, e := range schedule {
		entries[i] = &scheduleEntryReply{
			Period:      e.Period,
			PeriodStart: e.PeriodStart,
			PeriodEnd:   e.PeriodEnd,
			Total:       e.Total.StringFixed(2),
			Comment:     e.Comment,
			Adjusted:    e.Adjusted,
		}
	}
	return ctx.Result(200, map[string]interface{}{"schedule": entries})
}

type cancelServiceRequest struct {
	AtTermEnd *bool `json:"at_term_end"`
}

// CancelService 取消服务，默认到期取消
func (s *MembershipService) CancelService(ctx http.Context) error {
	svc, err := s.loadOwnedService(ctx)
	if err != nil {
		return err
	}

	var req cancelServiceRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	atTermEnd := true
	if req.AtTermEnd != nil {
		atTermEnd = *req.AtTermEnd
	}

	if err := s.uc.CancelService(ctx, svc.ServiceID, biz.CancelServiceOptions{AtTermEnd: atTermEnd}); err != nil {
		return err
	}
	return ctx.Result(200, map[string]interface{}{"success": true})
}

// ResumeService 撤销预定取消
func (s *MembershipService) ResumeService(ctx http.Context) error {
	svc, err := s.loadOwnedService(ctx)
	if err != nil {
		return err
	}

	if err := s.uc.ResumeService(ctx, svc.ServiceID); err != nil {
		return err
	}
	return ctx.Result(200, map[string]interface{}{"success": true})
}

// loadOwnedService 加载路径中的服务并校验归属
func (s *MembershipService) loadOwnedService(ctx http.Context) (*biz.Service, error) {
	serviceID, err := pathID(ctx, "service_id")
	if err != nil {
		return nil, err
	}

	svc, err := s.uc.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, kerrors.NotFound("SERVICE_NOT_FOUND", "service not found")
	}
	if err := auth.CheckOwnership(ctx, svc.UID); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *MembershipService) checkMembershipOwnership(ctx http.Context, membershipID uint64) error {
	membership, err := s.uc.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	if membership == nil {
		return kerrors.NotFound("MEMBERSHIP_NOT_FOUND", "membership not found")
	}
	return auth.CheckOwnership(ctx, membership.UID)
}

func pathID(ctx http.Context, name string) (uint64, error) {
	raw := ctx.Vars().Get(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, kerrors.BadRequest("INVALID_ARGUMENT", name+" must be a positive integer")
	}
	return id, nil
}

func toPlanReply(p *biz.Plan) *planReply {
	return &planReply{
		PlanID:        p.PlanID,
		Name:          p.Name,
		Description:   p.Description,
		PlanType:      p.PlanType,
		DayInterval:   p.DayInterval,
		Price:         p.Price.StringFixed(2),
		Currency:      p.Currency,
		TrialDays:     p.TrialDays,
		MembershipFee: p.MembershipFee.StringFixed(2),
		RenewalPeriod: p.RenewalPeriod,
		GraceDays:     p.GraceDays,
		SwitchMode:    p.SwitchMode,
	}
}

func toServiceReply(svc *biz.Service) *serviceReply {
	return &serviceReply{
		ServiceID:          svc.ServiceID,
		MembershipID:       svc.MembershipID,
		UID:                svc.UID,
		PlanID:             svc.PlanID,
		StatusCode:         svc.StatusCode,
		Price:              svc.Price.StringFixed(2),
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
	}
}
