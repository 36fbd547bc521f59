package biz

import (
	"context"

	"xinyuan_tech/membership-service/internal/conf"
	"xinyuan_tech/membership-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
)

// ServiceInitializer 服务初始化协作方接口
// 负责把一条刚 upsert 出来的服务记录建立成初始计费状态:
// 周期区间、价格、初始状态和首张账单
type ServiceInitializer interface {
	InitService(ctx context.Context, svc *Service, membership *Membership, plan *Plan, price *decimal.Decimal) error
}

type serviceInitializer struct {
	serviceRepo    ServiceRepo
	invoiceManager InvoiceManager
	statusLogRepo  StatusLogRepo
	clock          Clock
	config         *conf.Bootstrap
	log            *log.Helper
}

// NewServiceInitializer 创建默认服务初始化器
func NewServiceInitializer(
	serviceRepo ServiceRepo,
	invoiceManager InvoiceManager,
	statusLogRepo StatusLogRepo,
	clock Clock,
	config *conf.Bootstrap,
	logger log.Logger,
) ServiceInitializer {
	return &serviceInitializer{
		serviceRepo:    serviceRepo,
		invoiceManager: invoiceManager,
		statusLogRepo:  statusLogRepo,
		clock:          clock,
		config:         config,
		log:            log.NewHelper(logger),
	}
}

// InitService 建立服务的初始计费状态
func (si *serviceInitializer) InitService(ctx context.Context, svc *Service, membership *Membership, plan *Plan, price *decimal.Decimal) error {
	now := si.clock.Now()

	svc.Price = plan.Price
	if price != nil {
		svc.Price = *price
	}

	svc.ServicePeriodStart = &now
	if end, ok := plan.PeriodEndDate(now); ok {
		svc.CurrentPeriodStart = &now
		svc.CurrentPeriodEnd = &end
		svc.ServicePeriodEnd = &end
	} else {
		// lifetime 套餐只有起点，没有周期终点
		svc.CurrentPeriodStart = &now
		svc.CurrentPeriodEnd = nil
		svc.ServicePeriodEnd = nil
	}

	svc.GraceDays = plan.GraceDays
	if svc.GraceDays == 0 && si.config != nil && si.config.Subscription != nil {
		svc.GraceDays = si.config.Subscription.DefaultGraceDays
	}

	switch {
	case svc.DelayActivatedAt != nil:
		// 延迟生效的服务保持占位状态，等待激活流程接管
		svc.StatusCode = constants.StatusNew
		svc.IsThrowaway = true
	case membership.IsTrialActive(now):
		svc.StatusCode = constants.StatusTrial
		svc.IsThrowaway = false
	default:
		svc.StatusCode = constants.StatusActive
		svc.ActivatedAt = &now
		svc.IsThrowaway = false
	}
	svc.StatusUpdatedAt = now

	invoice, err := si.invoiceManager.CreateInvoice(ctx, membership, svc, "Membership plan: "+plan.Name, svc.Price)
	if err != nil {
		return err
	}
	svc.FirstInvoiceID = invoice.InvoiceID

	if err := si.serviceRepo.SaveService(ctx, svc); err != nil {
		return err
	}

	if err := si.statusLogRepo.AddStatusLog(ctx, &StatusLog{
		ServiceID:  svc.ServiceID,
		StatusCode: svc.StatusCode,
		Action:     constants.ActionCreated,
		CreatedAt:  now,
	}); err != nil {
		return err
	}

	return nil
}
