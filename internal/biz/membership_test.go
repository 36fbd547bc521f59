package biz

import (
	"context"
	"io"
	"testing"
	"time"

	"xinyuan_tech/membership-service/internal/conf"
	"xinyuan_tech/membership-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockMembershipRepo is a mock implementation of MembershipRepo
type mockMembershipRepo struct {
	mock.Mock
}

func (m *mockMembershipRepo) GetMembership(ctx context.Context, id uint64) (*Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *mockMembershipRepo) GetMembershipByUID(ctx context.Context, uid string) (*Membership, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *mockMembershipRepo) SaveMembership(ctx context.Context, membership *Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

// mockServiceRepo is a mock implementation of ServiceRepo
type mockServiceRepo struct {
	mock.Mock
}

func (m *mockServiceRepo) GetService(ctx context.Context, id uint64) (*Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Service), args.Error(1)
}

func (m *mockServiceRepo) SaveService(ctx context.Context, svc *Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *mockServiceRepo) UpsertThrowaway(ctx context.Context, membershipID uint64, uid, planID string, delay *time.Time, now time.Time) (*Service, bool, error) {
	args := m.Called(ctx, membershipID, uid, planID, delay, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Service), args.Bool(1), args.Error(2)
}

func (m *mockServiceRepo) ListDelayActivatable(ctx context.Context, now time.Time) ([]*Service, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Service), args.Error(1)
}

func (m *mockServiceRepo) ListPeriodEnded(ctx context.Context, now time.Time) ([]*Service, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Service), args.Error(1)
}

func (m *mockServiceRepo) ListGraceEnded(ctx context.Context, now time.Time) ([]*Service, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Service), args.Error(1)
}

func (m *mockServiceRepo) ListServicePeriodEnded(ctx context.Context, now time.Time) ([]*Service, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Service), args.Error(1)
}

// mockPlanRepo is a mock implementation of PlanRepo
type mockPlanRepo struct {
	mock.Mock
}

func (m *mockPlanRepo) ListPlans(ctx context.Context) ([]*Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Plan), args.Error(1)
}

func (m *mockPlanRepo) GetPlan(ctx context.Context, id string) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

// mockScheduleRepo is a mock implementation of ScheduleAdjustmentRepo
type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) ListAdjustments(ctx context.Context, membershipID uint64, fromPeriod int) ([]*ScheduleAdjustment, error) {
	args := m.Called(ctx, membershipID, fromPeriod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ScheduleAdjustment), args.Error(1)
}

// mockStatusLogRepo is a mock implementation of StatusLogRepo
type mockStatusLogRepo struct {
	mock.Mock
}

func (m *mockStatusLogRepo) AddStatusLog(ctx context.Context, entry *StatusLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// mockInvoiceManager is a mock implementation of InvoiceManager
type mockInvoiceManager struct {
	mock.Mock
}

func (m *mockInvoiceManager) CreateInvoice(ctx context.Context, membership *Membership, svc *Service, description string, price decimal.Decimal) (*Invoice, error) {
	args := m.Called(ctx, membership, svc, description, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invoice), args.Error(1)
}

func (m *mockInvoiceManager) GetInvoice(ctx context.Context, invoiceID uint64) (*Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invoice), args.Error(1)
}

func (m *mockInvoiceManager) RaiseMembershipFee(ctx context.Context, invoice *Invoice, membership *Membership, amount decimal.Decimal) error {
	args := m.Called(ctx, invoice, membership, amount)
	return args.Error(0)
}

func (m *mockInvoiceManager) SetDueDate(ctx context.Context, invoice *Invoice, due time.Time) error {
	args := m.Called(ctx, invoice, due)
	return args.Error(0)
}

func (m *mockInvoiceManager) MarkDraft(ctx context.Context, invoice *Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceManager) RecomputeTotals(ctx context.Context, invoice *Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// fakeTransaction 直接执行回调，测试中不需要真实事务
type fakeTransaction struct{}

func (fakeTransaction) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeLocker 进程内互斥，busy 时模拟锁被其他实例占用
type fakeLocker struct {
	busy      bool
	lockNames []string
}

func (l *fakeLocker) NewMutex(name string) LifecycleMutex {
	l.lockNames = append(l.lockNames, name)
	return &fakeMutex{busy: l.busy}
}

type fakeMutex struct {
	busy bool
}

func (m *fakeMutex) LockContext(ctx context.Context) error {
	if m.busy {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *fakeMutex) UnlockContext(ctx context.Context) (bool, error) {
	return true, nil
}

type usecaseMocks struct {
	membershipRepo *mockMembershipRepo
	serviceRepo    *mockServiceRepo
	planRepo       *mockPlanRepo
	scheduleRepo   *mockScheduleRepo
	statusLogRepo  *mockStatusLogRepo
	invoiceManager *mockInvoiceManager
}

func newTestUsecase(now time.Time) (*MembershipUsecase, *usecaseMocks) {
	m := &usecaseMocks{
		membershipRepo: new(mockMembershipRepo),
		serviceRepo:    new(mockServiceRepo),
		planRepo:       new(mockPlanRepo),
		scheduleRepo:   new(mockScheduleRepo),
		statusLogRepo:  new(mockStatusLogRepo),
		invoiceManager: new(mockInvoiceManager),
	}

	clock := FixedClock{FixedTime: now}
	config := &conf.Bootstrap{Subscription: &conf.Subscription{DefaultGraceDays: 0}}
	logger := log.NewStdLogger(io.Discard)

	initializer := NewServiceInitializer(m.serviceRepo, m.invoiceManager, m.statusLogRepo, clock, config, logger)
	uc := NewMembershipUsecase(
		m.membershipRepo,
		m.serviceRepo,
		m.planRepo,
		m.scheduleRepo,
		m.statusLogRepo,
		m.invoiceManager,
		initializer,
		fakeTransaction{},
		&fakeLocker{},
		clock,
		config,
		logger,
	)
	return uc, m
}

func TestInitMembership_AssignsTrialAndCreatesService(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 1, 1)
	uc, m := newTestUsecase(now)

	membership := &Membership{MembershipID: 10, UID: "uid-1"}
	plan := &Plan{
		PlanID:    "monthly-basic",
		Name:      "Monthly Basic",
		PlanType:  constants.PlanTypeMonthly,
		Price:     decimal.RequireFromString("9.99"),
		TrialDays: 14,
	}

	m.membershipRepo.On("GetMembership", ctx, uint64(10)).Return(membership, nil)
	m.planRepo.On("GetPlan", ctx, "monthly-basic").Return(plan, nil)
	m.serviceRepo.On("UpsertThrowaway", ctx, uint64(10), "uid-1", "monthly-basic", (*time.Time)(nil), now).
		Return(&Service{ServiceID: 42, MembershipID: 10, UID: "uid-1", PlanID: "monthly-basic", StatusCode: constants.StatusNew}, false, nil)
	m.invoiceManager.On("CreateInvoice", ctx, membership, mock.Anything, "Membership plan: Monthly Basic", plan.Price).
		Return(&Invoice{InvoiceID: 77}, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.Anything).Return(nil)
	m.invoiceManager.On("GetInvoice", ctx, uint64(77)).Return(&Invoice{InvoiceID: 77}, nil)
	// 试用期内账单推迟到试用期结束
	m.invoiceManager.On("SetDueDate", ctx, mock.Anything, now.AddDate(0, 0, 14)).Return(nil)
	m.invoiceManager.On("MarkDraft", ctx, mock.Anything).Return(nil)
	m.invoiceManager.On("RecomputeTotals", ctx, mock.Anything).Return(nil)
	m.membershipRepo.On("SaveMembership", ctx, mock.MatchedBy(func(mb *Membership) bool {
		return mb.IsTrialUsed && mb.ActiveServiceID == 42
	})).Return(nil)

	svc, err := uc.InitMembership(ctx, 10, "monthly-basic", InitMembershipOptions{})
	require.NoError(t, err)
	require.NotNil(t, svc)

	assert.Equal(t, uint64(42), svc.ServiceID)
	assert.Equal(t, constants.StatusTrial, svc.StatusCode)
	assert.Equal(t, uint64(77), svc.FirstInvoiceID)
	require.NotNil(t, membership.TrialPeriodEnd)
	assert.Equal(t, now.AddDate(0, 0, 14), *membership.TrialPeriodEnd)

	m.invoiceManager.AssertExpectations(t)
	m.membershipRepo.AssertExpectations(t)
}

func TestInitMembership_RaisesMembershipFee(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 3, 1)
	uc, m := newTestUsecase(now)

	membership := &Membership{MembershipID: 11, UID: "uid-2", IsTrialUsed: true}
	fee := decimal.RequireFromString("20.00")
	plan := &Plan{
		PlanID:        "yearly-pro",
		Name:          "Yearly Pro",
		PlanType:      constants.PlanTypeYearly,
		Price:         decimal.RequireFromString("99.00"),
		MembershipFee: fee,
	}

	m.membershipRepo.On("GetMembership", ctx, uint64(11)).Return(membership, nil)
	m.planRepo.On("GetPlan", ctx, "yearly-pro").Return(plan, nil)
	m.serviceRepo.On("UpsertThrowaway", ctx, uint64(11), "uid-2", "yearly-pro", (*time.Time)(nil), now).
		Return(&Service{ServiceID: 43, MembershipID: 11, UID: "uid-2", PlanID: "yearly-pro", StatusCode: constants.StatusNew}, false, nil)
	m.invoiceManager.On("CreateInvoice", ctx, membership, mock.Anything, "Membership plan: Yearly Pro", plan.Price).
		Return(&Invoice{InvoiceID: 78}, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.Anything).Return(nil)
	m.invoiceManager.On("GetInvoice", ctx, uint64(78)).Return(&Invoice{InvoiceID: 78}, nil)
	m.invoiceManager.On("RaiseMembershipFee", ctx, mock.Anything, membership, fee).Return(nil)
	m.invoiceManager.On("MarkDraft", ctx, mock.Anything).Return(nil)
	m.invoiceManager.On("RecomputeTotals", ctx, mock.Anything).Return(nil)
	m.membershipRepo.On("SaveMembership", ctx, mock.Anything).Return(nil)

	svc, err := uc.InitMembership(ctx, 11, "yearly-pro", InitMembershipOptions{})
	require.NoError(t, err)

	// 试用期已用过，服务直接生效
	assert.Equal(t, constants.StatusActive, svc.StatusCode)
	m.invoiceManager.AssertCalled(t, "RaiseMembershipFee", ctx, mock.Anything, membership, fee)
	// 没有试用期就不推迟到期日
	m.invoiceManager.AssertNotCalled(t, "SetDueDate", ctx, mock.Anything, mock.Anything)
}

func TestInitMembership_PlanRequired(t *testing.T) {
	ctx := context.Background()
	uc, m := newTestUsecase(date(2024, 1, 1))

	_, err := uc.InitMembership(ctx, 10, "", InitMembershipOptions{})
	assert.Error(t, err)
	m.membershipRepo.AssertNotCalled(t, "GetMembership", mock.Anything, mock.Anything)
}

func TestInitMembership_UnknownPlanAbortsBeforeCreation(t *testing.T) {
	ctx := context.Background()
	uc, m := newTestUsecase(date(2024, 1, 1))

	m.membershipRepo.On("GetMembership", ctx, uint64(10)).Return(&Membership{MembershipID: 10, UID: "uid-1"}, nil)
	m.planRepo.On("GetPlan", ctx, "missing").Return(nil, nil)

	_, err := uc.InitMembership(ctx, 10, "missing", InitMembershipOptions{})
	assert.Error(t, err)
	m.serviceRepo.AssertNotCalled(t, "UpsertThrowaway", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSwitchPlan_AtTermEndDelaysNewService(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 1, 15)
	uc, m := newTestUsecase(now)

	termEnd := date(2024, 2, 1)
	membership := &Membership{MembershipID: 10, UID: "uid-1", IsTrialUsed: true, ActiveServiceID: 5}
	oldService := &Service{
		ServiceID:        5,
		MembershipID:     10,
		UID:              "uid-1",
		StatusCode:       constants.StatusActive,
		ServicePeriodEnd: &termEnd,
	}
	plan := &Plan{
		PlanID:   "yearly-pro",
		Name:     "Yearly Pro",
		PlanType: constants.PlanTypeYearly,
		Price:    decimal.RequireFromString("99.00"),
	}

	m.membershipRepo.On("GetMembership", ctx, uint64(10)).Return(membership, nil)
	m.planRepo.On("GetPlan", ctx, "yearly-pro").Return(plan, nil)
	m.serviceRepo.On("GetService", ctx, uint64(5)).Return(oldService, nil)
	m.serviceRepo.On("UpsertThrowaway", ctx, uint64(10), "uid-1", "yearly-pro", &termEnd, now).
		Return(&Service{ServiceID: 44, MembershipID: 10, UID: "uid-1", PlanID: "yearly-pro", StatusCode: constants.StatusNew, DelayActivatedAt: &termEnd}, false, nil)
	m.invoiceManager.On("CreateInvoice", ctx, membership, mock.Anything, "Membership plan: Yearly Pro", plan.Price).
		Return(&Invoice{InvoiceID: 79}, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.Anything).Return(nil)

	svc, err := uc.SwitchPlan(ctx, 10, "yearly-pro", DefaultSwitchPlanOptions())
	require.NoError(t, err)

	// 延迟生效的服务保持占位状态，等待激活流程
	assert.Equal(t, constants.StatusNew, svc.StatusCode)
	assert.True(t, svc.IsThrowaway)
	require.NotNil(t, svc.DelayActivatedAt)
	assert.Equal(t, termEnd, *svc.DelayActivatedAt)

	// 旧服务和活跃指针留给激活流程处理
	m.serviceRepo.AssertNotCalled(t, "SaveService", ctx, oldService)
	m.membershipRepo.AssertNotCalled(t, "SaveMembership", mock.Anything, mock.Anything)
}

func TestSwitchPlan_ImmediateUsesProratedPrice(t *testing.T) {
	ctx := context.Background()
	// 旧周期 1月1日-1月31日 共 30 天，切换时正好过半
	now := date(2024, 1, 16)
	uc, m := newTestUsecase(now)

	periodStart := date(2024, 1, 1)
	periodEnd := date(2024, 1, 31)
	membership := &Membership{MembershipID: 10, UID: "uid-1", IsTrialUsed: true, ActiveServiceID: 5}
	oldService := &Service{
		ServiceID:          5,
		MembershipID:       10,
		UID:                "uid-1",
		StatusCode:         constants.StatusActive,
		Price:              decimal.RequireFromString("10.00"),
		ServicePeriodEnd:   &periodEnd,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &periodEnd,
	}
	plan := &Plan{
		PlanID:     "monthly-plus",
		Name:       "Monthly Plus",
		PlanType:   constants.PlanTypeMonthly,
		Price:      decimal.RequireFromString("20.00"),
		SwitchMode: constants.SwitchModeProrated,
	}

	m.membershipRepo.On("GetMembership", ctx, uint64(10)).Return(membership, nil)
	m.planRepo.On("GetPlan", ctx, "monthly-plus").Return(plan, nil)
	m.serviceRepo.On("GetService", ctx, uint64(5)).Return(oldService, nil)
	m.serviceRepo.On("UpsertThrowaway", ctx, uint64(10), "uid-1", "monthly-plus", (*time.Time)(nil), now).
		Return(&Service{ServiceID: 45, MembershipID: 10, UID: "uid-1", PlanID: "monthly-plus", StatusCode: constants.StatusNew}, false, nil)
	// 未用完的 15 天按旧价抵扣 5.00: 20.00 - 5.00 = 15.00
	expectedPrice := decimal.RequireFromString("15.00")
	m.invoiceManager.On("CreateInvoice", ctx, membership, mock.Anything, "Membership plan: Monthly Plus", mock.MatchedBy(func(p decimal.Decimal) bool {
		return p.Equal(expectedPrice)
	})).Return(&Invoice{InvoiceID: 80}, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.Anything).Return(nil)

	svc, err := uc.SwitchPlan(ctx, 10, "monthly-plus", SwitchPlanOptions{AtTermEnd: false})
	require.NoError(t, err)

	assert.True(t, svc.Price.Equal(expectedPrice))
	assert.Nil(t, svc.DelayActivatedAt)
}

func TestSwitchPlan_NoActiveServiceFallsBackToPlainInit(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 1, 1)
	uc, m := newTestUsecase(now)

	membership := &Membership{MembershipID: 12, UID: "uid-3", IsTrialUsed: true}
	plan := &Plan{
		PlanID:   "monthly-basic",
		Name:     "Monthly Basic",
		PlanType: constants.PlanTypeMonthly,
		Price:    decimal.RequireFromString("9.99"),
	}

	m.membershipRepo.On("GetMembership", ctx, uint64(12)).Return(membership, nil)
	m.planRepo.On("GetPlan", ctx, "monthly-basic").Return(plan, nil)
	m.serviceRepo.On("UpsertThrowaway", ctx, uint64(12), "uid-3", "monthly-basic", (*time.Time)(nil), now).
		Return(&Service{ServiceID: 46, MembershipID: 12, UID: "uid-3", PlanID: "monthly-basic", StatusCode: constants.StatusNew}, false, nil)
	m.invoiceManager.On("CreateInvoice", ctx, membership, mock.Anything, "Membership plan: Monthly Basic", plan.Price).
		Return(&Invoice{InvoiceID: 81}, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.Anything).Return(nil)

	svc, err := uc.SwitchPlan(ctx, 12, "monthly-basic", DefaultSwitchPlanOptions())
	require.NoError(t, err)
	assert.Equal(t, constants.StatusActive, svc.StatusCode)
	assert.True(t, svc.Price.Equal(plan.Price))
	m.serviceRepo.AssertNotCalled(t, "GetService", mock.Anything, mock.Anything)
}

func TestCancelService_AtTermEndSchedulesCancellation(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 1, 15)
	uc, m := newTestUsecase(now)

	periodEnd := date(2024, 2, 1)
	svc := &Service{
		ServiceID:        5,
		MembershipID:     10,
		StatusCode:       constants.StatusActive,
		CurrentPeriodEnd: &periodEnd,
	}

	m.serviceRepo.On("GetService", ctx, uint64(5)).Return(svc, nil)
	m.serviceRepo.On("SaveService", ctx, mock.MatchedBy(func(s *Service) bool {
		return s.DelayCancelledAt != nil && s.DelayCancelledAt.Equal(periodEnd) &&
			s.StatusCode == constants.StatusActive
	})).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.MatchedBy(func(entry *StatusLog) bool {
		return entry.Action == constants.ActionCancelScheduled
	})).Return(nil)

	err := uc.CancelService(ctx, 5, CancelServiceOptions{AtTermEnd: true})
	require.NoError(t, err)
	assert.True(t, svc.IsDelayCancelled())
}

func TestCancelService_ImmediateStopsNow(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 1, 15)
	uc, m := newTestUsecase(now)

	periodEnd := date(2024, 2, 1)
	svc := &Service{
		ServiceID:        5,
		MembershipID:     10,
		StatusCode:       constants.StatusActive,
		CurrentPeriodEnd: &periodEnd,
		DelayCancelledAt: &periodEnd,
	}

	m.serviceRepo.On("GetService", ctx, uint64(5)).Return(svc, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.MatchedBy(func(entry *StatusLog) bool {
		return entry.Action == constants.ActionCancelled
	})).Return(nil)

	err := uc.CancelService(ctx, 5, CancelServiceOptions{AtTermEnd: false})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusCancelled, svc.StatusCode)
	require.NotNil(t, svc.CancelledAt)
	assert.Equal(t, now, *svc.CancelledAt)
	// 立即取消清掉预定取消时间
	assert.Nil(t, svc.DelayCancelledAt)
}

func TestCancelService_RejectsFinishedService(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{constants.StatusCancelled, constants.StatusExpired} {
		uc, m := newTestUsecase(date(2024, 1, 15))
		m.serviceRepo.On("GetService", ctx, uint64(5)).Return(&Service{ServiceID: 5, StatusCode: status}, nil)

		err := uc.CancelService(ctx, 5, CancelServiceOptions{AtTermEnd: true})
		assert.Error(t, err, "status %s should not be cancellable", status)
		m.serviceRepo.AssertNotCalled(t, "SaveService", mock.Anything, mock.Anything)
	}
}

func TestResumeService_ClearsScheduledCancellation(t *testing.T) {
	ctx := context.Background()
	now := date(2024, 1, 20)
	uc, m := newTestUsecase(now)

	periodEnd := date(2024, 2, 1)
	svc := &Service{
		ServiceID:        5,
		MembershipID:     10,
		StatusCode:       constants.StatusActive,
		CurrentPeriodEnd: &periodEnd,
		DelayCancelledAt: &periodEnd,
	}

	m.serviceRepo.On("GetService", ctx, uint64(5)).Return(svc, nil)
	m.serviceRepo.On("SaveService", ctx, mock.Anything).Return(nil)
	m.statusLogRepo.On("AddStatusLog", ctx, mock.MatchedBy(func(entry *StatusLog) bool {
		return entry.Action == constants.ActionResumed
	})).Return(nil)

	err := uc.ResumeService(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, svc.DelayCancelledAt)
	assert.False(t, svc.IsCancelled())
}

func TestResumeService_RejectsNonDelayCancelled(t *testing.T) {
	ctx := context.Background()
	uc, m := newTestUsecase(date(2024, 1, 20))

	m.serviceRepo.On("GetService", ctx, uint64(5)).Return(&Service{ServiceID: 5, StatusCode: constants.StatusActive}, nil)

	err := uc.ResumeService(ctx, 5)
	assert.Error(t, err)
	m.serviceRepo.AssertNotCalled(t, "SaveService", mock.Anything, mock.Anything)
}
