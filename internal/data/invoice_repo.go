package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"xinyuan_tech/membership-service/internal/biz"
	"xinyuan_tech/membership-service/internal/constants"
	"xinyuan_tech/membership-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceManager 账单协作方的进程内实现
// 生命周期核心只依赖 biz.InvoiceManager 契约，替换成远程账单服务时
// 只需要换掉这一个实现
type invoiceManager struct {
	data *Data
	log  *log.Helper
}

// NewInvoiceManager 创建账单管理器
func NewInvoiceManager(data *Data, logger log.Logger) biz.InvoiceManager {
	return &invoiceManager{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateInvoice 为服务开一张新账单并带上首条计费明细
func (m *invoiceManager) CreateInvoice(ctx context.Context, membership *biz.Membership, svc *biz.Service, description string, price decimal.Decimal) (*biz.Invoice, error) {
	db := m.data.session(ctx)

	record := &model.Invoice{
		Number:       fmt.Sprintf("INV-%s", uuid.New().String()),
		MembershipID: membership.MembershipID,
		UID:          membership.UID,
		ServiceID:    svc.ServiceID,
		StatusCode:   constants.InvoiceStatusUnpaid,
		Total:        price,
	}
	if err := db.Create(record).Error; err != nil {
		m.log.Errorf("Failed to create invoice for service %d: %v", svc.ServiceID, err)
		return nil, err
	}

	item := &model.InvoiceItem{
		InvoiceID:   record.InvoiceID,
		Description: description,
		Quantity:    1,
		Price:       price,
		Total:       price,
	}
	if err := db.Create(item).Error; err != nil {
		m.log.Errorf("Failed to create invoice item for invoice %d: %v", record.InvoiceID, err)
		return nil, err
	}

	return toBizInvoice(record), nil
}

// GetInvoice 根据ID获取账单
func (m *invoiceManager) GetInvoice(ctx context.Context, invoiceID uint64) (*biz.Invoice, error) {
	var record model.Invoice
	err := m.data.session(ctx).Where("invoice_id = ?", invoiceID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		m.log.Errorf("Failed to get invoice %d: %v", invoiceID, err)
		return nil, err
	}
	return toBizInvoice(&record), nil
}

// RaiseMembershipFee 把一次性入会费追加到账单上
func (m *invoiceManager) RaiseMembershipFee(ctx context.Context, invoice *biz.Invoice, membership *biz.Membership, amount decimal.Decimal) error {
	item := &model.InvoiceItem{
		InvoiceID:   invoice.InvoiceID,
		Description: "Membership fee",
		Quantity:    1,
		Price:       amount,
		Total:       amount,
	}
	if err := m.data.session(ctx).Create(item).Error; err != nil {
		m.log.Errorf("Failed to raise membership fee on invoice %d: %v", invoice.InvoiceID, err)
		return err
	}
	return nil
}

// SetDueDate 设置账单到期日
func (m *invoiceManager) SetDueDate(ctx context.Context, invoice *biz.Invoice, due time.Time) error {
	err := m.data.session(ctx).Model(&model.Invoice{}).
		Where("invoice_id = ?", invoice.InvoiceID).
		Update("due_at", due).Error
	if err != nil {
		m.log.Errorf("Failed to set due date on invoice %d: %v", invoice.InvoiceID, err)
		return err
	}
	invoice.DueAt = &due
	return nil
}

// MarkDraft 把账单置为草稿状态
func (m *invoiceManager) MarkDraft(ctx context.Context, invoice *biz.Invoice) error {
	err := m.data.session(ctx).Model(&model.Invoice{}).
		Where("invoice_id = ?", invoice.InvoiceID).
		Update("status_code", constants.InvoiceStatusDraft).Error
	if err != nil {
		m.log.Errorf("Failed to mark invoice %d as draft: %v", invoice.InvoiceID, err)
		return err
	}
	invoice.StatusCode = constants.InvoiceStatusDraft
	return nil
}

// RecomputeTotals 按明细行重算账单总额
func (m *invoiceManager) RecomputeTotals(ctx context.Context, invoice *biz.Invoice) error {
	db := m.data.session(ctx)

	var items []model.InvoiceItem
	if err := db.Where("invoice_id = ?", invoice.InvoiceID).Find(&items).Error; err != nil {
		m.log.Errorf("Failed to list items for invoice %d: %v", invoice.InvoiceID, err)
		return err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total)
	}

	err := db.Model(&model.Invoice{}).
		Where("invoice_id = ?", invoice.InvoiceID).
		Update("total", total).Error
	if err != nil {
		m.log.Errorf("Failed to update total on invoice %d: %v", invoice.InvoiceID, err)
		return err
	}
	invoice.Total = total
	return nil
}

func toBizInvoice(record *model.Invoice) *biz.Invoice {
	return &biz.Invoice{
		InvoiceID:    record.InvoiceID,
		Number:       record.Number,
		MembershipID: record.MembershipID,
		UID:          record.UID,
		ServiceID:    record.ServiceID,
		StatusCode:   record.StatusCode,
		DueAt:        record.DueAt,
		Total:        record.Total,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
