package biz

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice 账单
type Invoice struct {
	InvoiceID    uint64
	Number       string
	MembershipID uint64
	UID          string
	ServiceID    uint64
	// StatusCode 账单状态: draft, unpaid, paid, void
	StatusCode string
	DueAt      *time.Time
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceItem 账单明细行
type InvoiceItem struct {
	InvoiceItemID uint64
	InvoiceID     uint64
	Description   string
	Quantity      int
	Price         decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
}

// InvoiceManager 账单协作方接口（防腐层）
// 生命周期核心只通过这个契约操作账单，账单内部逻辑不在本核心实现
type InvoiceManager interface {
	// CreateInvoice 为服务开一张新账单并带上首条计费明细
	CreateInvoice(ctx context.Context, membership *Membership, svc *Service, description string, price decimal.Decimal) (*Invoice, error)
	GetInvoice(ctx context.Context, invoiceID uint64) (*Invoice, error)
	// RaiseMembershipFee 把一次性入会费追加到账单上
	RaiseMembershipFee(ctx context.Context, invoice *Invoice, membership *Membership, amount decimal.Decimal) error
	SetDueDate(ctx context.Context, invoice *Invoice, due time.Time) error
	MarkDraft(ctx context.Context, invoice *Invoice) error
	// RecomputeTotals 按明细行重算账单总额
	RecomputeTotals(ctx context.Context, invoice *Invoice) error
}
