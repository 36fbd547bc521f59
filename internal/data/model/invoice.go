package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice 账单模型
type Invoice struct {
	InvoiceID    uint64          `gorm:"primaryKey;column:invoice_id;autoIncrement"`
	Number       string          `gorm:"column:number;type:varchar(50);not null;uniqueIndex:uk_number"`
	MembershipID uint64          `gorm:"column:membership_id;not null;index:idx_membership"`
	UID          string          `gorm:"column:uid;type:varchar(36);not null;index:idx_uid"`
	ServiceID    uint64          `gorm:"column:service_id;index:idx_service"`
	StatusCode   string          `gorm:"column:status_code;type:varchar(20);not null"` // draft, unpaid, paid, void
	DueAt        *time.Time      `gorm:"column:due_at"`
	Total        decimal.Decimal `gorm:"column:total;type:decimal(10,2);default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Invoice) TableName() string { return "invoice" }

// InvoiceItem 账单明细模型
type InvoiceItem struct {
	InvoiceItemID uint64          `gorm:"primaryKey;column:invoice_item_id;autoIncrement"`
	InvoiceID     uint64          `gorm:"column:invoice_id;not null;index:idx_invoice"`
	Description   string          `gorm:"column:description"`
	Quantity      int             `gorm:"column:quantity;default:1"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (InvoiceItem) TableName() string { return "invoice_item" }
