package models

import "time"

// Invoice 账单
type Invoice struct {
	BaseModel
	TenantID    uint       `gorm:"not null;index" json:"tenant_id"`
	ContractID  *uint      `gorm:"index" json:"contract_id"`
	CreatedBy   uint       `gorm:"not null;index" json:"created_by"`
	Number      string     `gorm:"not null;size:50" json:"number"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"` // 金额以分存储，避免浮点
	Currency    string     `gorm:"not null;default:'CNY';size:10" json:"currency"`
	Status      string     `gorm:"not null;default:'draft';size:20" json:"status"`
	DueAt       *time.Time `json:"due_at"`
	PaidAt      *time.Time `json:"paid_at"`

	// 关联
	Tenant   Tenant    `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

// TableName 指定表名
func (Invoice) TableName() string {
	return "invoices"
}

// 账单状态常量
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"
)
