package models

import "time"

// Contract 合同
type Contract struct {
	BaseModel
	TenantID   uint       `gorm:"not null;index" json:"tenant_id"`
	ProposalID *uint      `gorm:"index" json:"proposal_id"`
	CreatedBy  uint       `gorm:"not null;index" json:"created_by"`
	Number     string     `gorm:"not null;size:50" json:"number"`
	Title      string     `gorm:"not null;size:200" json:"title"`
	Status     string     `gorm:"not null;default:'draft';size:20" json:"status"`
	SignedAt   *time.Time `json:"signed_at"`

	// 关联
	Tenant   Tenant    `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Proposal *Proposal `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
}

// TableName 指定表名
func (Contract) TableName() string {
	return "contracts"
}

// 合同状态常量
const (
	ContractStatusDraft      = "draft"
	ContractStatusSent       = "sent"
	ContractStatusSigned     = "signed"
	ContractStatusTerminated = "terminated"
)
