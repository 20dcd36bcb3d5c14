package models

import "time"

// TenantProfile 租户配置行，承载所有按租户计数的整数列
//
// 开通租户时必须同步创建本行，计数操作发现行缺失即视为开通缺陷。
// 计数列只允许通过单条原子语句修改，禁止先读后写。
type TenantProfile struct {
	ID       uint `gorm:"primarykey" json:"id"`
	TenantID uint `gorm:"not null;uniqueIndex" json:"tenant_id"`

	// 文档序号：列值为下一个待发放的号码
	InvoicePrefix      string `gorm:"not null;default:'INV';size:20" json:"invoice_prefix"`
	NextInvoiceNumber  int64  `gorm:"not null;default:1" json:"next_invoice_number"`
	ProposalPrefix     string `gorm:"not null;default:'PRO';size:20" json:"proposal_prefix"`
	NextProposalNumber int64  `gorm:"not null;default:1" json:"next_proposal_number"`
	ContractPrefix     string `gorm:"not null;default:'CON';size:20" json:"contract_prefix"`
	NextContractNumber int64  `gorm:"not null;default:1" json:"next_contract_number"`

	// 周期配额：重置时间早于本周期起点即视为过期
	AIGenerationCount   int64      `gorm:"not null;default:0" json:"ai_generation_count"`
	AIGenerationResetAt *time.Time `json:"ai_generation_reset_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Tenant Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
}

// TableName 指定表名
func (TenantProfile) TableName() string {
	return "tenant_profiles"
}
