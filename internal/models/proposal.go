package models

import "time"

// Proposal 提案
type Proposal struct {
	BaseModel
	TenantID       uint       `gorm:"not null;index" json:"tenant_id"`
	ConsultationID *uint      `gorm:"index" json:"consultation_id"`
	CreatedBy      uint       `gorm:"not null;index" json:"created_by"`
	Number         string     `gorm:"not null;size:50" json:"number"` // 由计数器发放，租户内唯一
	Title          string     `gorm:"not null;size:200" json:"title"`
	Body           string     `gorm:"type:text" json:"body"`
	Status         string     `gorm:"not null;default:'draft';size:20" json:"status"`
	AIGenerated    bool       `gorm:"default:false" json:"ai_generated"` // 正文是否由AI起草
	SentAt         *time.Time `json:"sent_at"`

	// 关联
	Tenant       Tenant        `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Consultation *Consultation `gorm:"foreignKey:ConsultationID" json:"consultation,omitempty"`
}

// TableName 指定表名
func (Proposal) TableName() string {
	return "proposals"
}

// 提案状态常量
const (
	ProposalStatusDraft    = "draft"
	ProposalStatusSent     = "sent"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)
