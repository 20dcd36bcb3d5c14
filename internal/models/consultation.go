package models

import "time"

// Consultation 咨询记录
type Consultation struct {
	BaseModel
	TenantID    uint       `gorm:"not null;index" json:"tenant_id"`
	CreatedBy   uint       `gorm:"not null;index" json:"created_by"` // 负责人，所有权判定依据
	ClientName  string     `gorm:"not null;size:100" json:"client_name"`
	ClientEmail string     `gorm:"size:100" json:"client_email"`
	Topic       string     `gorm:"not null;size:200" json:"topic"`
	Status      string     `gorm:"not null;default:'scheduled';size:20" json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Summary     string     `gorm:"type:text" json:"summary"`

	// 关联
	Tenant Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
}

// TableName 指定表名
func (Consultation) TableName() string {
	return "consultations"
}

// 咨询状态常量
const (
	ConsultationStatusScheduled = "scheduled"
	ConsultationStatusCompleted = "completed"
	ConsultationStatusCancelled = "cancelled"
)

// ConsultationNote 咨询笔记
//
// 笔记是起草性质的私有资源：member角色无论权限矩阵如何，
// 都只能访问自己创建的笔记。
type ConsultationNote struct {
	BaseModel
	TenantID       uint   `gorm:"not null;index" json:"tenant_id"`
	ConsultationID uint   `gorm:"not null;index" json:"consultation_id"`
	CreatedBy      uint   `gorm:"not null;index" json:"created_by"`
	Body           string `gorm:"type:text;not null" json:"body"`

	// 关联
	Consultation Consultation `gorm:"foreignKey:ConsultationID;constraint:OnDelete:CASCADE" json:"consultation,omitempty"`
}

// TableName 指定表名
func (ConsultationNote) TableName() string {
	return "consultation_notes"
}
