package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志，只追加，本系统永不更新或删除
type AuditLog struct {
	ID         uint               `gorm:"primarykey" json:"id"`
	TenantID   uint               `gorm:"not null;index" json:"tenant_id"`
	ActorID    *uint              `gorm:"index" json:"actor_id"` // 为空表示系统行为
	Action     string             `gorm:"not null;size:50" json:"action"`
	EntityType string             `gorm:"not null;size:50" json:"entity_type"`
	EntityID   *uint              `json:"entity_id"`
	OldValues  datatypes.JSONMap  `json:"old_values,omitempty"`
	NewValues  datatypes.JSONMap  `json:"new_values,omitempty"`
	IPAddress  string             `gorm:"size:50" json:"ip_address,omitempty"`
	UserAgent  string             `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

// 审计动作常量
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionStatus = "status_change"
	AuditActionInvite = "invite"
	AuditActionAccept = "accept"
	AuditActionRemove = "remove"
)
