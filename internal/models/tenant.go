package models

import "time"

// Tenant 租户模型 - 贫血模型，只包含数据结构
type Tenant struct {
	BaseModel
	Name              string     `json:"name" gorm:"not null;size:100"`
	Slug              string     `json:"slug" gorm:"unique;not null;size:50;index"`
	PrimaryColor      string     `json:"primary_color" gorm:"size:20"`   // 品牌主色
	SecondaryColor    string     `json:"secondary_color" gorm:"size:20"` // 品牌辅色
	Status            string     `json:"status" gorm:"default:'active';size:20"`
	DeleteScheduledAt *time.Time `json:"delete_scheduled_at"` // 计划删除时间，软删除
	MemberCount       int        `json:"member_count" gorm:"-"` // 成员数量，不存储在数据库中
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// IsDeleted 是否已进入删除流程
func (t *Tenant) IsDeleted() bool {
	return t.Status == TenantStatusInactive || t.DeleteScheduledAt != nil
}
