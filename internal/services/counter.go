package services

import (
	"awp/internal/database"
	"awp/pkg/errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CounterService 租户计数器服务
//
// 所有写操作都是单条原子语句，并发正确性完全委托给数据库的行级
// 写保证，进程内不加任何锁，也没有先读后写的步骤。
type CounterService struct {
	db *gorm.DB
}

// NewCounterService 创建计数器服务
func NewCounterService() *CounterService {
	return &CounterService{db: database.GetDB()}
}

// documentCounters 文档序号计数器白名单：名称 -> 列名
//
// 列名只来自这张表，拼接SQL前已经是受控常量。
var documentCounters = map[string]struct {
	numberColumn string
	prefixColumn string
}{
	"invoice":  {numberColumn: "next_invoice_number", prefixColumn: "invoice_prefix"},
	"proposal": {numberColumn: "next_proposal_number", prefixColumn: "proposal_prefix"},
	"contract": {numberColumn: "next_contract_number", prefixColumn: "contract_prefix"},
}

// quotaCounters 周期配额计数器白名单：名称 -> 列名
var quotaCounters = map[string]struct {
	countColumn string
	resetColumn string
}{
	"ai_generation": {countColumn: "ai_generation_count", resetColumn: "ai_generation_reset_at"},
}

// NextDocumentNumber 发放下一个文档序号
//
// 单条 UPDATE ... RETURNING 语句完成自增并取回自增前的值和前缀，
// 两个并发调用拿到的号码必然不同。租户配置行缺失说明开通流程有
// 缺陷，返回ErrTenantProfileMissing，绝不静默补默认值。
func (s *CounterService) NextDocumentNumber(tenantID uint, counterName string) (string, int64, error) {
	cols, ok := documentCounters[counterName]
	if !ok {
		return "", 0, fmt.Errorf("未知的文档计数器: %s", counterName)
	}

	var row struct {
		Number int64
		Prefix string
	}
	query := fmt.Sprintf(
		`UPDATE tenant_profiles SET %[1]s = %[1]s + 1, updated_at = NOW() WHERE tenant_id = ? RETURNING %[1]s - 1 AS number, %[2]s AS prefix`,
		cols.numberColumn, cols.prefixColumn,
	)
	result := s.db.Raw(query, tenantID).Scan(&row)
	if result.Error != nil {
		return "", 0, result.Error
	}
	if result.RowsAffected == 0 {
		return "", 0, errors.ErrTenantProfileMissing
	}

	return row.Prefix, row.Number, nil
}

// FormatDocumentNumber 组装文档编号，如 INV-2026-0005
//
// 格式化发生在原子步骤之后，对号码唯一性没有影响。
func FormatDocumentNumber(prefix string, number int64, issuedAt time.Time) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, issuedAt.Year(), number)
}

// periodStart 当前配额周期的起点（自然月，UTC）
func periodStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// IncrementQuota 周期配额加一
//
// 周期翻转和常规自增在同一条语句的CASE分支里完成：重置时间为空或
// 早于本周期起点时，计数置1并刷新重置时间；否则计数加1、重置时间
// 不动。不存在"先查再分支"的应用层步骤，跨周期边界的并发请求不会
// 丢失更新。
func (s *CounterService) IncrementQuota(tenantID uint, quotaName string) error {
	cols, ok := quotaCounters[quotaName]
	if !ok {
		return fmt.Errorf("未知的配额计数器: %s", quotaName)
	}

	now := time.Now().UTC()
	start := periodStart(now)

	query := fmt.Sprintf(
		`UPDATE tenant_profiles SET
			%[1]s = CASE WHEN %[2]s IS NULL OR %[2]s < ? THEN 1 ELSE %[1]s + 1 END,
			%[2]s = CASE WHEN %[2]s IS NULL OR %[2]s < ? THEN ? ELSE %[2]s END,
			updated_at = NOW()
		WHERE tenant_id = ?`,
		cols.countColumn, cols.resetColumn,
	)
	result := s.db.Exec(query, start, start, now, tenantID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrTenantProfileMissing
	}
	return nil
}

// CurrentQuotaUsage 读取本周期的配额用量
//
// 普通读即可，但必须识别陈旧周期：重置时间为空或早于本周期起点时
// 返回0而不是陈旧的存量值。读后再增之间允许小幅超计（软限制）。
func (s *CounterService) CurrentQuotaUsage(tenantID uint, quotaName string) (int64, error) {
	cols, ok := quotaCounters[quotaName]
	if !ok {
		return 0, fmt.Errorf("未知的配额计数器: %s", quotaName)
	}

	var row struct {
		Count   int64
		ResetAt *time.Time
	}
	query := fmt.Sprintf(
		`SELECT %s AS count, %s AS reset_at FROM tenant_profiles WHERE tenant_id = ?`,
		cols.countColumn, cols.resetColumn,
	)
	result := s.db.Raw(query, tenantID).Scan(&row)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, errors.ErrTenantProfileMissing
	}

	if row.ResetAt == nil || row.ResetAt.Before(periodStart(time.Now())) {
		return 0, nil
	}
	return row.Count, nil
}
