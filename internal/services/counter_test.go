package services

import (
	"testing"
	"time"

	"awp/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB 构造挂在sqlmock上的gorm连接
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestNextDocumentNumberSingleStatement(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	// 自增和取号在同一条UPDATE ... RETURNING里完成
	mock.ExpectQuery(`UPDATE tenant_profiles SET next_invoice_number = next_invoice_number \+ 1.*RETURNING next_invoice_number - 1 AS number, invoice_prefix AS prefix`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"number", "prefix"}).AddRow(int64(5), "INV"))

	prefix, number, err := svc.NextDocumentNumber(7, "invoice")
	require.NoError(t, err)
	assert.Equal(t, "INV", prefix)
	assert.Equal(t, int64(5), number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextDocumentNumberMissingProfile(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	mock.ExpectQuery(`UPDATE tenant_profiles SET next_proposal_number`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"number", "prefix"}))

	_, _, err := svc.NextDocumentNumber(7, "proposal")
	assert.ErrorIs(t, err, errors.ErrTenantProfileMissing)
}

func TestNextDocumentNumberUnknownCounter(t *testing.T) {
	gdb, _ := newMockDB(t)
	svc := &CounterService{db: gdb}

	// 白名单外的名称直接拒绝，不碰数据库
	_, _, err := svc.NextDocumentNumber(7, "timesheet")
	assert.Error(t, err)
}

func TestFormatDocumentNumber(t *testing.T) {
	issuedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV-2026-0005", FormatDocumentNumber("INV", 5, issuedAt))
	assert.Equal(t, "CON-2026-1234", FormatDocumentNumber("CON", 1234, issuedAt))
	// 超过四位不截断
	assert.Equal(t, "PRO-2026-10000", FormatDocumentNumber("PRO", 10000, issuedAt))
}

func TestIncrementQuotaSingleStatement(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	// 周期翻转和自增在同一条语句的CASE分支里
	mock.ExpectExec(`UPDATE tenant_profiles SET\s+ai_generation_count = CASE WHEN ai_generation_reset_at IS NULL OR ai_generation_reset_at < .* THEN 1 ELSE ai_generation_count \+ 1 END`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.IncrementQuota(7, "ai_generation")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementQuotaMissingProfile(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	mock.ExpectExec(`UPDATE tenant_profiles SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.IncrementQuota(7, "ai_generation")
	assert.ErrorIs(t, err, errors.ErrTenantProfileMissing)
}

func TestCurrentQuotaUsageFreshPeriod(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	resetAt := time.Now().UTC()
	mock.ExpectQuery(`SELECT ai_generation_count AS count, ai_generation_reset_at AS reset_at FROM tenant_profiles`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(int64(42), resetAt))

	usage, err := svc.CurrentQuotaUsage(7, "ai_generation")
	require.NoError(t, err)
	assert.Equal(t, int64(42), usage)
}

func TestCurrentQuotaUsageStalePeriodReadsZero(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	// 上个周期的存量值必须按0对待，落库的数字留给下次写时翻转
	stale := time.Now().UTC().AddDate(0, -2, 0)
	mock.ExpectQuery(`SELECT ai_generation_count AS count`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(int64(42), stale))

	usage, err := svc.CurrentQuotaUsage(7, "ai_generation")
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage)
}

func TestCurrentQuotaUsageNeverReset(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &CounterService{db: gdb}

	mock.ExpectQuery(`SELECT ai_generation_count AS count`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "reset_at"}).AddRow(int64(0), nil))

	usage, err := svc.CurrentQuotaUsage(7, "ai_generation")
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage)
}

func TestPeriodStart(t *testing.T) {
	// 自然月起点，UTC
	now := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), periodStart(now))

	// 非UTC时区先归一再取月初
	loc := time.FixedZone("UTC+9", 9*3600)
	edge := time.Date(2026, 9, 1, 8, 0, 0, 0, loc) // UTC还在8月31日
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), periodStart(edge))
}
