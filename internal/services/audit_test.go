package services

import (
	"fmt"
	"testing"

	"awp/internal/models"
	"awp/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecordSwallowsWriteFailure(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &AuditService{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleAdmin}

	// 审计写入失败不得影响主操作：Record没有返回值，也不能panic
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnError(fmt.Errorf("connection refused"))
	mock.ExpectRollback()

	entityID := uint(42)
	svc.Record(tc, models.AuditActionUpdate, "consultation", &entityID,
		map[string]interface{}{"status": "scheduled"},
		map[string]interface{}{"status": "completed"},
		&AuditMeta{IPAddress: "10.0.0.1", UserAgent: "curl/8.0"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRecordWritesActorAndTenant(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &AuditService{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleOwner}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	svc.Record(tc, models.AuditActionCreate, "proposal", nil, nil, nil, nil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRecordSystemHasNoActor(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &AuditService{db: gdb}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	svc.RecordSystem(1, models.AuditActionDelete, "tenant", nil, nil, nil)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditGetWithPageDeniedForMember(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &AuditService{db: gdb, policy: NewPermissionPolicy()}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleMember}

	// member角色读不到审计日志，且权限检查在触库之前
	_, _, err := svc.GetWithPage(tc, "", 1, 20)
	assert.ErrorIs(t, err, errors.ErrPermissionDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditGetWithPageAllowedForAdmin(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := &AuditService{db: gdb, policy: NewPermissionPolicy()}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleAdmin}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE tenant_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "action", "entity_type"}).
			AddRow(1, 1, models.AuditActionUpdate, "consultation"))

	entries, pageInfo, err := svc.GetWithPage(tc, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), pageInfo.Total)
}
