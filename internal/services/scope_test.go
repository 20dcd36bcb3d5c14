package services

import (
	"testing"
	"time"

	"awp/internal/models"
	"awp/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByIDMapsNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	guard := &ScopeGuard{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleAdmin}

	// 跨租户的行和不存在的行对外不可区分，统一ErrNotFound
	mock.ExpectQuery(`SELECT \* FROM "consultations" WHERE tenant_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var consultation models.Consultation
	err := guard.FindByID(tc, &consultation, 42)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestFindByIDScopesByTenant(t *testing.T) {
	gdb, mock := newMockDB(t)
	guard := &ScopeGuard{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleAdmin}

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "consultations" WHERE tenant_id = `).
		WithArgs(uint(1), uint(42), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "topic", "created_at", "updated_at"}).
			AddRow(42, 1, "品牌改版", now, now))

	var consultation models.Consultation
	err := guard.FindByID(tc, &consultation, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), consultation.ID)
	assert.Equal(t, "品牌改版", consultation.Topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOwnedByIDAddsCreatorFilterForMember(t *testing.T) {
	gdb, mock := newMockDB(t)
	guard := &ScopeGuard{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleMember}

	// member角色必须附加created_by谓词
	mock.ExpectQuery(`SELECT \* FROM "consultation_notes" WHERE tenant_id = .* AND created_by = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var note models.ConsultationNote
	err := guard.FindOwnedByID(tc, &note, 7)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOwnedByIDNoCreatorFilterForAdmin(t *testing.T) {
	gdb, mock := newMockDB(t)
	guard := &ScopeGuard{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleAdmin}

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "consultation_notes" WHERE tenant_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "created_by", "created_at", "updated_at"}).
			AddRow(7, 1, 99, now, now))

	var note models.ConsultationNote
	err := guard.FindOwnedByID(tc, &note, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(99), note.CreatedBy)
}

func TestDeleteByIDZeroRowsIsNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	guard := &ScopeGuard{db: gdb}
	tc := &TenantContext{TenantID: 1, ActorID: 2, Role: models.RoleOwner}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "consultations" WHERE tenant_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := guard.DeleteByID(tc, &models.Consultation{}, 42)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
