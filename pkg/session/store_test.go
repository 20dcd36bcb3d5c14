package session

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TenantStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	store := NewTenantStore(&Config{
		Host:   mr.Host(),
		Port:   port,
		Prefix: "awp",
	})
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestTenantStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetCurrentTenant(1, 42))

	tenantID, err := store.GetCurrentTenant(1)
	require.NoError(t, err)
	assert.Equal(t, uint(42), tenantID)
}

func TestTenantStoreMissingReturnsZero(t *testing.T) {
	store, _ := newTestStore(t)

	tenantID, err := store.GetCurrentTenant(999)
	require.NoError(t, err)
	assert.Equal(t, uint(0), tenantID)
}

func TestTenantStoreCorruptValueTreatedAsMissing(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set("awp:session:tenant:1", "not-a-number")

	tenantID, err := store.GetCurrentTenant(1)
	require.NoError(t, err)
	assert.Equal(t, uint(0), tenantID)
}

func TestTenantStoreClear(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetCurrentTenant(1, 42))
	require.NoError(t, store.ClearCurrentTenant(1))

	tenantID, err := store.GetCurrentTenant(1)
	require.NoError(t, err)
	assert.Equal(t, uint(0), tenantID)
}

func TestTenantStoreKeyIsolationPerUser(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SetCurrentTenant(1, 10))
	require.NoError(t, store.SetCurrentTenant(2, 20))

	tenantID, err := store.GetCurrentTenant(1)
	require.NoError(t, err)
	assert.Equal(t, uint(10), tenantID)

	tenantID, err = store.GetCurrentTenant(2)
	require.NoError(t, err)
	assert.Equal(t, uint(20), tenantID)
}

func TestTenantStoreSetsExpiry(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, store.SetCurrentTenant(1, 42))

	// 会话记录带过期时间，不会永久残留
	ttl := mr.TTL("awp:session:tenant:1")
	assert.Greater(t, ttl.Hours(), float64(0))
}
