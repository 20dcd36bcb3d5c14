package database

import (
	"awp/pkg/config"
	"awp/pkg/session"
	"sync"
)

var (
	tenantStoreInstance *session.TenantStore
	tenantStoreOnce     sync.Once
)

// GetTenantStore 获取租户会话存储的单例实例
func GetTenantStore() *session.TenantStore {
	tenantStoreOnce.Do(func() {
		cfg := config.GetConfig()
		tenantStoreInstance = session.NewTenantStore(&session.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return tenantStoreInstance
}

// CloseTenantStore 关闭Redis连接
func CloseTenantStore() error {
	if tenantStoreInstance != nil {
		return tenantStoreInstance.Close()
	}
	return nil
}
