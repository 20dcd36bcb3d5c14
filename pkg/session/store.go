package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// TenantStore 用户当前选择租户的会话存储
//
// 切换租户的请求把选择写到这里，后续请求的上下文解析器把它
// 作为显式提示读出来。提示本身不代表权限，解析时会重新校验。
type TenantStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewTenantStore 创建租户会话存储
func NewTenantStore(config *Config) *TenantStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "awp"
	}

	return &TenantStore{
		client: client,
		prefix: prefix,
		ttl:    30 * 24 * time.Hour,
	}
}

// Close 关闭Redis连接
func (s *TenantStore) Close() error {
	return s.client.Close()
}

// Ping 测试Redis连接
func (s *TenantStore) Ping() error {
	ctx := context.Background()
	return s.client.Ping(ctx).Err()
}

func (s *TenantStore) key(userID uint) string {
	return fmt.Sprintf("%s:session:tenant:%d", s.prefix, userID)
}

// SetCurrentTenant 记录用户当前选择的租户
func (s *TenantStore) SetCurrentTenant(userID, tenantID uint) error {
	ctx := context.Background()
	return s.client.Set(ctx, s.key(userID), tenantID, s.ttl).Err()
}

// GetCurrentTenant 读取用户当前选择的租户，没有记录时返回0
func (s *TenantStore) GetCurrentTenant(userID uint) (uint, error) {
	ctx := context.Background()
	value, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	tenantID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		// 存储值损坏按无记录处理
		return 0, nil
	}
	return uint(tenantID), nil
}

// ClearCurrentTenant 清除用户的租户选择（登出时调用）
func (s *TenantStore) ClearCurrentTenant(userID uint) error {
	ctx := context.Background()
	return s.client.Del(ctx, s.key(userID)).Err()
}
