package auth

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// NewStore 根据 driver 创建凭据存储。
// driver 允许：memory/redis/sqlite；空值按 memory 处理。
// dsn 对 redis 为 redis:// URL，对 sqlite 为数据库文件路径。
func NewStore(driver, dsn string) (Store, error) {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d == "" {
		d = string(DriverMemory)
	}
	switch Driver(d) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		return NewRedisStore(dsn)
	case DriverSQLite:
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping 在存储支持时检查其可用性，不支持的实现直接返回 nil。
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close 在存储持有连接时关闭它。
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
