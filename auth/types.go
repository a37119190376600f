package auth

import "context"

// Record 是单个用户的凭据，JSON 结构与旧版 KV 中的 {"key": "..."} 保持一致。
type Record struct {
	Key string `json:"key"`
}

// Users 是用户名到凭据的完整映射。
type Users map[string]Record

// Store 以"整体读取 / 整体写回"的方式持久化 Users。
// 实现不提供跨请求的事务保证：并发写同一用户时后写者生效。
type Store interface {
	Load(ctx context.Context) (Users, error)
	Save(ctx context.Context, users Users) error
}

type Driver string

const (
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
	DriverSQLite Driver = "sqlite"
)

// UsersKey 是存放用户映射的键名（Redis key / SQLite kv 表主键）。
const UsersKey = "users"
