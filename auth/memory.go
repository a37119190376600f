package auth

import (
	"context"
	"sync"
)

// MemoryStore 把 users 文档以序列化形式保存在内存中，主要用于开发与测试。
// 保存序列化字节而不是 map，保证 Load 返回的映射与内部状态互不影响。
type MemoryStore struct {
	mu  sync.RWMutex
	doc []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (Users, error) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	return DecodeUsers(doc)
}

func (s *MemoryStore) Save(ctx context.Context, users Users) error {
	doc, err := EncodeUsers(users)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}
