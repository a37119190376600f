package auth

import (
	"context"
	"fmt"

	"github.com/LubyRuffy/azure2openai"
)

// Registry 实现管理员的签发/重置与吊销操作。
type Registry struct {
	store  Store
	newKey func() (string, error)
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store, newKey: GenerateKey}
}

// Register 为 username 生成新 Key 并覆盖旧值，返回新 Key。
func (r *Registry) Register(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", azure2openai.NewError(azure2openai.KindValidation, azure2openai.MsgInvalidUsername)
	}

	users, err := r.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	key, err := r.newKey()
	if err != nil {
		return "", err
	}
	users[username] = Record{Key: key}
	if err := r.store.Save(ctx, users); err != nil {
		return "", fmt.Errorf("save credentials: %w", err)
	}
	return key, nil
}

// Revoke 删除 username 的凭据；用户不存在时返回 KindNotFound 且不写存储。
func (r *Registry) Revoke(ctx context.Context, username string) error {
	if username == "" {
		return azure2openai.NewError(azure2openai.KindValidation, azure2openai.MsgInvalidUsername)
	}

	users, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if _, ok := users[username]; !ok {
		return azure2openai.NewError(azure2openai.KindNotFound, azure2openai.MsgUserNotFound)
	}
	delete(users, username)
	if err := r.store.Save(ctx, users); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
