package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/LubyRuffy/azure2openai"
)

// Gate 根据凭据存储校验调用方的 Bearer token。
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// BearerToken 取 Authorization 头按空格切分后的最后一段，
// 因此 "Bearer sk-xxx" 与裸 "sk-xxx" 都能得到 sk-xxx。
func BearerToken(header string) string {
	parts := strings.Split(header, " ")
	return parts[len(parts)-1]
}

// Authenticate 线性扫描全部凭据，返回 Key 与 token 相同的用户名。
// token 为空返回 "Auth required"，找不到返回 "Invalid token"，二者均为 KindAuthentication。
// 多个用户持有相同 Key 时按用户名排序取第一个。
func (g *Gate) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", azure2openai.NewError(azure2openai.KindAuthentication, azure2openai.MsgAuthRequired)
	}

	users, err := g.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if users[name].Key == token {
			return name, nil
		}
	}
	return "", azure2openai.NewError(azure2openai.KindAuthentication, azure2openai.MsgInvalidToken)
}
