package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeUsers 解析 users 文档；空内容或 null 视为空映射。
func DecodeUsers(data []byte) (Users, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Users{}, nil
	}
	var users Users
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users document: %w", err)
	}
	if users == nil {
		users = Users{}
	}
	return users, nil
}

// EncodeUsers 序列化 users 文档。
func EncodeUsers(users Users) ([]byte, error) {
	if users == nil {
		users = Users{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("failed to encode users document: %w", err)
	}
	return data, nil
}
