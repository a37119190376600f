package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// KeyPrefix 是签发 Key 的固定前缀。
	KeyPrefix = "sk-cfw"
	// KeyRandomLength 是前缀之后随机部分的长度。
	KeyRandomLength = 45

	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateKey 生成 KeyPrefix + 45 位 [A-Za-z0-9] 的随机 Key，每一位独立均匀采样。
func GenerateKey() (string, error) {
	var b strings.Builder
	b.Grow(len(KeyPrefix) + KeyRandomLength)
	b.WriteString(KeyPrefix)

	max := big.NewInt(int64(len(keyAlphabet)))
	for i := 0; i < KeyRandomLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate api key: %w", err)
		}
		b.WriteByte(keyAlphabet[n.Int64()])
	}
	return b.String(), nil
}
