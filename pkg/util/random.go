package util

import (
	"crypto/rand"
	"math/big"
)

const randomLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomString returns a random alphanumeric string, used for generated secrets.
// GetRandomString 生成指定长度的随机字符串，用于自动生成密钥
func GetRandomString(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(randomLetters)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b[i] = randomLetters[i%len(randomLetters)]
			continue
		}
		b[i] = randomLetters[n.Int64()]
	}
	return string(b)
}
