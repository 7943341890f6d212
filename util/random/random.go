package random

import (
	"strings"

	"invite-share/util/common"
)

// Source is the randomness used by the invite generators. *math/rand.Rand
// satisfies it, which lets tests run with a fixed seed.
type Source interface {
	Intn(n int) int
	Float64() float64
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	return common.RandomInt(n)
}

func (cryptoSource) Float64() float64 {
	return common.RandomFloat()
}

// Default is backed by crypto/rand.
var Default Source = cryptoSource{}

// AvatarColors is the fixed palette for invite avatars.
var AvatarColors = []string{
	"#3498db", "#2ecc71", "#e74c3c", "#f39c12",
	"#9b59b6", "#1abc9c", "#d35400", "#34495e",
}

func AvatarColor(src Source) string {
	return AvatarColors[src.Intn(len(AvatarColors))]
}

// Phone 生成一个类似手机号的字符串：1 + 1~9 中的一位 + 8 位随机数字，不做真实号码校验。
func Phone(src Source) string {
	var b strings.Builder
	b.Grow(10)
	b.WriteByte('1')
	b.WriteByte(byte('1' + src.Intn(9)))
	for i := 0; i < 8; i++ {
		b.WriteByte(byte('0' + src.Intn(10)))
	}
	return b.String()
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}
