// Package nickname produces random chat-app style display names for synthesized
// invite records. Names are not unique; duplicates are expected.
package nickname

import (
	"strconv"
	"strings"

	"invite-share/util/random"
)

var netNames = []string{
	"小可爱", "阳光", "微笑", "快乐", "幸福", "温柔", "可爱多", "甜心", "暖暖",
	"星星", "月亮", "天空", "海洋", "云朵", "雨滴", "雪花", "花朵", "草莓", "柠檬",
	"奶茶", "咖啡", "巧克力", "冰淇淋", "蛋糕", "糖果", "棒棒糖", "果冻", "布丁",
	"小仙女", "小王子", "小公主", "小天使", "小魔王", "小恶魔", "小精灵", "小妖精",
	"大宝贝", "小宝贝", "小甜心", "小宝宝", "小朋友", "小甜甜",
	"阿狸", "皮卡丘", "哆啦A梦", "小熊维尼", "米老鼠", "唐老鸭", "加菲猫", "史努比",
}

var latinNames = []string{
	"Amy", "Bob", "Cathy", "David", "Emma", "Frank", "Grace", "Henry", "Ivy", "Jack",
	"Kelly", "Leo", "Mia", "Nick", "Olivia", "Peter", "Queen", "Ryan", "Sophia", "Tom",
	"Uma", "Victor", "Wendy", "Xander", "Yolanda", "Zack", "Alice", "Ben", "Cindy", "Daniel",
	"Ella", "Felix", "Gina", "Harry", "Irene", "Jason", "Kate", "Liam", "Megan", "Nathan",
}

var emojis = []string{
	"😊", "😄", "😍", "🥰", "😎", "🤩", "🌟", "✨", "🌈", "🌸", "🌺", "🌼", "🌻", "🍀", "🍓",
	"🍒", "🍎", "🍉", "🍭", "🍬", "🧸", "🎀", "🎵", "🎮", "📱", "💻", "📷", "🏀", "⚽", "🏆",
}

var emojiBaseNames = []string{
	"小可爱", "阳光", "微笑", "快乐", "幸福", "温柔",
	"Amy", "Bob", "Cathy", "David", "Emma", "Frank", "Grace",
}

var surnames = []string{
	"赵", "钱", "孙", "李", "周", "吴", "郑", "王", "冯", "陈", "褚", "卫", "蒋", "沈", "韩", "杨",
	"朱", "秦", "尤", "许", "何", "吕", "施", "张", "孔", "曹", "严", "华", "金", "魏", "陶", "姜",
}

var givenNameChars = []rune("明东林华国建立志远山水木火土金天正平学诚如荣宝永祥伟涛强军磊晓")

// SeedNames is the fixed pool used for the historical records written when the
// store is first created.
var SeedNames = []string{
	"小可爱😊", "阳光男孩", "微笑🌸", "快乐每一天", "幸福如意",
	"Amy123", "Bob", "Cathy🍀", "David888", "Emma",
	"😎酷酷的我", "🌟星星点灯", "✨闪闪惹人爱", "🌈彩虹糖果", "🌸樱花雨",
	"李明", "王小花", "张大山", "刘晓华", "陈志远",
}

// Style identifies one of the name families.
type Style int

const (
	StylePlain Style = iota
	StyleLatin
	StyleEmoji
	StyleTraditional

	styleCount
)

type Generator struct {
	src random.Source
}

func New(src random.Source) *Generator {
	if src == nil {
		src = random.Default
	}
	return &Generator{src: src}
}

// Nickname picks a style uniformly and renders one name in it.
func (g *Generator) Nickname() string {
	return g.NicknameOf(Style(g.src.Intn(int(styleCount))))
}

func (g *Generator) NicknameOf(style Style) string {
	switch style {
	case StyleLatin:
		name := random.Pick(g.src, latinNames)
		// 50% 概率追加 0~999 的数字
		if g.src.Float64() >= 0.5 {
			return name + strconv.Itoa(g.src.Intn(1000))
		}
		return name
	case StyleEmoji:
		name := random.Pick(g.src, emojiBaseNames)
		emoji := random.Pick(g.src, emojis)
		if g.src.Float64() >= 0.5 {
			return emoji + name
		}
		return name + emoji
	case StyleTraditional:
		return g.traditionalName()
	default:
		return random.Pick(g.src, netNames)
	}
}

func (g *Generator) traditionalName() string {
	var b strings.Builder
	b.WriteString(random.Pick(g.src, surnames))
	n := 1
	if g.src.Float64() >= 0.7 {
		n = 2
	}
	for i := 0; i < n; i++ {
		b.WriteRune(random.Pick(g.src, givenNameChars))
	}
	return b.String()
}

// Seed returns one of the fixed historical names.
func (g *Generator) Seed() string {
	return random.Pick(g.src, SeedNames)
}

// Phone is a convenience wrapper over random.Phone with the generator's source.
func (g *Generator) Phone() string {
	return random.Phone(g.src)
}
