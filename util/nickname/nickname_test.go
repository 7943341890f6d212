package nickname

import (
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	isLib "github.com/matryer/is"
)

func TestNicknameOfStyles(t *testing.T) {
	is := isLib.New(t)
	g := New(rand.New(rand.NewSource(42)))

	for i := 0; i < 300; i++ {
		plain := g.NicknameOf(StylePlain)
		is.True(slices.Contains(netNames, plain))

		latin := g.NicknameOf(StyleLatin)
		base := strings.TrimRight(latin, "0123456789")
		is.True(slices.Contains(latinNames, base))
		if suffix := strings.TrimPrefix(latin, base); suffix != "" {
			n, err := strconv.Atoi(suffix)
			is.NoErr(err)
			is.True(n >= 0 && n < 1000)
		}

		decorated := g.NicknameOf(StyleEmoji)
		is.True(hasEmojiAtEdge(decorated))

		traditional := []rune(g.NicknameOf(StyleTraditional))
		is.True(len(traditional) == 2 || len(traditional) == 3)
		is.True(slices.Contains(surnames, string(traditional[0])))
		for _, r := range traditional[1:] {
			is.True(slices.Contains(givenNameChars, r))
		}
	}
}

func hasEmojiAtEdge(name string) bool {
	for _, e := range emojis {
		if strings.HasPrefix(name, e) && slices.Contains(emojiBaseNames, strings.TrimPrefix(name, e)) {
			return true
		}
		if strings.HasSuffix(name, e) && slices.Contains(emojiBaseNames, strings.TrimSuffix(name, e)) {
			return true
		}
	}
	return false
}

func TestNicknameCoversAllStyles(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))
	var latin, traditional, decorated, plain int
	for i := 0; i < 2000; i++ {
		name := g.Nickname()
		if name == "" || !utf8.ValidString(name) {
			t.Fatalf("Nickname() = %q, want a non-empty valid string", name)
		}
		switch {
		case hasEmojiAtEdge(name):
			decorated++
		case slices.Contains(netNames, name):
			plain++
		case slices.Contains(latinNames, strings.TrimRight(name, "0123456789")):
			latin++
		default:
			traditional++
		}
	}
	for style, n := range map[string]int{"plain": plain, "latin": latin, "emoji": decorated, "traditional": traditional} {
		if n < 300 {
			t.Errorf("%s style drawn %d times out of 2000, want roughly a quarter", style, n)
		}
	}
}

func TestTraditionalTwoCharRate(t *testing.T) {
	g := New(rand.New(rand.NewSource(9)))
	two := 0
	const draws = 5000
	for i := 0; i < draws; i++ {
		if utf8.RuneCountInString(g.NicknameOf(StyleTraditional)) == 3 {
			two++
		}
	}
	rate := float64(two) / draws
	if rate < 0.27 || rate > 0.33 {
		t.Fatalf("two-character given names at rate %.3f, want about 0.30", rate)
	}
}

func TestSeedAndPhone(t *testing.T) {
	is := isLib.New(t)
	g := New(nil)
	is.True(slices.Contains(SeedNames, g.Seed()))
	is.Equal(len(g.Phone()), 10)
}
