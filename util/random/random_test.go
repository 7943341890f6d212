package random

import (
	"math/rand"
	"regexp"
	"testing"

	isLib "github.com/matryer/is"
)

var phonePattern = regexp.MustCompile(`^1[1-9][0-9]{8}$`)

func TestPhoneShape(t *testing.T) {
	is := isLib.New(t)
	src := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		is.True(phonePattern.MatchString(Phone(src)))
	}
	is.True(phonePattern.MatchString(Phone(Default)))
}

func TestAvatarColorFromPalette(t *testing.T) {
	src := rand.New(rand.NewSource(3))
	seen := map[string]bool{}
	for i := 0; i < 400; i++ {
		c := AvatarColor(src)
		found := false
		for _, p := range AvatarColors {
			if p == c {
				found = true
			}
		}
		if !found {
			t.Fatalf("AvatarColor() = %q, not in palette", c)
		}
		seen[c] = true
	}
	if len(seen) != len(AvatarColors) {
		t.Fatalf("saw %d colors over 400 draws, want all %d", len(seen), len(AvatarColors))
	}
}
