package district

import (
	"strings"
	"unicode"
)

// Normalize trims surrounding whitespace and lowercases s. Two names are the
// same district iff their normalized forms are equal.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldRunes lowercases s rune by rune so that rune offsets in the result
// line up with rune offsets in s.
func foldRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

// indexRunes returns the first index of needle in hay at or after from, or -1.
func indexRunes(hay, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
