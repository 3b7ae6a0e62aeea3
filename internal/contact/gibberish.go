package contact

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSpecialRatio  = 0.5
	identicalRunMax  = 5
	sequenceRepeats  = 3
	minLongWordRunes = 3
)

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}]{5,}`)

var keyboardMash = []string{
	"asdf", "qwer", "zxcv", "hjkl", "sdfg", "dfgh", "fghj", "ghjk", "jkl;",
	"uiop", "xcvb", "cvbn", "vbnm",
}

func isGibberish(msg string) bool {
	if nonWordRun.MatchString(msg) {
		return true
	}
	runes := []rune(strings.ToLower(msg))
	if hasRepeatedSequence(runes, 2, sequenceRepeats) {
		return true
	}
	if specialRatio(runes) > maxSpecialRatio {
		return true
	}
	lower := string(runes)
	for _, pattern := range keyboardMash {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return longestRun(lower) >= identicalRunMax
}

// longestRun returns the length of the longest run of one repeated rune.
func longestRun(s string) int {
	best, cur := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			cur++
		} else {
			prev, cur = r, 1
		}
		if cur > best {
			best = cur
		}
	}
	return best
}

// hasRepeatedSequence reports whether some block of at least minLen runes
// occurs times times back to back. Periods are checked by comparing each
// rune with the one a period later: k copies need (k-1)*period matches in a row.
func hasRepeatedSequence(runes []rune, minLen, times int) bool {
	for period := minLen; period*times <= len(runes); period++ {
		need := (times - 1) * period
		streak := 0
		for i := 0; i+period < len(runes); i++ {
			if runes[i] != runes[i+period] {
				streak = 0
				continue
			}
			streak++
			if streak >= need && !blank(runes[i+1-need : i+1-need+period]) {
				return true
			}
		}
	}
	return false
}

func blank(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// specialRatio is punctuation and symbols over letters and digits. Spaces
// count as neither.
func specialRatio(runes []rune) float64 {
	var special, word int
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word++
		case unicode.IsSpace(r):
		default:
			special++
		}
	}
	if word == 0 {
		if special == 0 {
			return 0
		}
		return 1
	}
	return float64(special) / float64(word)
}

// countLongWords counts distinct words of at least three runes.
func countLongWords(msg string) int {
	words := strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minLongWordRunes {
			seen[w] = struct{}{}
		}
	}
	return len(seen)
}
