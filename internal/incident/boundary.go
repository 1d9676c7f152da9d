package incident

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune reports letters, digits and underscore in any script
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// bounded reports whether text[start:end] is not glued to a word character
// on either side
func bounded(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

// findBounded returns up to n submatch index slices of re in text whose whole
// match stands apart from neighbouring letters and digits. A rejected match
// is retried one rune further on. n < 0 means all.
func findBounded(re *regexp.Regexp, text string, n int) [][]int {
	var found [][]int
	for pos := 0; pos <= len(text) && (n < 0 || len(found) < n); {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}

		if bounded(text, loc[0], loc[1]) {
			found = append(found, loc)
			if loc[1] > loc[0] {
				pos = loc[1]
				continue
			}
		}

		_, size := utf8.DecodeRuneInString(text[loc[0]:])
		if size == 0 {
			break
		}
		pos = loc[0] + size
	}
	return found
}

// firstBounded returns the first bounded match of re and its submatch
// indexes, nil when there is none
func firstBounded(re *regexp.Regexp, text string) []int {
	if found := findBounded(re, text, 1); len(found) > 0 {
		return found[0]
	}
	return nil
}

// replaceBounded replaces every bounded match of re with repl
func replaceBounded(re *regexp.Regexp, text, repl string) string {
	found := findBounded(re, text, -1)
	if len(found) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range found {
		b.WriteString(text[last:loc[0]])
		b.WriteString(repl)
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
